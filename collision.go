package main

// Collision reason codes sent to clients
const (
	ReasonWallHit        = "WALL_HIT"
	ReasonSelfBite       = "SELF_BITE"
	ReasonEnemyCollision = "ENEMY_COLLISION"
)

// TrailContains reports whether (x, y) is one of the cells in trail
func TrailContains(x, y int, trail []Cell) bool {
	for _, c := range trail {
		if x == c.X && y == c.Y {
			return true
		}
	}
	return false
}

// ClassifyCollision resolves the outcome of one actor's step. wrapped is
// whether the step crossed a grid edge; selfTrail and enemyTrail are the
// trails to test the new head (x, y) against. A wall wrap short-circuits
// the trail checks, and a self hit outranks an enemy hit. Returns the
// reason code, or "" when the step is clean.
func ClassifyCollision(wrapped bool, x, y int, selfTrail, enemyTrail []Cell) string {
	if wrapped {
		return ReasonWallHit
	}
	if TrailContains(x, y, selfTrail) {
		return ReasonSelfBite
	}
	if TrailContains(x, y, enemyTrail) {
		return ReasonEnemyCollision
	}
	return ""
}
