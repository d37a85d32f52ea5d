package main

import "math/rand"

// CollisionEvent is emitted when a penalized collision happens
type CollisionEvent struct {
	Slot   string
	Nick   string
	Reason string
	Color  string
}

// applyPenalty shrinks an actor after a collision: trail length and score
// are floor-divided (trail never below 1, score may reach 0), the trail is
// trimmed from the front to fit, and an immunity window opens. This is the
// only path that shrinks trail or score.
func applyPenalty(a *Actor, divisor int) {
	a.Tail /= divisor
	if a.Tail < 1 {
		a.Tail = 1
	}
	a.Score /= divisor
	for len(a.Trail) > a.Tail {
		a.Trail = a.Trail[1:]
	}
	a.Immunity = ImmunityDuration
}

// Step advances both actors one tick and returns any collision events.
// Cross-actor collision checks run against trail snapshots taken before
// either actor moves, so neither side sees the other's same-tick update.
// The single writer is the room's tick goroutine; callers hold the room
// lock.
func Step(gs *GameState, cfg RoomConfig, rng *rand.Rand) []CollisionEvent {
	snapP1 := snapshotTrail(gs.P1)
	snapP2 := snapshotTrail(gs.P2)

	var events []CollisionEvent
	if ev := stepActor(gs, gs.P1, SlotP1, snapP1, snapP2, cfg, rng); ev != nil {
		events = append(events, *ev)
	}
	if ev := stepActor(gs, gs.P2, SlotP2, snapP2, snapP1, cfg, rng); ev != nil {
		events = append(events, *ev)
	}
	return events
}

func snapshotTrail(a *Actor) []Cell {
	snap := make([]Cell, len(a.Trail))
	copy(snap, a.Trail)
	return snap
}

// stepActor moves one actor: immunity countdown, head advance, edge wrap,
// collision classification, penalty, trail maintenance, pickup consumption.
// Actors that have not started moving are skipped entirely.
func stepActor(gs *GameState, a *Actor, slot string, selfSnap, enemySnap []Cell, cfg RoomConfig, rng *rand.Rand) *CollisionEvent {
	if a.XV == 0 && a.YV == 0 {
		return nil
	}
	if a.Immunity > 0 {
		a.Immunity--
	}

	a.X += a.XV
	a.Y += a.YV

	// Crossing an edge wraps to the opposite side and counts as a wall
	// hit for penalty purposes.
	size := cfg.GridSize
	wrapped := false
	if a.X < 0 {
		a.X = size - 1
		wrapped = true
	}
	if a.X >= size {
		a.X = 0
		wrapped = true
	}
	if a.Y < 0 {
		a.Y = size - 1
		wrapped = true
	}
	if a.Y >= size {
		a.Y = 0
		wrapped = true
	}

	var event *CollisionEvent
	if a.Immunity == 0 {
		if reason := ClassifyCollision(wrapped, a.X, a.Y, selfSnap, enemySnap); reason != "" {
			applyPenalty(a, cfg.Penalty)
			event = &CollisionEvent{
				Slot:   slot,
				Nick:   a.Nick,
				Reason: reason,
				Color:  a.Design.BodyColor,
			}
		}
	}

	// Append the new head, then trim from the front until the trail fits.
	// After a penalty this can drop several cells at once.
	a.Trail = append(a.Trail, Cell{X: a.X, Y: a.Y})
	for len(a.Trail) > a.Tail {
		a.Trail = a.Trail[1:]
	}

	// Pickups respawn uniformly over the grid, trails included. A pickup
	// under a body just gets eaten on the pass-through.
	for _, pk := range gs.Pickups {
		if a.X == pk.X && a.Y == pk.Y {
			a.Tail++
			a.Score++
			pk.X = rng.Intn(size)
			pk.Y = rng.Intn(size)
		}
	}

	return event
}

// Winner outcome for a draw
const WinnerDraw = "DRAW"

// CheckWin compares both scores to the win threshold. A simultaneous
// finish is always a draw; the draw test runs before either single-winner
// test. Returns the winning slot (or WinnerDraw) and whether the game is
// over.
func CheckWin(gs *GameState, winScore int) (string, bool) {
	p1Done := gs.P1.Score >= winScore
	p2Done := gs.P2.Score >= winScore
	switch {
	case p1Done && p2Done:
		return WinnerDraw, true
	case p1Done:
		return SlotP1, true
	case p2Done:
		return SlotP2, true
	}
	return "", false
}
