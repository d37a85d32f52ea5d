package main

import "testing"

func TestTrailContains(t *testing.T) {
	trail := []Cell{{X: 1, Y: 2}, {X: 3, Y: 4}}

	if !TrailContains(3, 4, trail) {
		t.Error("expected (3,4) in trail")
	}
	if TrailContains(4, 3, trail) {
		t.Error("(4,3) should not be in trail")
	}
	if TrailContains(0, 0, nil) {
		t.Error("empty trail should contain nothing")
	}
}

func TestClassifyCollisionPrecedence(t *testing.T) {
	self := []Cell{{X: 5, Y: 5}}
	enemy := []Cell{{X: 5, Y: 5}}

	// Wall wrap short-circuits the trail checks entirely
	if got := ClassifyCollision(true, 5, 5, self, enemy); got != ReasonWallHit {
		t.Errorf("wrapped step = %q, want %q", got, ReasonWallHit)
	}

	// A cell in both trails classifies as a self bite
	if got := ClassifyCollision(false, 5, 5, self, enemy); got != ReasonSelfBite {
		t.Errorf("overlapping trails = %q, want %q", got, ReasonSelfBite)
	}

	if got := ClassifyCollision(false, 5, 5, nil, enemy); got != ReasonEnemyCollision {
		t.Errorf("enemy trail hit = %q, want %q", got, ReasonEnemyCollision)
	}

	if got := ClassifyCollision(false, 9, 9, self, enemy); got != "" {
		t.Errorf("clean step = %q, want empty", got)
	}
}
