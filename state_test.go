package main

import "testing"

func TestNewGameStateLayout(t *testing.T) {
	gs := NewGameState(25)

	if gs.P1.X != 5 || gs.P1.Y != 12 {
		t.Errorf("p1 start = (%d,%d), want (5,12)", gs.P1.X, gs.P1.Y)
	}
	if gs.P2.X != 20 || gs.P2.Y != 12 {
		t.Errorf("p2 start = (%d,%d), want (20,12)", gs.P2.X, gs.P2.Y)
	}
	if gs.P1.FacingX != 1 || gs.P2.FacingX != -1 {
		t.Error("snakes should face each other")
	}

	for _, a := range []*Actor{gs.P1, gs.P2} {
		if a.Tail != StartTrailLength || len(a.Trail) != StartTrailLength {
			t.Errorf("trail %d/%d, want seeded to %d", len(a.Trail), a.Tail, StartTrailLength)
		}
		head := a.Trail[len(a.Trail)-1]
		if head.X != a.X || head.Y != a.Y {
			t.Errorf("trail head (%d,%d) != position (%d,%d)", head.X, head.Y, a.X, a.Y)
		}
	}

	if len(gs.Pickups) != 2 {
		t.Fatalf("pickups = %d, want 2", len(gs.Pickups))
	}
	if gs.Pickups[0].Y != 10 || gs.Pickups[1].Y != 14 {
		t.Errorf("pickups at y %d and %d, want 10 and 14", gs.Pickups[0].Y, gs.Pickups[1].Y)
	}
}

func TestSetDirectionRejectsReversal(t *testing.T) {
	cases := []struct {
		name           string
		curXV, curYV   int
		reqXV, reqYV   int
		wantXV, wantYV int
	}{
		{"right blocked while left", -1, 0, 1, 0, -1, 0},
		{"left blocked while right", 1, 0, -1, 0, 1, 0},
		{"down blocked while up", 0, -1, 0, 1, 0, -1},
		{"up blocked while down", 0, 1, 0, -1, 0, 1},
		{"turn allowed", 1, 0, 0, 1, 0, 1},
		{"stop allowed", 1, 0, 0, 0, 0, 0},
	}
	for _, tc := range cases {
		a := &Actor{XV: tc.curXV, YV: tc.curYV}
		a.SetDirection(tc.reqXV, tc.reqYV)
		if a.XV != tc.wantXV || a.YV != tc.wantYV {
			t.Errorf("%s: got (%d,%d), want (%d,%d)", tc.name, a.XV, a.YV, tc.wantXV, tc.wantYV)
		}
	}
}

func TestSetDirectionUpdatesFacing(t *testing.T) {
	a := &Actor{FacingX: 1}
	a.SetDirection(0, 1)
	if a.FacingX != 0 || a.FacingY != 1 {
		t.Errorf("facing = (%d,%d), want (0,1)", a.FacingX, a.FacingY)
	}

	// Stopping keeps the last facing for presentation
	a.SetDirection(0, 0)
	if a.FacingX != 0 || a.FacingY != 1 {
		t.Error("facing should survive zero-velocity frames")
	}
}
