package main

import "testing"

func TestEloChangeEqualRatings(t *testing.T) {
	if got := EloChange(1000, 1000, 1); got != 16 {
		t.Errorf("equal ratings win = %d, want 16", got)
	}
	if got := EloChange(1000, 1000, 0); got != -16 {
		t.Errorf("equal ratings loss = %d, want -16", got)
	}
}

func TestEloChangeUnderdog(t *testing.T) {
	// A 200-point underdog gains more for a win than the favorite would
	underdogWin := EloChange(1000, 1200, 1)
	favoriteWin := EloChange(1200, 1000, 1)
	if underdogWin != 24 {
		t.Errorf("underdog win = %d, want 24", underdogWin)
	}
	if favoriteWin != 8 {
		t.Errorf("favorite win = %d, want 8", favoriteWin)
	}
}

func TestEloChangeZeroSum(t *testing.T) {
	ratings := [][2]int{{1000, 1000}, {1000, 1200}, {1350, 980}, {1100, 1105}}
	for _, r := range ratings {
		win := EloChange(r[0], r[1], 1)
		loss := EloChange(r[1], r[0], 0)
		if win != -loss {
			t.Errorf("ratings %v: winner delta %d != -loser delta %d", r, win, loss)
		}
	}
}
