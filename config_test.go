package main

import (
	"errors"
	"testing"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg, err := RoomConfig{}.Normalize()
	if err != nil {
		t.Fatalf("empty config: %v", err)
	}
	want := DefaultRoomConfig()
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}

	// Partial configs keep the provided values
	cfg, err = RoomConfig{FPS: 15, Penalty: 4}.Normalize()
	if err != nil {
		t.Fatalf("partial config: %v", err)
	}
	if cfg.FPS != 15 || cfg.Penalty != 4 || cfg.GridSize != DefaultGridSize || cfg.WinScore != DefaultWinScore {
		t.Errorf("got %+v", cfg)
	}
}

func TestNormalizeRejectsOutOfRange(t *testing.T) {
	bad := []RoomConfig{
		{FPS: 7},
		{FPS: -10},
		{GridSize: 24},
		{WinScore: 21},
		{Penalty: 5},
		{Penalty: 1},
	}
	for _, cfg := range bad {
		if _, err := cfg.Normalize(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%+v: err = %v, want ErrInvalidConfig", cfg, err)
		}
	}
}

func TestNormalizeAcceptsAllEnumerated(t *testing.T) {
	for fps := range validFPS {
		for size := range validGridSizes {
			for goal := range validWinScores {
				for pen := range validPenalties {
					cfg := RoomConfig{FPS: fps, GridSize: size, WinScore: goal, Penalty: pen}
					if _, err := cfg.Normalize(); err != nil {
						t.Errorf("%+v: %v", cfg, err)
					}
				}
			}
		}
	}
}
