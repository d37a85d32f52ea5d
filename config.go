package main

import "fmt"

// Defaults applied when a client omits a setting
const (
	DefaultFPS      = 10
	DefaultGridSize = 25
	DefaultWinScore = 20
	DefaultPenalty  = 2
)

// RoomConfig holds the validated settings for one room. All fields are
// restricted to a small enumerated set; anything else is rejected at
// room creation.
type RoomConfig struct {
	FPS      int `json:"fps" msgpack:"fps"`           // ticks per second: 5 (slow), 10 (normal), 15 (fast)
	GridSize int `json:"gridSize" msgpack:"gridSize"` // side length: 15, 25, 35
	WinScore int `json:"winScore" msgpack:"winScore"` // score needed to win: 10, 20, 30
	Penalty  int `json:"penalty" msgpack:"penalty"`   // collision divisor: 2, 3, 4
}

var (
	validFPS       = map[int]bool{5: true, 10: true, 15: true}
	validGridSizes = map[int]bool{15: true, 25: true, 35: true}
	validWinScores = map[int]bool{10: true, 20: true, 30: true}
	validPenalties = map[int]bool{2: true, 3: true, 4: true}
)

// DefaultRoomConfig returns the standard settings
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		FPS:      DefaultFPS,
		GridSize: DefaultGridSize,
		WinScore: DefaultWinScore,
		Penalty:  DefaultPenalty,
	}
}

// Normalize fills zero-valued fields with defaults and validates the rest.
// Returns ErrInvalidConfig (wrapped with the offending field) on any value
// outside the enumerated sets.
func (c RoomConfig) Normalize() (RoomConfig, error) {
	if c.FPS == 0 {
		c.FPS = DefaultFPS
	}
	if c.GridSize == 0 {
		c.GridSize = DefaultGridSize
	}
	if c.WinScore == 0 {
		c.WinScore = DefaultWinScore
	}
	if c.Penalty == 0 {
		c.Penalty = DefaultPenalty
	}
	if !validFPS[c.FPS] {
		return c, fmt.Errorf("%w: fps %d", ErrInvalidConfig, c.FPS)
	}
	if !validGridSizes[c.GridSize] {
		return c, fmt.Errorf("%w: grid size %d", ErrInvalidConfig, c.GridSize)
	}
	if !validWinScores[c.WinScore] {
		return c, fmt.Errorf("%w: win score %d", ErrInvalidConfig, c.WinScore)
	}
	if !validPenalties[c.Penalty] {
		return c, fmt.Errorf("%w: penalty %d", ErrInvalidConfig, c.Penalty)
	}
	return c, nil
}
