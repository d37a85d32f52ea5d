package main

// Slot keys for the two actor positions in a room
const (
	SlotP1 = "p1"
	SlotP2 = "p2"
)

const (
	StartTrailLength = 3
	ImmunityDuration = 15 // ticks of collision grace after a penalty
)

// Cell is one grid coordinate
type Cell struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// Design is the cosmetic descriptor chosen by a player. Opaque to the
// engine; passed through to state broadcasts and collision events.
type Design struct {
	BodyColor string `json:"bodyColor" msgpack:"bodyColor"`
	EyeColor  string `json:"eyeColor" msgpack:"eyeColor"`
}

// DefaultDesign matches the client's initial palette
func DefaultDesign() Design {
	return Design{BodyColor: "#39ff14", EyeColor: "#000000"}
}

// Actor is one snake on the grid
type Actor struct {
	X, Y     int    // head position, always in [0, gridSize)
	XV, YV   int    // velocity, one axis at most, each in {-1, 0, 1}
	FacingX  int    // last nonzero velocity, presentation only
	FacingY  int
	Trail    []Cell // occupied cells oldest first, head last
	Tail     int    // target trail length, >= 1
	Score    int
	Immunity int // collision checks suppressed while > 0
	Nick     string
	Design   Design
}

// Pickup is a consumable that grows the actor that reaches it
type Pickup struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// GameState holds the mutable simulation state of one room
type GameState struct {
	P1      *Actor
	P2      *Actor
	Pickups []*Pickup
}

// NewGameState builds the starting layout: both snakes horizontal at
// mid-height, facing each other from 20% and 80% across the grid, with
// two pickups above and below center.
func NewGameState(gridSize int) *GameState {
	midY := gridSize / 2
	startX1 := gridSize * 2 / 10
	startX2 := gridSize * 8 / 10

	p1 := &Actor{
		X: startX1, Y: midY,
		FacingX: 1,
		Tail:    StartTrailLength,
		Design:  DefaultDesign(),
	}
	p2 := &Actor{
		X: startX2, Y: midY,
		FacingX: -1,
		Tail:    StartTrailLength,
		Design:  DefaultDesign(),
	}
	for i := StartTrailLength - 1; i >= 0; i-- {
		p1.Trail = append(p1.Trail, Cell{X: startX1 - i, Y: midY})
		p2.Trail = append(p2.Trail, Cell{X: startX2 + i, Y: midY})
	}

	mid := gridSize / 2
	return &GameState{
		P1: p1,
		P2: p2,
		Pickups: []*Pickup{
			{X: mid, Y: mid - 2},
			{X: mid, Y: mid + 2},
		},
	}
}

// Actor returns the actor in the given slot, or nil
func (gs *GameState) Actor(slot string) *Actor {
	switch slot {
	case SlotP1:
		return gs.P1
	case SlotP2:
		return gs.P2
	}
	return nil
}

// SetDirection applies a velocity change request. Requests that would
// reverse the actor straight into its own heading on either axis are
// silently ignored.
func (a *Actor) SetDirection(xv, yv int) {
	if xv == 1 && a.XV == -1 {
		return
	}
	if xv == -1 && a.XV == 1 {
		return
	}
	if yv == 1 && a.YV == -1 {
		return
	}
	if yv == -1 && a.YV == 1 {
		return
	}
	a.XV = xv
	a.YV = yv
	if xv != 0 || yv != 0 {
		a.FacingX = xv
		a.FacingY = yv
	}
}

// ToState converts an actor to its broadcast form
func (a *Actor) ToState() ActorState {
	trail := make([]Cell, len(a.Trail))
	copy(trail, a.Trail)
	return ActorState{
		X: a.X, Y: a.Y,
		XV: a.XV, YV: a.YV,
		FacingX: a.FacingX, FacingY: a.FacingY,
		Trail:    trail,
		Tail:     a.Tail,
		Score:    a.Score,
		Immunity: a.Immunity,
		Nick:     a.Nick,
		Design:   a.Design,
	}
}
