package main

import (
	"log"
	"math/rand"
	"sync"
	"time"
)

const CountdownStart = 5

// CountdownInterval is a var so tests can shrink the pre-game wait
var CountdownInterval = time.Second

// RoomStatus is the lifecycle phase of a room
type RoomStatus int

const (
	StatusWaiting RoomStatus = iota
	StatusCountdown
	StatusActive
	StatusFinished
)

// Broadcaster is the send-side of a connected client. The room treats it
// as a best-effort sink; a slow or gone client never blocks the tick.
type Broadcaster interface {
	SendJSON(msg interface{})
	SendState(snap StateSnapshot)
}

// RoomPlayer is one occupant of a room
type RoomPlayer struct {
	Identity Identity
	Role     string
	Client   Broadcaster
}

// Room owns one match: its occupants, lifecycle phase, simulation state
// and tick scheduler. All fields behind mu; the tick goroutine is the
// single writer of the game state, async input only touches velocity.
type Room struct {
	ID   string
	Mode string

	mu      sync.Mutex
	status  RoomStatus
	config  RoomConfig
	players []*RoomPlayer
	state   *GameState
	tick    uint64
	rng     *rand.Rand

	stop    chan struct{}
	stopped bool

	registry *Registry
}

// NewRoom creates a room in WAITING with no occupants
func NewRoom(id string, cfg RoomConfig, reg *Registry) *Room {
	return &Room{
		ID:       id,
		Mode:     "pvp",
		status:   StatusWaiting,
		config:   cfg,
		state:    NewGameState(cfg.GridSize),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		stop:     make(chan struct{}),
		registry: reg,
	}
}

// Config returns the room's settings
func (r *Room) Config() RoomConfig {
	return r.config
}

// Status returns the current lifecycle phase
func (r *Room) Status() RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// PlayerCount returns the number of occupants
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Summary returns the public listing entry for this room. Only meaningful
// while the room is waiting for an opponent.
func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := RoomSummary{ID: r.ID, Config: r.config}
	if len(r.players) > 0 {
		s.Creator = r.players[0].Identity.Nick
		s.CreatorElo = r.players[0].Identity.Elo
	}
	return s
}

// joinable reports whether the room can take a second player
func (r *Room) joinable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status == StatusWaiting && len(r.players) == 1
}

// AddPlayer seats an identity in the next free slot and announces the
// lobby change. When the second player arrives (or the creator is an
// admin practicing solo) the countdown starts.
func (r *Room) AddPlayer(id Identity, client Broadcaster) (string, error) {
	r.mu.Lock()
	if r.status != StatusWaiting || len(r.players) >= 2 {
		r.mu.Unlock()
		return "", ErrRoomNotJoinable
	}

	role := SlotP1
	if len(r.players) == 1 {
		role = SlotP2
	}
	r.players = append(r.players, &RoomPlayer{Identity: id, Role: role, Client: client})

	actor := r.state.Actor(role)
	actor.Nick = id.Nick
	actor.Design = id.Design

	full := len(r.players) == 2
	soloAdmin := role == SlotP1 && id.IsAdmin
	players := r.lobbyPlayers()
	r.mu.Unlock()

	client.SendJSON(Envelope{T: MsgRoomJoined, Data: RoomJoinedMsg{
		RoomID: r.ID,
		Role:   role,
		Config: r.config,
	}})
	r.broadcast(Envelope{T: MsgLobby, Data: LobbyMsg{Players: players}})

	if full {
		r.startCountdown()
	} else if soloAdmin {
		log.Printf("admin %s started solo practice in room %s", id.Nick, r.ID)
		r.startCountdown()
	}
	return role, nil
}

func (r *Room) lobbyPlayers() []LobbyPlayer {
	list := make([]LobbyPlayer, 0, len(r.players))
	for _, p := range r.players {
		list = append(list, LobbyPlayer{Nick: p.Identity.Nick, Role: p.Role, Elo: p.Identity.Elo})
	}
	return list
}

// startCountdown moves the room into COUNTDOWN and runs the pre-game
// timer. Each value from 5 down to 0 is broadcast one second apart; after
// the last one the tick loop starts.
func (r *Room) startCountdown() {
	r.mu.Lock()
	if r.status != StatusWaiting {
		r.mu.Unlock()
		return
	}
	r.status = StatusCountdown
	r.mu.Unlock()

	go func() {
		ticker := time.NewTicker(CountdownInterval)
		defer ticker.Stop()

		timer := CountdownStart
		for {
			if !r.alive() {
				return
			}
			r.broadcast(Envelope{T: MsgCountdown, Data: timer})
			timer--
			if timer < 0 {
				r.startLoop()
				return
			}
			select {
			case <-ticker.C:
			case <-r.stop:
				return
			}
		}
	}()
}

// startLoop moves the room into ACTIVE and runs the fixed-rate physics
// tick until the game finishes or the room is stopped. The loop body is
// synchronous, so ticks never overlap.
func (r *Room) startLoop() {
	r.mu.Lock()
	if r.status != StatusCountdown {
		r.mu.Unlock()
		return
	}
	r.status = StatusActive
	r.mu.Unlock()

	r.broadcast(Envelope{T: MsgGameStart})
	if r.registry != nil {
		r.registry.trackEvent(EvtMatchStart, r.ID)
	}

	interval := time.Second / time.Duration(r.config.FPS)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !r.alive() {
					return
				}
				if r.runTick() {
					return
				}
			case <-r.stop:
				return
			}
		}
	}()
}

// alive checks the room is still registered. A callback firing after
// removal must not touch the room.
func (r *Room) alive() bool {
	return r.registry == nil || r.registry.Get(r.ID) == r
}

// runTick advances the simulation one step and reports whether the game
// ended.
func (r *Room) runTick() bool {
	r.mu.Lock()
	if r.status != StatusActive {
		r.mu.Unlock()
		return true
	}
	events := Step(r.state, r.config, r.rng)
	r.tick++
	snap := r.snapshotLocked()
	winner, done := CheckWin(r.state, r.config.WinScore)
	r.mu.Unlock()

	for _, ev := range events {
		r.broadcast(Envelope{T: MsgCollision, Data: CollisionMsg{
			PlayerNick: ev.Nick,
			ReasonCode: ev.Reason,
			Color:      ev.Color,
		}})
		if r.registry != nil {
			r.registry.trackEvent(EvtCollision, r.ID)
		}
	}
	r.broadcastState(snap)

	if done {
		r.finish(winner)
	}
	return done
}

func (r *Room) snapshotLocked() StateSnapshot {
	snap := StateSnapshot{
		P1:   r.state.P1.ToState(),
		P2:   r.state.P2.ToState(),
		Tick: r.tick,
	}
	for _, pk := range r.state.Pickups {
		snap.Pickups = append(snap.Pickups, *pk)
	}
	return snap
}

// HandleInput applies a direction request from the given slot. Input
// outside the ACTIVE phase is stale and dropped without error.
func (r *Room) HandleInput(role string, in InputMsg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusActive {
		return
	}
	if actor := r.state.Actor(role); actor != nil {
		actor.SetDirection(in.XV, in.YV)
	}
}

// HandleDesign updates a player's colors mid-room and pushes the new
// state so the opponent sees the change immediately.
func (r *Room) HandleDesign(role string, d Design) {
	r.mu.Lock()
	actor := r.state.Actor(role)
	if actor == nil {
		r.mu.Unlock()
		return
	}
	actor.Design = d
	for _, p := range r.players {
		if p.Role == role {
			p.Identity.Design = d
		}
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.broadcastState(snap)
}

// PlayerLeft handles a disconnect. In any non-terminal phase the room
// finishes immediately: the remaining player is notified, no winner is
// computed and no rating moves.
func (r *Room) PlayerLeft(role string) {
	r.mu.Lock()
	if r.status == StatusFinished {
		r.mu.Unlock()
		return
	}
	r.status = StatusFinished
	r.mu.Unlock()

	r.broadcast(Envelope{T: MsgPlayerLeft})
	if r.registry != nil {
		r.registry.trackEvent(EvtPlayerLeft, r.ID)
		r.registry.Remove(r.ID)
	}
}

// finish ends a decisive or drawn game: computes the Elo movement, tells
// both players the outcome, hands the match record to persistence and
// releases the room. Termination runs at most once even if a disconnect
// races the win detection.
func (r *Room) finish(winnerSlot string) {
	r.mu.Lock()
	if r.status == StatusFinished {
		r.mu.Unlock()
		return
	}
	r.status = StatusFinished

	winnerName := WinnerDraw
	if winnerSlot != WinnerDraw {
		winnerName = r.state.Actor(winnerSlot).Nick
	}

	// Elo moves only for a decisive result between two real players.
	eloChange := 0
	var p1, p2 *RoomPlayer
	for _, p := range r.players {
		switch p.Role {
		case SlotP1:
			p1 = p
		case SlotP2:
			p2 = p
		}
	}
	if winnerSlot != WinnerDraw && p1 != nil && p2 != nil {
		actual := 0
		if winnerSlot == SlotP1 {
			actual = 1
		}
		eloChange = EloChange(p1.Identity.Elo, p2.Identity.Elo, actual)
	}

	rec := MatchRecord{
		P1:        "Unknown",
		P2:        "Training Dummy",
		Score1:    r.state.P1.Score,
		Score2:    r.state.P2.Score,
		Winner:    winnerName,
		EloChange: abs(eloChange),
		Mode:      r.Mode,
	}
	if p1 != nil {
		rec.P1 = p1.Identity.Nick
	}
	if p2 != nil {
		rec.P2 = p2.Identity.Nick
	}
	r.mu.Unlock()

	r.broadcast(Envelope{T: MsgGameOver, Data: GameOverMsg{
		Winner:    winnerName,
		EloChange: abs(eloChange),
	}})

	if r.registry != nil {
		r.registry.finishMatch(r, rec, p1, p2, eloChange)
		r.registry.Remove(r.ID)
	}
}

// Stop cancels the room's schedulers. Safe to call more than once;
// concurrent disconnect and win detection both end up here.
func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = StatusFinished
	if !r.stopped {
		r.stopped = true
		close(r.stop)
	}
}

// broadcast sends a JSON message to every occupant
func (r *Room) broadcast(msg Envelope) {
	r.mu.Lock()
	players := make([]*RoomPlayer, len(r.players))
	copy(players, r.players)
	r.mu.Unlock()
	for _, p := range players {
		p.Client.SendJSON(msg)
	}
}

// broadcastState sends the per-tick snapshot to every occupant
func (r *Room) broadcastState(snap StateSnapshot) {
	r.mu.Lock()
	players := make([]*RoomPlayer, len(r.players))
	copy(players, r.players)
	r.mu.Unlock()
	for _, p := range players {
		p.Client.SendState(snap)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
