package main

import (
	"errors"
	"log"
	"sync"
)

const maxRooms = 100

// Room lifecycle errors, surfaced to the requesting client only
var (
	ErrInvalidConfig   = errors.New("invalid room config")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomNotJoinable = errors.New("room not joinable")
	ErrRoomLimit       = errors.New("room limit reached")
)

// ListSink receives joinable-room list updates for all connected
// observers. Implemented by the Hub.
type ListSink interface {
	BroadcastJSON(msg interface{})
}

// Registry owns the set of live rooms. Its map is the only state shared
// across rooms; each room ticks independently behind its own lock.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	lists     ListSink
	db        *DB
	analytics *Analytics
}

// NewRegistry creates an empty registry. db and analytics may be nil in
// tests; persistence and telemetry are then skipped.
func NewRegistry(db *DB, analytics *Analytics) *Registry {
	return &Registry{
		rooms:     make(map[string]*Room),
		db:        db,
		analytics: analytics,
	}
}

// SetListSink wires the observer broadcast target
func (reg *Registry) SetListSink(s ListSink) {
	reg.lists = s
}

// CreateRoom allocates a room with the creator in slot p1 and publishes
// the updated joinable list. An admin creator starts a solo practice run
// immediately instead of waiting for an opponent.
func (reg *Registry) CreateRoom(cfg RoomConfig, id Identity, client Broadcaster) (*Room, string, error) {
	norm, err := cfg.Normalize()
	if err != nil {
		return nil, "", err
	}

	reg.mu.Lock()
	if len(reg.rooms) >= maxRooms {
		reg.mu.Unlock()
		return nil, "", ErrRoomLimit
	}
	code := GenerateRoomCode()
	for reg.rooms[code] != nil {
		code = GenerateRoomCode()
	}
	room := NewRoom(code, norm, reg)
	reg.rooms[code] = room
	reg.mu.Unlock()

	role, err := room.AddPlayer(id, client)
	if err != nil {
		reg.Remove(code)
		return nil, "", err
	}

	reg.trackEvent(EvtRoomCreated, code)
	reg.updateGauges()
	reg.BroadcastList()
	return room, role, nil
}

// JoinRoom seats an identity in slot p2 of an existing waiting room
func (reg *Registry) JoinRoom(roomID string, id Identity, client Broadcaster) (*Room, string, error) {
	room := reg.Get(roomID)
	if room == nil {
		return nil, "", ErrRoomNotFound
	}
	role, err := room.AddPlayer(id, client)
	if err != nil {
		return nil, "", err
	}
	reg.BroadcastList()
	return room, role, nil
}

// Get returns a room by ID, or nil
func (reg *Registry) Get(roomID string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[roomID]
}

// Remove stops a room's schedulers and releases it. Idempotent; the
// finish and disconnect paths may both land here.
func (reg *Registry) Remove(roomID string) {
	reg.mu.Lock()
	room, ok := reg.rooms[roomID]
	if ok {
		delete(reg.rooms, roomID)
	}
	reg.mu.Unlock()
	if !ok {
		return
	}
	room.Stop()
	reg.updateGauges()
	reg.BroadcastList()
}

// RoomCount returns the number of live rooms
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// ListJoinable returns the public summaries of rooms still waiting for an
// opponent
func (reg *Registry) ListJoinable() []RoomSummary {
	reg.mu.RLock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.RUnlock()

	list := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		if room.joinable() {
			list = append(list, room.Summary())
		}
	}
	return list
}

// BroadcastList pushes the joinable list to all observers
func (reg *Registry) BroadcastList() {
	if reg.lists == nil {
		return
	}
	reg.lists.BroadcastJSON(Envelope{T: MsgRooms, Data: reg.ListJoinable()})
}

func (reg *Registry) trackEvent(evtType, roomID string) {
	if reg.analytics != nil {
		reg.analytics.Track(evtType, roomID, "")
	}
}

func (reg *Registry) updateGauges() {
	if reg.analytics != nil {
		reg.analytics.SetActiveRooms(reg.RoomCount())
	}
}

// finishMatch hands a terminated match to the persistence collaborator:
// the durable record, the rating movement and any achievement unlocks.
// Fire-and-forget: failures are logged and never reach the room.
func (reg *Registry) finishMatch(r *Room, rec MatchRecord, p1, p2 *RoomPlayer, eloChange int) {
	reg.trackEvent(EvtMatchEnd, r.ID)
	if reg.db == nil {
		return
	}
	go func() {
		if err := reg.db.SaveMatch(rec); err != nil {
			log.Printf("room %s: save match: %v", r.ID, err)
		}
		if eloChange != 0 && p1 != nil && p2 != nil {
			reg.applyDelta(p1, eloChange)
			reg.applyDelta(p2, -eloChange)
		}
		if rec.Winner != WinnerDraw {
			reg.recordResult(p1, rec.Winner)
			reg.recordResult(p2, rec.Winner)
		}
	}()
}

func (reg *Registry) applyDelta(p *RoomPlayer, delta int) {
	if p.Identity.UserID == 0 {
		return // guests are never rated
	}
	if err := reg.db.ApplyEloDelta(p.Identity.Nick, delta); err != nil {
		log.Printf("elo update for %s: %v", p.Identity.Nick, err)
	}
}

// recordResult updates win/loss stats for a registered player and pushes
// any achievements the result unlocked.
func (reg *Registry) recordResult(p *RoomPlayer, winnerName string) {
	if p == nil || p.Identity.UserID == 0 {
		return
	}
	won := p.Identity.Nick == winnerName
	if err := reg.db.RecordResult(p.Identity.UserID, won); err != nil {
		log.Printf("record result for %s: %v", p.Identity.Nick, err)
		return
	}
	for _, def := range CheckAchievements(reg.db, p.Identity.UserID) {
		p.Client.SendJSON(Envelope{T: MsgAchievement, Data: AchievementMsg{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
		}})
	}
}
