package main

import "encoding/json"

// Client -> Server message types
const (
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth" // resume session from stored token
	MsgCreate   = "create"
	MsgJoin     = "join"
	MsgList     = "list"
	MsgInput    = "input"
	MsgDesign   = "design"
	MsgLeave    = "leave"
	MsgProfile  = "profile"
	MsgBoard    = "leaderboard"
	MsgHistory  = "history"
)

// Server -> Client message types
const (
	MsgRooms       = "rooms"
	MsgRoomJoined  = "room_joined"
	MsgLobby       = "lobby"
	MsgCountdown   = "countdown"
	MsgGameStart   = "game_start"
	MsgState       = "state" // binary msgpack StateSnapshot
	MsgCollision   = "collision"
	MsgGameOver    = "game_over"
	MsgPlayerLeft  = "player_left"
	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
	MsgBoardData   = "leaderboard_data"
	MsgHistoryData = "history_data"
	MsgAchievement = "achievement"
	MsgError       = "error"
)

// Error reason codes surfaced to the originating client
const (
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodeRoomFull       = "ROOM_NOT_JOINABLE"
	CodeBadConfig      = "INVALID_CONFIG"
	CodeRoomLimit      = "ROOM_LIMIT"
	CodeAlreadyInRoom  = "ALREADY_IN_ROOM"
	CodeNotInRoom      = "NOT_IN_ROOM"
	CodeNotAuthed      = "NOT_AUTHENTICATED"
	CodeInvalidToken   = "INVALID_TOKEN"
	CodeProfileMissing = "PROFILE_NOT_FOUND"
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates with credentials
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg authenticates with a stored token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Elo      int    `json:"elo"`
	IsAdmin  bool   `json:"isAdmin"`
	Design   Design `json:"design"`
}

// CreateMsg asks for a new room with the given settings. Nick is only
// honored for guests; authenticated users play under their account name.
type CreateMsg struct {
	Nick     string     `json:"nick,omitempty"`
	Settings RoomConfig `json:"settings"`
}

// JoinMsg joins an existing room
type JoinMsg struct {
	RoomID string `json:"roomId"`
	Nick   string `json:"nick,omitempty"`
}

// InputMsg is a direction change request
type InputMsg struct {
	XV int `json:"xv"`
	YV int `json:"yv"`
}

// DesignMsg updates the sender's snake colors
type DesignMsg struct {
	Design Design `json:"design"`
}

// RoomJoinedMsg tells a client which room and slot it got
type RoomJoinedMsg struct {
	RoomID string     `json:"roomId"`
	Role   string     `json:"role"`
	Config RoomConfig `json:"config"`
}

// LobbyPlayer is one occupant in a lobby update
type LobbyPlayer struct {
	Nick string `json:"nick"`
	Role string `json:"role"`
	Elo  int    `json:"elo"`
}

// LobbyMsg is broadcast to a room when its occupancy changes
type LobbyMsg struct {
	Players []LobbyPlayer `json:"players"`
}

// RoomSummary is one entry in the public joinable-rooms list
type RoomSummary struct {
	ID         string     `json:"id"`
	Creator    string     `json:"creator"`
	CreatorElo int        `json:"creatorElo"`
	Config     RoomConfig `json:"config"`
}

// CollisionMsg is broadcast whenever a penalty lands
type CollisionMsg struct {
	PlayerNick string `json:"playerNick"`
	ReasonCode string `json:"reasonCode"`
	Color      string `json:"color"`
}

// GameOverMsg ends a match. Winner is a nick, or "DRAW". EloChange is the
// absolute rating movement (0 for draws and unrated games).
type GameOverMsg struct {
	Winner    string `json:"winner"`
	EloChange int    `json:"eloChange"`
}

// ActorState is the broadcast form of one snake
type ActorState struct {
	X        int    `msgpack:"x" json:"x"`
	Y        int    `msgpack:"y" json:"y"`
	XV       int    `msgpack:"xv" json:"xv"`
	YV       int    `msgpack:"yv" json:"yv"`
	FacingX  int    `msgpack:"fx" json:"facingX"`
	FacingY  int    `msgpack:"fy" json:"facingY"`
	Trail    []Cell `msgpack:"trail" json:"trail"`
	Tail     int    `msgpack:"tail" json:"tail"`
	Score    int    `msgpack:"score" json:"score"`
	Immunity int    `msgpack:"imm" json:"immunity"`
	Nick     string `msgpack:"nick" json:"nick"`
	Design   Design `msgpack:"design" json:"design"`
}

// StateSnapshot is the full per-tick state, msgpack-encoded and sent as a
// binary frame
type StateSnapshot struct {
	P1      ActorState `msgpack:"p1"`
	P2      ActorState `msgpack:"p2"`
	Pickups []Pickup   `msgpack:"apples"`
	Tick    uint64     `msgpack:"tick"`
}

// MatchRecord is one finished match, as stored and as served in history
type MatchRecord struct {
	P1        string `json:"p1"`
	P2        string `json:"p2"`
	Score1    int    `json:"score1"`
	Score2    int    `json:"score2"`
	Winner    string `json:"winner"`
	EloChange int    `json:"eloChange"`
	Mode      string `json:"mode"`
	Date      string `json:"date"`
}

// ProfileDataMsg answers a profile request for the authenticated user
type ProfileDataMsg struct {
	Username string        `json:"username"`
	Elo      int           `json:"elo"`
	Wins     int           `json:"wins"`
	Losses   int           `json:"losses"`
	Design   Design        `json:"design"`
	History  []MatchRecord `json:"history"`
}

// LeaderboardEntry is one row of the Elo top list
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Elo      int    `json:"elo"`
}

// AchievementMsg notifies a newly unlocked achievement
type AchievementMsg struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorMsg sends a reason code to the originating client only
type ErrorMsg struct {
	Msg string `json:"msg"`
}
