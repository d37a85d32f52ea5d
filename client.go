package main

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50

	profileHistoryLimit = 50
	globalHistoryLimit  = 20
	leaderboardLimit    = 10
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	id         string // connection ID, used in logs and telemetry
	remoteAddr string
	msgCount   int
	msgResetAt time.Time

	roomID string
	role   string

	identity Identity
	authed   bool
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		id:         uuid.NewString(),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks a binary frame queued by SendState
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.sendRaw(data)
}

// SendState sends a per-tick snapshot as a binary msgpack frame
func (c *Client) SendState(snap StateSnapshot) {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		log.Printf("msgpack marshal error: %v", err)
		return
	}
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker for WritePump
	copy(msg[1:], data)
	c.sendRaw(msg)
}

// sendRaw enqueues bytes, dropping the message if the client is too slow
func (c *Client) sendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: code}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgList:
		c.handleList()
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgInput:
		c.handleInput(env.D)
	case MsgDesign:
		c.handleDesign(env.D)
	case MsgLeave:
		c.handleLeave()
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.handleProfile()
	case MsgBoard:
		c.handleLeaderboard()
	case MsgHistory:
		c.handleHistory()
	}
}

func (c *Client) handleList() {
	c.SendJSON(Envelope{T: MsgRooms, Data: c.hub.registry.ListJoinable()})
}

// currentIdentity returns the authenticated identity, or mints a guest
// one from the requested nick on first use.
func (c *Client) currentIdentity(nick string) Identity {
	if c.authed {
		return c.identity
	}
	if c.identity.Nick == "" {
		c.identity = GuestIdentity(nick)
	}
	return c.identity
}

// inRoom reports whether the client is still part of a live room
func (c *Client) inRoom() *Room {
	if c.roomID == "" {
		return nil
	}
	room := c.hub.registry.Get(c.roomID)
	if room == nil {
		// Room already finished and was reclaimed
		c.roomID = ""
		c.role = ""
	}
	return room
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.inRoom() != nil {
		c.sendError(CodeAlreadyInRoom)
		return
	}

	room, role, err := c.hub.registry.CreateRoom(msg.Settings, c.currentIdentity(msg.Nick), c)
	if err != nil {
		c.sendError(errCode(err))
		return
	}
	c.roomID = room.ID
	c.role = role
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.inRoom() != nil {
		c.sendError(CodeAlreadyInRoom)
		return
	}

	room, role, err := c.hub.registry.JoinRoom(msg.RoomID, c.currentIdentity(msg.Nick), c)
	if err != nil {
		c.sendError(errCode(err))
		return
	}
	c.roomID = room.ID
	c.role = role
}

// handleInput forwards a direction request. Input with no live room is
// stale and dropped silently.
func (c *Client) handleInput(data json.RawMessage) {
	var msg InputMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if room := c.inRoom(); room != nil {
		room.HandleInput(c.role, msg)
	}
}

func (c *Client) handleDesign(data json.RawMessage) {
	var msg DesignMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if !ValidDesign(msg.Design) {
		return
	}
	c.identity.Design = msg.Design
	if room := c.inRoom(); room != nil {
		room.HandleDesign(c.role, msg.Design)
	}
	if c.authed && c.hub.db != nil {
		if err := c.hub.db.UpdateDesign(c.identity.Nick, msg.Design); err != nil {
			log.Printf("design update for %s: %v", c.identity.Nick, err)
		}
	}
}

func (c *Client) handleLeave() {
	room := c.inRoom()
	if room == nil {
		return
	}
	role := c.role
	c.roomID = ""
	c.role = ""
	room.PlayerLeft(role)
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.db == nil {
		c.sendError(CodeNotAuthed)
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.hub.analytics.Track(EvtRegister, "", "")
	c.finishAuth(id, token)
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.db == nil {
		c.sendError(CodeNotAuthed)
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.hub.analytics.Track(EvtLogin, "", "")
	c.finishAuth(id, token)
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.db == nil {
		c.sendError(CodeNotAuthed)
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError(CodeInvalidToken)
		return
	}
	c.finishAuth(id, msg.Token)
}

func (c *Client) finishAuth(id Identity, token string) {
	c.identity = id
	c.authed = true
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: id.Nick,
		Elo:      id.Elo,
		IsAdmin:  id.IsAdmin,
		Design:   id.Design,
	}})
}

func (c *Client) handleProfile() {
	if !c.authed || c.hub.db == nil {
		c.sendError(CodeNotAuthed)
		return
	}
	user, err := c.hub.db.GetUserByUsername(c.identity.Nick)
	if err != nil || user == nil {
		c.sendError(CodeProfileMissing)
		return
	}
	history, err := c.hub.db.GetHistoryFor(user.Username, profileHistoryLimit)
	if err != nil {
		log.Printf("history for %s: %v", user.Username, err)
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username: user.Username,
		Elo:      user.Elo,
		Wins:     user.Wins,
		Losses:   user.Losses,
		Design:   user.Design,
		History:  history,
	}})
}

func (c *Client) handleLeaderboard() {
	if c.hub.db == nil {
		c.SendJSON(Envelope{T: MsgBoardData, Data: []LeaderboardEntry{}})
		return
	}
	leaders, err := c.hub.db.GetLeaderboard(leaderboardLimit)
	if err != nil {
		log.Printf("leaderboard: %v", err)
		leaders = nil
	}
	c.SendJSON(Envelope{T: MsgBoardData, Data: leaders})
}

func (c *Client) handleHistory() {
	if c.hub.db == nil {
		c.SendJSON(Envelope{T: MsgHistoryData, Data: []MatchRecord{}})
		return
	}
	matches, err := c.hub.db.GetHistory(globalHistoryLimit)
	if err != nil {
		log.Printf("match history: %v", err)
		matches = nil
	}
	c.SendJSON(Envelope{T: MsgHistoryData, Data: matches})
}

// errCode maps registry errors to client-facing reason codes
func errCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return CodeBadConfig
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrRoomNotJoinable):
		return CodeRoomFull
	case errors.Is(err, ErrRoomLimit):
		return CodeRoomLimit
	}
	return "INTERNAL_ERROR"
}
