/*
Package game contains the core logic for chess sessions.

This file defines the wire shapes shared between the Room aggregate and the
gateway: player identity, room and game snapshots, move results, and the
server-push event names the Room emits through its Notifier.
*/
package game

// Server-push event names emitted by the Room.
const (
	EventRoomState        = "room:state"
	EventRoomError        = "room:error"
	EventGameStart        = "game:start"
	EventGameState        = "game:state"
	EventGameOver         = "game:over"
	EventMove             = "chess:move"
	EventRematchRequested = "game:rematch:requested"
	EventRematchStatus    = "game:rematch:status"
	EventDrawRequested    = "game:draw:requested"
	EventDrawStatus       = "game:draw:status"
)

// Room lifecycle statuses as reported in RoomState.
const (
	RoomStatusWaiting = "waiting"
	RoomStatusReady   = "ready"
	RoomStatusPlaying = "playing"
)

// Game statuses as reported in Snapshot, ordered by termination precedence.
const (
	StatusActive               = "active"
	StatusTimeout              = "timeout"
	StatusDraw                 = "draw"
	StatusCheckmate            = "checkmate"
	StatusStalemate            = "stalemate"
	StatusInsufficientMaterial = "insufficient_material"
	StatusThreefoldRepetition  = "threefold_repetition"
)

// Offer statuses as reported in draw/rematch status broadcasts.
const (
	OfferRequested = "requested"
	OfferDeclined  = "declined"
	OfferStarted   = "started"
	OfferAccepted  = "accepted"
)

// Player identifies a seated or online user.
type Player struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// PlayerState is a player entry in a RoomState, with live presence and,
// once a game exists, the assigned color.
type PlayerState struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Online   bool   `json:"online"`
	Color    string `json:"color,omitempty"`
}

// RoomState is the authoritative view of a room's occupancy.
type RoomState struct {
	RoomID  string        `json:"roomId"`
	Players []PlayerState `json:"players"`
	Status  string        `json:"status"`
}

// MoveRecord is one entry of the append-only move log.
type MoveRecord struct {
	From      string `json:"from"`
	To        string `json:"to"`
	SAN       string `json:"san"`
	ByUserID  string `json:"byUserId"`
	Timestamp int64  `json:"timestamp"`
}

// ClockState carries both remaining budgets in milliseconds.
type ClockState struct {
	W int64 `json:"w"`
	B int64 `json:"b"`
}

// SeatAssignment names the players by color.
type SeatAssignment struct {
	White Player `json:"white"`
	Black Player `json:"black"`
}

// Snapshot is the authoritative view of game, clock, and terminal status.
type Snapshot struct {
	RoomID      string         `json:"roomId"`
	FEN         string         `json:"fen"`
	Turn        string         `json:"turn"`
	IsCheck     bool           `json:"isCheck"`
	Status      string         `json:"status"`
	WinnerColor string         `json:"winnerColor,omitempty"`
	ClockMs     ClockState     `json:"clockMs"`
	Players     SeatAssignment `json:"players"`
	Moves       []MoveRecord   `json:"moves"`
}

// MoveResult is the delta broadcast after a successful move.
type MoveResult struct {
	RoomID string `json:"roomId"`
	From   string `json:"from"`
	To     string `json:"to"`
	SAN    string `json:"san"`
	FEN    string `json:"fen"`
	Turn   string `json:"turn"`
	By     Player `json:"by"`
}

// GameStartPayload announces a freshly started game.
type GameStartPayload struct {
	RoomID string `json:"roomId"`
	White  Player `json:"white"`
	Black  Player `json:"black"`
	FEN    string `json:"fen"`
	Turn   string `json:"turn"`
}

// StatusPayload reports a draw or rematch offer transition to the room.
type StatusPayload struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	By      *Player `json:"by,omitempty"`
}

// OfferPayload is the targeted notification delivered to the opponent when a
// draw or rematch is requested.
type OfferPayload struct {
	RoomID string `json:"roomId"`
	From   Player `json:"from"`
}

// ErrorPayload carries a room-scoped error broadcast.
type ErrorPayload struct {
	Message string `json:"message"`
}

// OfferAck is the acknowledgment data for draw and rematch events.
type OfferAck struct {
	WaitingFor string `json:"waitingFor,omitempty"`
	Started    bool   `json:"started,omitempty"`
	Accepted   bool   `json:"accepted,omitempty"`
}

// Notifier is the Room's outbound boundary, implemented by the gateway's
// presence layer. ToUser delivers an event to every live connection of one
// user; Online reports presence. Room fan-out is the union of its players'
// connection sets, so the room addresses users, never connections.
type Notifier interface {
	ToUser(userID, event string, payload any)
	Online(userID string) bool
}
