/*
Package gateway is the event-dispatched boundary of the session core.

This file defines the wire protocol: frame and acknowledgment envelopes,
client-to-server event names, and the inbound payload shapes. The semantics
follow Socket.IO's named-event-with-ack model over a plain websocket: every
inbound frame carrying an ackId receives exactly one ack.
*/
package gateway

import (
	"encoding/json"

	"gambit/internal/app/game"
)

// Client-to-server event names.
const (
	EventRoomCreate     = "room:create"
	EventRoomJoin       = "room:join"
	EventRoomLeave      = "room:leave"
	EventRoomStateGet   = "room:state"
	EventGameStateGet   = "game:state"
	EventMove           = "chess:move"
	EventInviteSend     = "invite:send"
	EventRematchRequest = "game:rematch:request"
	EventRematchRespond = "game:rematch:respond"
	EventDrawRequest    = "game:draw:request"
	EventDrawRespond    = "game:draw:respond"
)

// Server-push event names owned by the gateway (room-level pushes live in the
// game package).
const (
	EventPresenceOnline = "presence:online"
	EventInviteReceived = "invite:received"

	// eventAck is the reserved envelope name for acknowledgments.
	eventAck = "ack"
)

// Frame is an inbound client message. AckID zero means fire-and-forget.
type Frame struct {
	Event   string          `json:"event"`
	AckID   int64           `json:"ackId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Ack is the response envelope: exactly one per ack-bearing frame, carrying
// either data or an error string, never both.
type Ack struct {
	Event string `json:"event"`
	AckID int64  `json:"ackId"`
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Push is a server-initiated event.
type Push struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// CreateRoomInput optionally seeds the room ID.
type CreateRoomInput struct {
	RoomID string `json:"roomId,omitempty"`
}

// JoinRoomInput names the room to join.
type JoinRoomInput struct {
	RoomID string `json:"roomId"`
}

// MoveInput carries a move request.
type MoveInput struct {
	RoomID    string `json:"roomId,omitempty"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// InviteInput carries a friend invite request.
type InviteInput struct {
	ToUserID string `json:"toUserId"`
	RoomID   string `json:"roomId,omitempty"`
}

// RespondInput answers a pending draw or rematch offer.
type RespondInput struct {
	Accept bool `json:"accept"`
}

// InviteResult is the invite ack data.
type InviteResult struct {
	RoomID     string `json:"roomId"`
	InviteLink string `json:"inviteLink"`
}

// InviteReceivedPayload is delivered to every connection of the invitee.
type InviteReceivedPayload struct {
	From       game.Player `json:"from"`
	RoomID     string      `json:"roomId"`
	InviteLink string      `json:"inviteLink"`
}
