/*
Package gateway is the event-dispatched boundary of the session core.

This file defines the Gateway struct: the room registry, the userId-to-roomId
index, the presence layer, and the statically built handler table that routes
every inbound frame. Locking discipline: the registry mutex is acquired
before a room's mutex, never the other way; presence has its own lock and is
safe to query from under either.
*/
package gateway

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gambit/internal/app/game"
	"gambit/internal/app/social"
	"gambit/internal/pkg/errs"
	"gambit/internal/pkg/logx"
	"gambit/internal/pkg/randx"
)

// handlerFunc processes one inbound event and returns the ack data or error.
type handlerFunc func(c *Client, payload json.RawMessage, now time.Time) (any, *errs.CustomError)

// Gateway owns the global registries and routes every socket event.
type Gateway struct {
	// mu guards rooms and roomByUser.
	mu sync.RWMutex

	// rooms maps roomID to its Room aggregate.
	rooms map[string]*game.Room

	// roomByUser is the single-room index: userID to roomID.
	roomByUser map[string]string

	// presence tracks live connections and the online set.
	presence *presenceRegistry

	// friends answers the social graph's friendship predicate.
	friends social.Checker

	// clientOrigin is the base of generated invite links.
	clientOrigin string

	// handlers is the static event dispatch table.
	handlers map[string]handlerFunc

	// structured logger with gateway context.
	logger zerolog.Logger
}

// NewGateway constructs a Gateway with an empty registry and a fully built
// handler table.
func NewGateway(clientOrigin string, friends social.Checker) *Gateway {
	g := &Gateway{
		rooms:        make(map[string]*game.Room),
		roomByUser:   make(map[string]string),
		presence:     newPresenceRegistry(),
		friends:      friends,
		clientOrigin: clientOrigin,
		logger:       logx.Logger().With().Str("component", "gateway").Logger(),
	}

	g.handlers = map[string]handlerFunc{
		EventRoomCreate:     g.handleRoomCreate,
		EventRoomJoin:       g.handleRoomJoin,
		EventRoomLeave:      g.handleRoomLeave,
		EventRoomStateGet:   g.handleRoomState,
		EventGameStateGet:   g.handleGameState,
		EventMove:           g.handleMove,
		EventInviteSend:     g.handleInviteSend,
		EventRematchRequest: g.handleRematchRequest,
		EventRematchRespond: g.handleRematchRespond,
		EventDrawRequest:    g.handleDrawRequest,
		EventDrawRespond:    g.handleDrawRespond,
	}

	return g
}

// Register attaches an authenticated connection: presence bookkeeping,
// re-subscription to the user's room with a state catch-up for this
// connection, and the global online broadcast.
func (g *Gateway) Register(c *Client, now time.Time) {
	cameOnline := g.presence.add(c)

	g.mu.RLock()
	roomID, seated := g.roomByUser[c.user.UserID]
	room := g.rooms[roomID]
	g.mu.RUnlock()

	if seated && room != nil {
		c.SendEvent(game.EventRoomState, room.State())

		if snap, cerr := room.Snapshot(now); cerr == nil {
			c.SendEvent(game.EventGameState, snap)
		}

		if cameOnline {
			g.broadcastRoomState(room)
		}
	}

	g.presence.broadcast(EventPresenceOnline, g.presence.onlineList())

	g.logger.Info().
		Str("user_id", c.user.UserID).
		Str("conn_id", c.connID).
		Bool("came_online", cameOnline).
		Msg("Connection registered.")
}

// Unregister detaches a connection. The user keeps their seat; teammates see
// the presence flip when the last connection goes.
func (g *Gateway) Unregister(c *Client, now time.Time) {
	wentOffline := g.presence.remove(c)

	if !wentOffline {
		return
	}

	g.presence.broadcast(EventPresenceOnline, g.presence.onlineList())

	g.mu.RLock()
	roomID, seated := g.roomByUser[c.user.UserID]
	room := g.rooms[roomID]
	g.mu.RUnlock()

	if seated && room != nil {
		g.broadcastRoomState(room)
	}

	g.logger.Info().
		Str("user_id", c.user.UserID).
		Str("conn_id", c.connID).
		Msg("Connection unregistered.")
}

// Dispatch routes one inbound frame through the handler table and answers
// its ack exactly once.
func (g *Gateway) Dispatch(c *Client, frame Frame) {
	handler, ok := g.handlers[frame.Event]
	if !ok {
		c.logger.Warn().Str("event", frame.Event).Msg("Client sent unsupported event")
		c.sendAck(frame.AckID, false, nil, errs.NewError(errs.ErrInvalidParams).Message)
		return
	}

	data, cerr := handler(c, frame.Payload, time.Now())
	if cerr != nil {
		c.sendAck(frame.AckID, false, nil, cerr.Message)
		return
	}

	c.sendAck(frame.AckID, true, data, "")
}

// Online reports whether the user has at least one live connection.
func (g *Gateway) Online(userID string) bool {
	return g.presence.Online(userID)
}

// Reset clears every registry. Intended for tests and shutdown.
func (g *Gateway) Reset() {
	g.mu.Lock()
	g.rooms = make(map[string]*game.Room)
	g.roomByUser = make(map[string]string)
	g.mu.Unlock()

	g.presence.reset()
}

// Shutdown kicks every live connection and clears the registries.
func (g *Gateway) Shutdown() {
	g.logger.Info().Msg("Gateway shutting down.")

	for _, c := range g.presence.allClients() {
		c.Kick("Server shutting down")
	}

	g.Reset()
}

// broadcastRoomState fans the room's current state out to its players.
func (g *Gateway) broadcastRoomState(room *game.Room) {
	state := room.State()
	for _, p := range state.Players {
		g.presence.ToUser(p.UserID, game.EventRoomState, state)
	}
}

// roomOf resolves the caller's current room through the index.
func (g *Gateway) roomOf(userID string) (*game.Room, *errs.CustomError) {
	g.mu.RLock()
	roomID, seated := g.roomByUser[userID]
	room := g.rooms[roomID]
	g.mu.RUnlock()

	if !seated {
		return nil, errs.NewError(errs.ErrNotInRoom)
	}
	if room == nil {
		return nil, errs.NewError(errs.ErrRoomGone)
	}

	return room, nil
}

// bind unmarshals an optional payload into dst.
func bind(payload json.RawMessage, dst any) *errs.CustomError {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return errs.NewError(errs.ErrInvalidParams)
	}
	return nil
}

// normalizeRoomID uppercases a client-supplied room identifier.
func normalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// handleRoomCreate creates a room, honoring an optional client seed, and
// seats the caller.
func (g *Gateway) handleRoomCreate(c *Client, payload json.RawMessage, now time.Time) (any, *errs.CustomError) {
	var input CreateRoomInput
	if cerr := bind(payload, &input); cerr != nil {
		return nil, cerr
	}

	seed := normalizeRoomID(input.RoomID)
	if seed != "" && !randx.IsValidRoomID(seed) {
		return nil, errs.NewError(errs.ErrInvalidRoom)
	}

	uid := c.user.UserID

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, seated := g.roomByUser[uid]; seated {
		return nil, errs.NewError(errs.ErrLeaveCurrentRoomFirst)
	}

	// A colliding seed is not rejected; fresh random IDs are tried instead.
	id := seed
	if id == "" {
		id = randx.RoomID()
	}
	for {
		if _, exists := g.rooms[id]; !exists {
			break
		}
		id = randx.RoomID()
	}

	room := game.NewRoom(id, g.presence)
	g.rooms[id] = room
	g.roomByUser[uid] = id

	state, cerr := room.Join(now, c.user.Player())
	if cerr != nil {
		delete(g.rooms, id)
		delete(g.roomByUser, uid)
		return nil, cerr
	}

	g.logger.Info().Str("room_id", id).Str("user_id", uid).Msg("Room created.")

	return state, nil
}

// handleRoomJoin seats the caller in an existing room. Joining one's current
// room is idempotent.
func (g *Gateway) handleRoomJoin(c *Client, payload json.RawMessage, now time.Time) (any, *errs.CustomError) {
	var input JoinRoomInput
	if cerr := bind(payload, &input); cerr != nil {
		return nil, cerr
	}

	id := normalizeRoomID(input.RoomID)
	if !randx.IsValidRoomID(id) {
		return nil, errs.NewError(errs.ErrInvalidRoom)
	}

	uid := c.user.UserID

	g.mu.Lock()
	defer g.mu.Unlock()

	if current, seated := g.roomByUser[uid]; seated {
		if current != id {
			return nil, errs.NewError(errs.ErrAlreadyInRoom)
		}
		if room := g.rooms[current]; room != nil {
			return room.State(), nil
		}
		return nil, errs.NewError(errs.ErrRoomGone)
	}

	room, ok := g.rooms[id]
	if !ok {
		return nil, errs.NewError(errs.ErrRoomNotFound)
	}

	state, cerr := room.Join(now, c.user.Player())
	if cerr != nil {
		return nil, cerr
	}

	g.roomByUser[uid] = id

	return state, nil
}

// handleRoomLeave removes the caller from their room, discarding the game if
// they were seated in one, and destroys the room when it empties.
func (g *Gateway) handleRoomLeave(c *Client, _ json.RawMessage, _ time.Time) (any, *errs.CustomError) {
	uid := c.user.UserID

	g.mu.Lock()
	defer g.mu.Unlock()

	roomID, seated := g.roomByUser[uid]
	if !seated {
		return nil, errs.NewError(errs.ErrNotInRoom)
	}

	delete(g.roomByUser, uid)

	if room := g.rooms[roomID]; room != nil {
		if empty := room.Leave(uid); empty {
			delete(g.rooms, roomID)
			g.logger.Info().Str("room_id", roomID).Msg("Room destroyed.")
		}
	}

	return nil, nil
}

// handleRoomState returns the caller's current room state.
func (g *Gateway) handleRoomState(c *Client, _ json.RawMessage, _ time.Time) (any, *errs.CustomError) {
	room, cerr := g.roomOf(c.user.UserID)
	if cerr != nil {
		return nil, cerr
	}

	return room.State(), nil
}

// handleGameState returns the authoritative game snapshot, folding the clock.
func (g *Gateway) handleGameState(c *Client, _ json.RawMessage, now time.Time) (any, *errs.CustomError) {
	room, cerr := g.roomOf(c.user.UserID)
	if cerr != nil {
		return nil, cerr
	}

	return room.Snapshot(now)
}

// handleMove applies a chess move in the caller's room.
func (g *Gateway) handleMove(c *Client, payload json.RawMessage, now time.Time) (any, *errs.CustomError) {
	var input MoveInput
	if cerr := bind(payload, &input); cerr != nil {
		return nil, cerr
	}

	room, cerr := g.roomOf(c.user.UserID)
	if cerr != nil {
		return nil, cerr
	}

	if id := normalizeRoomID(input.RoomID); id != "" && id != room.ID {
		return nil, errs.NewError(errs.ErrInviteNotInRoom)
	}

	return room.ApplyMove(now, c.user.UserID, input.From, input.To, input.Promotion)
}

// handleRematchRequest proposes a rematch after game over.
func (g *Gateway) handleRematchRequest(c *Client, _ json.RawMessage, now time.Time) (any, *errs.CustomError) {
	room, cerr := g.roomOf(c.user.UserID)
	if cerr != nil {
		return nil, cerr
	}

	return room.ProposeRematch(now, c.user.UserID)
}

// handleRematchRespond answers a pending rematch request.
func (g *Gateway) handleRematchRespond(c *Client, payload json.RawMessage, now time.Time) (any, *errs.CustomError) {
	var input RespondInput
	if cerr := bind(payload, &input); cerr != nil {
		return nil, cerr
	}

	room, cerr := g.roomOf(c.user.UserID)
	if cerr != nil {
		return nil, cerr
	}

	return room.RespondRematch(now, c.user.UserID, input.Accept)
}

// handleDrawRequest offers a draw during active play.
func (g *Gateway) handleDrawRequest(c *Client, _ json.RawMessage, now time.Time) (any, *errs.CustomError) {
	room, cerr := g.roomOf(c.user.UserID)
	if cerr != nil {
		return nil, cerr
	}

	return room.ProposeDraw(now, c.user.UserID)
}

// handleDrawRespond answers a pending draw offer.
func (g *Gateway) handleDrawRespond(c *Client, payload json.RawMessage, now time.Time) (any, *errs.CustomError) {
	var input RespondInput
	if cerr := bind(payload, &input); cerr != nil {
		return nil, cerr
	}

	room, cerr := g.roomOf(c.user.UserID)
	if cerr != nil {
		return nil, cerr
	}

	return room.RespondDraw(now, c.user.UserID, input.Accept)
}
