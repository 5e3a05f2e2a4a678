/*
Package game contains the core logic for chess sessions.

This file defines the Room aggregate: seated players, the optional Game
(rules + clock + pending offers + move log), and the lifecycle state machine
covering auto-start, moves, draw and rematch protocols, and leave handling.

All mutations of a room are serialized by its mutex. The only I/O performed
under the lock is outbound emission through the Notifier; the Notifier must
never wait on a room lock in turn.
*/
package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gambit/internal/pkg/errs"
	"gambit/internal/pkg/logx"
	"gambit/internal/pkg/randx"
)

// MaxPlayers is the seat capacity of a room.
const MaxPlayers = 2

// Game bundles the rules engine, the clock, and the side-protocol state for
// one game between the two seated players.
type Game struct {
	rules   *Rules
	clock   *Clock
	whiteID string
	blackID string

	agreedDraw     bool
	pendingDraw    map[string]struct{}
	pendingRematch map[string]struct{}

	moves []MoveRecord
}

// Room is a single in-memory aggregate owning up to two seated players and
// their game. The gateway owns the registry of rooms; the room never sees
// connections, only userIDs.
type Room struct {
	// ID is the uppercase alphanumeric room identifier.
	ID string

	mu       sync.Mutex
	players  []Player
	game     *Game
	notifier Notifier
	logger   zerolog.Logger
}

// NewRoom creates an empty room emitting through the given notifier.
func NewRoom(id string, notifier Notifier) *Room {
	roomLogger := logx.Logger().With().
		Str("room_id", id).
		Logger()

	return &Room{
		ID:       id,
		players:  make([]Player, 0, MaxPlayers),
		notifier: notifier,
		logger:   roomLogger,
	}
}

// Join seats the user. Rejoining one's own seat is idempotent and returns the
// current state. Reaching two players auto-starts a game.
func (r *Room) Join(now time.Time, p Player) (*RoomState, *errs.CustomError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seatIndex(p.UserID) < 0 {
		if len(r.players) >= MaxPlayers {
			return nil, errs.NewError(errs.ErrRoomFull)
		}

		r.players = append(r.players, p)
		r.logger.Info().
			Str("user_id", p.UserID).
			Int("seats_taken", len(r.players)).
			Msg("Player joined room.")

		r.broadcastLocked(EventRoomState, r.stateLocked())

		if len(r.players) == MaxPlayers {
			r.startGameLocked(now)
		}
	}

	return r.stateLocked(), nil
}

// Leave unseats the user. A seated player's departure discards the game with
// its clock, pending offers, and move log. Returns the room-empty flag so the
// gateway can drop the room from its registry.
func (r *Room) Leave(userID string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.seatIndex(userID)
	if idx < 0 {
		return len(r.players) == 0
	}

	leaver := r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)

	if r.game != nil {
		r.logger.Info().
			Str("user_id", userID).
			Msg("Seated player left; discarding game.")
		r.game = nil
	}

	if len(r.players) > 0 {
		r.broadcastLocked(EventRoomError, ErrorPayload{
			Message: fmt.Sprintf("%s left the room", leaver.Username),
		})
		r.broadcastLocked(EventRoomState, r.stateLocked())
	}

	return len(r.players) == 0
}

// State returns the current room state.
func (r *Room) State() *RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stateLocked()
}

// Snapshot folds the clock at now and returns the authoritative game view.
func (r *Room) Snapshot(now time.Time) (*Snapshot, *errs.CustomError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.game == nil {
		return nil, errs.NewError(errs.ErrGameNotStarted)
	}

	return r.snapshotLocked(now), nil
}

// HasPlayer reports whether the user occupies a seat.
func (r *Room) HasPlayer(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.seatIndex(userID) >= 0
}

// ApplyMove validates and applies a move for the user. Validation failures
// leave the room unchanged beyond ordinary clock sampling.
func (r *Room) ApplyMove(now time.Time, userID, from, to, promotion string) (*MoveResult, *errs.CustomError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := r.game
	if g == nil {
		return nil, errs.NewError(errs.ErrGameNotStarted)
	}

	snap := r.snapshotLocked(now)
	if snap.Status != StatusActive {
		r.broadcastLocked(EventGameOver, snap)
		return nil, errs.NewError(errs.ErrGameOver)
	}

	color := r.colorOf(userID)
	if color == "" {
		return nil, errs.NewError(errs.ErrNotAPlayer)
	}

	if g.rules.Turn() != color {
		return nil, errs.NewError(errs.ErrNotYourTurn)
	}

	if trimmed(from) == "" || trimmed(to) == "" {
		return nil, errs.NewError(errs.ErrMoveSquaresMissing)
	}

	outcome, err := g.rules.Move(from, to, promotion)
	if err != nil {
		return nil, errs.NewError(errs.ErrIllegalMove)
	}

	g.clock.Switch(now)

	mover := r.players[r.seatIndex(userID)]
	g.moves = append(g.moves, MoveRecord{
		From:      trimmed(from),
		To:        trimmed(to),
		SAN:       outcome.SAN,
		ByUserID:  userID,
		Timestamp: now.UnixMilli(),
	})

	result := &MoveResult{
		RoomID: r.ID,
		From:   trimmed(from),
		To:     trimmed(to),
		SAN:    outcome.SAN,
		FEN:    outcome.FEN,
		Turn:   outcome.NextTurn,
		By:     mover,
	}

	r.logger.Info().
		Str("user_id", userID).
		Str("san", outcome.SAN).
		Msg("Move applied.")

	r.broadcastLocked(EventMove, result)

	after := r.snapshotLocked(now)
	if after.Status != StatusActive {
		r.broadcastLocked(EventGameOver, after)
	}

	return result, nil
}

// ProposeDraw records a draw offer by the user and notifies the opponent.
// Offering twice is idempotent. A later move by the proposer does not revoke
// the offer; it stands until responded to or the game ends.
func (r *Room) ProposeDraw(now time.Time, userID string) (*OfferAck, *errs.CustomError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := r.game
	if g == nil {
		return nil, errs.NewError(errs.ErrGameNotStarted)
	}

	if r.snapshotLocked(now).Status != StatusActive {
		return nil, errs.NewError(errs.ErrGameOver)
	}

	idx := r.seatIndex(userID)
	if idx < 0 || r.colorOf(userID) == "" {
		return nil, errs.NewError(errs.ErrNotAPlayer)
	}

	proposer := r.players[idx]
	opponent, ok := r.opponentOf(userID)
	if !ok {
		return nil, errs.NewError(errs.ErrOpponentGone)
	}

	g.pendingDraw[userID] = struct{}{}

	r.notifier.ToUser(opponent.UserID, EventDrawRequested, OfferPayload{
		RoomID: r.ID,
		From:   proposer,
	})
	r.broadcastLocked(EventDrawStatus, StatusPayload{
		Status:  OfferRequested,
		Message: fmt.Sprintf("%s offered a draw", proposer.Username),
		By:      &proposer,
	})

	return &OfferAck{WaitingFor: opponent.UserID}, nil
}

// RespondDraw answers a pending draw offer. Accepting sets the agreed-draw
// flag, which makes the next snapshot terminal; declining clears the offer.
func (r *Room) RespondDraw(now time.Time, userID string, accept bool) (*OfferAck, *errs.CustomError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := r.game
	if g == nil {
		return nil, errs.NewError(errs.ErrGameNotStarted)
	}

	if r.snapshotLocked(now).Status != StatusActive {
		return nil, errs.NewError(errs.ErrGameOver)
	}

	idx := r.seatIndex(userID)
	if idx < 0 || r.colorOf(userID) == "" {
		return nil, errs.NewError(errs.ErrNotAPlayer)
	}

	responder := r.players[idx]
	opponent, ok := r.opponentOf(userID)
	if !ok {
		return nil, errs.NewError(errs.ErrOpponentGone)
	}

	if _, pending := g.pendingDraw[opponent.UserID]; !pending {
		return nil, errs.NewError(errs.ErrNoDrawRequest)
	}

	g.pendingDraw = make(map[string]struct{})

	if !accept {
		r.broadcastLocked(EventDrawStatus, StatusPayload{
			Status:  OfferDeclined,
			Message: fmt.Sprintf("%s declined the draw", responder.Username),
			By:      &responder,
		})
		return &OfferAck{Accepted: false}, nil
	}

	g.agreedDraw = true

	r.broadcastLocked(EventDrawStatus, StatusPayload{
		Status:  OfferAccepted,
		Message: fmt.Sprintf("%s accepted the draw", responder.Username),
		By:      &responder,
	})
	r.broadcastLocked(EventGameOver, r.snapshotLocked(now))

	return &OfferAck{Accepted: true}, nil
}

// ProposeRematch records a rematch request after game over. If the opponent
// already requested one, the new game starts immediately.
func (r *Room) ProposeRematch(now time.Time, userID string) (*OfferAck, *errs.CustomError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := r.game
	if g == nil {
		return nil, errs.NewError(errs.ErrGameNotStarted)
	}

	if r.snapshotLocked(now).Status == StatusActive {
		return nil, errs.NewError(errs.ErrRematchNotAvailable)
	}

	idx := r.seatIndex(userID)
	if idx < 0 || r.colorOf(userID) == "" {
		return nil, errs.NewError(errs.ErrRematchNotPlayer)
	}

	proposer := r.players[idx]
	opponent, ok := r.opponentOf(userID)
	if !ok {
		return nil, errs.NewError(errs.ErrOpponentGone)
	}

	g.pendingRematch[userID] = struct{}{}

	if _, both := g.pendingRematch[opponent.UserID]; both {
		r.startRematchLocked(now)
		return &OfferAck{Started: true}, nil
	}

	r.notifier.ToUser(opponent.UserID, EventRematchRequested, OfferPayload{
		RoomID: r.ID,
		From:   proposer,
	})
	r.broadcastLocked(EventRematchStatus, StatusPayload{
		Status:  OfferRequested,
		Message: fmt.Sprintf("%s wants a rematch", proposer.Username),
		By:      &proposer,
	})

	return &OfferAck{WaitingFor: opponent.UserID}, nil
}

// RespondRematch answers a pending rematch request. Accepting with both
// players committed replaces the game, re-randomizing colors.
func (r *Room) RespondRematch(now time.Time, userID string, accept bool) (*OfferAck, *errs.CustomError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := r.game
	if g == nil {
		return nil, errs.NewError(errs.ErrGameNotStarted)
	}

	if r.snapshotLocked(now).Status == StatusActive {
		return nil, errs.NewError(errs.ErrRematchNotAvailable)
	}

	idx := r.seatIndex(userID)
	if idx < 0 || r.colorOf(userID) == "" {
		return nil, errs.NewError(errs.ErrRematchRespondNotPlayer)
	}

	responder := r.players[idx]
	opponent, ok := r.opponentOf(userID)
	if !ok {
		return nil, errs.NewError(errs.ErrOpponentGone)
	}

	if _, pending := g.pendingRematch[opponent.UserID]; !pending {
		return nil, errs.NewError(errs.ErrNoRematchRequest)
	}

	if !accept {
		g.pendingRematch = make(map[string]struct{})
		r.broadcastLocked(EventRematchStatus, StatusPayload{
			Status:  OfferDeclined,
			Message: fmt.Sprintf("%s declined the rematch", responder.Username),
			By:      &responder,
		})
		return &OfferAck{}, nil
	}

	g.pendingRematch[userID] = struct{}{}
	r.startRematchLocked(now)

	return &OfferAck{Started: true}, nil
}

// startRematchLocked replaces the finished game with a fresh one.
func (r *Room) startRematchLocked(now time.Time) {
	r.game = nil

	r.broadcastLocked(EventRematchStatus, StatusPayload{
		Status:  OfferStarted,
		Message: "Rematch accepted",
	})

	r.startGameLocked(now)
}

// startGameLocked creates the game once both seats are taken: colors are
// assigned by uniform-random permutation and the clock starts on white.
func (r *Room) startGameLocked(now time.Time) {
	if len(r.players) != MaxPlayers || r.game != nil {
		return
	}

	first, second := r.players[0], r.players[1]
	if randx.CoinFlip() {
		first, second = second, first
	}

	r.game = &Game{
		rules:          NewRules(),
		clock:          NewClock(now),
		whiteID:        first.UserID,
		blackID:        second.UserID,
		pendingDraw:    make(map[string]struct{}),
		pendingRematch: make(map[string]struct{}),
	}

	r.logger.Info().
		Str("white_user_id", first.UserID).
		Str("black_user_id", second.UserID).
		Msg("Game started.")

	r.broadcastLocked(EventGameStart, GameStartPayload{
		RoomID: r.ID,
		White:  first,
		Black:  second,
		FEN:    r.game.rules.FEN(),
		Turn:   r.game.rules.Turn(),
	})
	r.broadcastLocked(EventRoomState, r.stateLocked())
	r.broadcastLocked(EventGameState, r.snapshotLocked(now))
}

// stateLocked builds the RoomState. Callers hold the lock.
func (r *Room) stateLocked() *RoomState {
	players := make([]PlayerState, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, PlayerState{
			UserID:   p.UserID,
			Username: p.Username,
			Online:   r.notifier.Online(p.UserID),
			Color:    r.colorOf(p.UserID),
		})
	}

	status := RoomStatusWaiting
	switch {
	case r.game != nil:
		status = RoomStatusPlaying
	case len(r.players) == MaxPlayers:
		status = RoomStatusReady
	}

	return &RoomState{
		RoomID:  r.ID,
		Players: players,
		Status:  status,
	}
}

// snapshotLocked folds the clock, resolves the termination precedence, and
// freezes the clock on any terminal status. Callers hold the lock and have
// checked that a game exists.
func (r *Room) snapshotLocked(now time.Time) *Snapshot {
	g := r.game

	g.clock.Sample(now)

	status, winnerColor := r.resolveStatusLocked()
	if status != StatusActive {
		g.clock.Freeze()
	}

	white, _ := r.playerByID(g.whiteID)
	black, _ := r.playerByID(g.blackID)

	moves := make([]MoveRecord, len(g.moves))
	copy(moves, g.moves)

	return &Snapshot{
		RoomID:      r.ID,
		FEN:         g.rules.FEN(),
		Turn:        g.rules.Turn(),
		IsCheck:     g.rules.InCheck(),
		Status:      status,
		WinnerColor: winnerColor,
		ClockMs:     ClockState{W: g.clock.WhiteMs, B: g.clock.BlackMs},
		Players:     SeatAssignment{White: white, Black: black},
		Moves:       moves,
	}
}

// resolveStatusLocked evaluates the termination precedence: clocks first,
// then the agreed draw, then the board-derived states.
func (r *Room) resolveStatusLocked() (status, winnerColor string) {
	g := r.game

	switch {
	case g.clock.Flagged(SideWhite):
		return StatusTimeout, SideBlack
	case g.clock.Flagged(SideBlack):
		return StatusTimeout, SideWhite
	case g.agreedDraw:
		return StatusDraw, ""
	case g.rules.IsCheckmate():
		return StatusCheckmate, opposite(g.rules.Turn())
	case g.rules.IsStalemate():
		return StatusStalemate, ""
	case g.rules.IsInsufficientMaterial():
		return StatusInsufficientMaterial, ""
	case g.rules.IsThreefoldRepetition():
		return StatusThreefoldRepetition, ""
	case g.rules.IsDraw():
		return StatusDraw, ""
	default:
		return StatusActive, ""
	}
}

// broadcastLocked fans an event out to every seated player's connection set.
// Callers hold the lock.
func (r *Room) broadcastLocked(event string, payload any) {
	for _, p := range r.players {
		r.notifier.ToUser(p.UserID, event, payload)
	}
}

// seatIndex returns the player's index, or -1 when not seated.
func (r *Room) seatIndex(userID string) int {
	for i, p := range r.players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// playerByID resolves a seated player by userID.
func (r *Room) playerByID(userID string) (Player, bool) {
	idx := r.seatIndex(userID)
	if idx < 0 {
		return Player{}, false
	}
	return r.players[idx], true
}

// colorOf returns "w" or "b" for a seated game participant, "" otherwise.
func (r *Room) colorOf(userID string) string {
	if r.game == nil {
		return ""
	}
	switch userID {
	case r.game.whiteID:
		return SideWhite
	case r.game.blackID:
		return SideBlack
	}
	return ""
}

// opponentOf returns the other seated player.
func (r *Room) opponentOf(userID string) (Player, bool) {
	for _, p := range r.players {
		if p.UserID != userID {
			return p, true
		}
	}
	return Player{}, false
}

func opposite(side string) string {
	if side == SideWhite {
		return SideBlack
	}
	return SideWhite
}

func trimmed(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
