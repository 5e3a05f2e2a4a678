/*
Package game contains the core logic for chess sessions: the rules adapter,
the per-game countdown clock, and the Room aggregate that owns both.

This file wraps the chess rules engine behind a narrow adapter. The engine is
treated as opaque: any error or panic it produces while applying a move
surfaces as ErrIllegalMove. A FEN that fails to load returns the engine's
error.
*/
package game

import (
	"errors"
	"strings"

	"github.com/notnil/chess"
)

// Side identifiers as they appear on the wire and in FEN.
const (
	SideWhite = "w"
	SideBlack = "b"
)

// ErrIllegalMove is returned for any move the rules engine rejects.
var ErrIllegalMove = errors.New("illegal move")

// promotionPieces are the accepted promotion letters in UCI notation.
const promotionPieces = "qrbn"

// MoveOutcome describes a successfully applied move.
type MoveOutcome struct {
	// SAN is the move in Standard Algebraic Notation.
	SAN string

	// FEN is the position after the move.
	FEN string

	// NextTurn is the side to move after the move ("w" or "b").
	NextTurn string
}

// Rules adapts the chess engine to the operations the Room needs.
type Rules struct {
	game *chess.Game
}

// NewRules returns a Rules instance at the standard starting position.
func NewRules() *Rules {
	return &Rules{
		game: chess.NewGame(chess.UseNotation(chess.UCINotation{})),
	}
}

// NewRulesFromFEN returns a Rules instance loaded from the given position.
func NewRulesFromFEN(fen string) (*Rules, error) {
	option, err := chess.FEN(fen)
	if err != nil {
		return nil, err
	}

	return &Rules{
		game: chess.NewGame(option, chess.UseNotation(chess.UCINotation{})),
	}, nil
}

// Turn returns the side to move, "w" or "b".
func (r *Rules) Turn() string {
	return r.game.Position().Turn().String()
}

// FEN returns the current position serialized for client reconstruction.
func (r *Rules) FEN() string {
	return r.game.Position().String()
}

// InCheck reports whether the side to move is currently in check, read from
// the check tag of the last move played. A position with no moves played
// (including one loaded from FEN) reports false.
func (r *Rules) InCheck() bool {
	moves := r.game.Moves()
	if len(moves) == 0 {
		return false
	}
	return moves[len(moves)-1].HasTag(chess.Check)
}

// Move applies a move given as two algebraic squares plus an optional
// promotion piece. Inputs are trimmed and lowercased. A promoting pawn with
// no promotion given becomes a queen. Engine errors and panics are converted
// to ErrIllegalMove, never propagated.
func (r *Rules) Move(from, to, promotion string) (out MoveOutcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = ErrIllegalMove
		}
	}()

	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	promotion = strings.ToLower(strings.TrimSpace(promotion))

	if !isSquare(from) || !isSquare(to) {
		return out, ErrIllegalMove
	}
	if promotion != "" && (len(promotion) != 1 || !strings.Contains(promotionPieces, promotion)) {
		return out, ErrIllegalMove
	}

	prev := r.game.Position()

	uci := from + to + promotion
	if moveErr := r.game.MoveStr(uci); moveErr != nil {
		if promotion != "" {
			return out, ErrIllegalMove
		}

		// Retry with the default queen promotion.
		if moveErr = r.game.MoveStr(uci + "q"); moveErr != nil {
			return out, ErrIllegalMove
		}
	}

	moves := r.game.Moves()
	san := chess.AlgebraicNotation{}.Encode(prev, moves[len(moves)-1])

	return MoveOutcome{
		SAN:      san,
		FEN:      r.FEN(),
		NextTurn: r.Turn(),
	}, nil
}

// IsCheckmate reports whether the game ended by checkmate.
func (r *Rules) IsCheckmate() bool {
	return r.game.Method() == chess.Checkmate
}

// IsStalemate reports whether the game ended by stalemate.
func (r *Rules) IsStalemate() bool {
	return r.game.Method() == chess.Stalemate
}

// IsInsufficientMaterial reports whether neither side can mate.
func (r *Rules) IsInsufficientMaterial() bool {
	return r.game.Method() == chess.InsufficientMaterial
}

// IsThreefoldRepetition reports whether the position has occurred three times.
func (r *Rules) IsThreefoldRepetition() bool {
	for _, method := range r.game.EligibleDraws() {
		if method == chess.ThreefoldRepetition {
			return true
		}
	}
	return false
}

// IsDraw reports any remaining drawn state the other predicates don't cover:
// an engine-declared draw outcome or an eligible fifty-move claim.
func (r *Rules) IsDraw() bool {
	if r.game.Outcome() == chess.Draw {
		return true
	}

	for _, method := range r.game.EligibleDraws() {
		if method == chess.FiftyMoveRule {
			return true
		}
	}
	return false
}

// isSquare reports whether s names a board square, a1 through h8.
func isSquare(s string) bool {
	if len(s) != 2 {
		return false
	}
	return s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}
