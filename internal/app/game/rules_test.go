package game

import (
	"strings"
	"testing"
)

const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestNewRulesStartsAtInitialPosition(t *testing.T) {
	r := NewRules()

	if r.FEN() != startingFEN {
		t.Fatalf("unexpected starting FEN: %s", r.FEN())
	}
	if r.Turn() != SideWhite {
		t.Fatalf("expected white to move, got %q", r.Turn())
	}
	if r.InCheck() {
		t.Fatal("starting position should not be in check")
	}
}

func TestMoveReturnsSANAndFlipsTurn(t *testing.T) {
	r := NewRules()

	out, err := r.Move("e2", "e4", "")
	if err != nil {
		t.Fatalf("legal move rejected: %v", err)
	}

	if out.SAN != "e4" {
		t.Fatalf("expected SAN e4, got %q", out.SAN)
	}
	if out.NextTurn != SideBlack {
		t.Fatalf("expected black to move, got %q", out.NextTurn)
	}
	if !strings.Contains(out.FEN, " b ") {
		t.Fatalf("FEN does not reflect black to move: %s", out.FEN)
	}
}

func TestMoveNormalizesInput(t *testing.T) {
	r := NewRules()

	if _, err := r.Move(" E2 ", "E4", ""); err != nil {
		t.Fatalf("uppercase squares with whitespace should be accepted: %v", err)
	}
}

func TestIllegalMoveRejected(t *testing.T) {
	r := NewRules()

	if _, err := r.Move("e2", "e5", ""); err != ErrIllegalMove {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if _, err := r.Move("z9", "e4", ""); err != ErrIllegalMove {
		t.Fatalf("expected ErrIllegalMove for bad square, got %v", err)
	}
	if _, err := r.Move("e2", "e4", "k"); err != ErrIllegalMove {
		t.Fatalf("expected ErrIllegalMove for bad promotion piece, got %v", err)
	}

	// A rejected move leaves the position untouched.
	if r.FEN() != startingFEN {
		t.Fatalf("rejected move mutated position: %s", r.FEN())
	}
}

func TestFoolsMateIsCheckmate(t *testing.T) {
	r := NewRules()

	moves := [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}}
	for _, m := range moves {
		if _, err := r.Move(m[0], m[1], ""); err != nil {
			t.Fatalf("move %v rejected: %v", m, err)
		}
	}

	out, err := r.Move("d8", "h4", "")
	if err != nil {
		t.Fatalf("mating move rejected: %v", err)
	}

	if out.SAN != "Qh4#" {
		t.Fatalf("expected SAN Qh4#, got %q", out.SAN)
	}
	if !r.IsCheckmate() {
		t.Fatal("expected checkmate")
	}
	if r.Turn() != SideWhite {
		t.Fatalf("mated side to move should be white, got %q", r.Turn())
	}
	if !r.InCheck() {
		t.Fatal("mated side should be in check")
	}
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	r, err := NewRulesFromFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("failed to load FEN: %v", err)
	}

	out, err := r.Move("a7", "a8", "")
	if err != nil {
		t.Fatalf("promoting move rejected: %v", err)
	}

	if !strings.HasPrefix(out.SAN, "a8=Q") {
		t.Fatalf("expected default queen promotion, got SAN %q", out.SAN)
	}
}

func TestExplicitUnderpromotion(t *testing.T) {
	r, err := NewRulesFromFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("failed to load FEN: %v", err)
	}

	out, err := r.Move("a7", "a8", "n")
	if err != nil {
		t.Fatalf("underpromotion rejected: %v", err)
	}

	if !strings.HasPrefix(out.SAN, "a8=N") {
		t.Fatalf("expected knight promotion, got SAN %q", out.SAN)
	}
}

func TestCheckDetectionAfterMove(t *testing.T) {
	r, err := NewRulesFromFEN("k7/8/8/8/8/8/1Q6/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("failed to load FEN: %v", err)
	}

	out, err := r.Move("b2", "b7", "")
	if err != nil {
		t.Fatalf("checking move rejected: %v", err)
	}

	if !strings.HasSuffix(out.SAN, "+") {
		t.Fatalf("expected check suffix in SAN, got %q", out.SAN)
	}
	if !r.InCheck() {
		t.Fatal("expected side to move to be in check")
	}
	if r.IsCheckmate() {
		t.Fatal("undefended queen check must not be mate")
	}
}

func TestNewRulesFromBadFEN(t *testing.T) {
	if _, err := NewRulesFromFEN("not a position"); err == nil {
		t.Fatal("expected error for malformed FEN")
	}
}
