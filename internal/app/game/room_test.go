package game

import (
	"sync"
	"testing"
	"time"
)

type notice struct {
	UserID  string
	Event   string
	Payload any
}

type stubNotifier struct {
	mu      sync.Mutex
	notices []notice
	offline map[string]bool
}

func (s *stubNotifier) ToUser(userID, event string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, notice{UserID: userID, Event: event, Payload: payload})
}

func (s *stubNotifier) Online(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.offline[userID]
}

func (s *stubNotifier) lastGameStart() (GameStartPayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.notices) - 1; i >= 0; i-- {
		if s.notices[i].Event == EventGameStart {
			start, ok := s.notices[i].Payload.(GameStartPayload)
			return start, ok
		}
	}
	return GameStartPayload{}, false
}

func (s *stubNotifier) countFor(userID, event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, notice := range s.notices {
		if notice.UserID == userID && notice.Event == event {
			n++
		}
	}
	return n
}

var (
	alice = Player{UserID: "u1", Username: "alice"}
	bob   = Player{UserID: "u2", Username: "bob"}
)

// startTestRoom seats both players and returns the started game's seat order.
func startTestRoom(t *testing.T, t0 time.Time) (*Room, *stubNotifier, GameStartPayload) {
	t.Helper()

	n := &stubNotifier{offline: make(map[string]bool)}
	r := NewRoom("ABC12345", n)

	if _, cerr := r.Join(t0, alice); cerr != nil {
		t.Fatalf("first join failed: %v", cerr)
	}

	state := r.State()
	if state.Status != RoomStatusWaiting {
		t.Fatalf("expected waiting room, got %q", state.Status)
	}

	if _, cerr := r.Join(t0, bob); cerr != nil {
		t.Fatalf("second join failed: %v", cerr)
	}

	start, ok := n.lastGameStart()
	if !ok {
		t.Fatal("no game:start broadcast after second join")
	}

	return r, n, start
}

func testClock() time.Time {
	return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
}

func TestJoinAutoStartsGame(t *testing.T) {
	t0 := testClock()
	r, n, start := startTestRoom(t, t0)

	if start.Turn != SideWhite {
		t.Fatalf("new game should have white to move, got %q", start.Turn)
	}

	seated := map[string]bool{start.White.UserID: true, start.Black.UserID: true}
	if !seated[alice.UserID] || !seated[bob.UserID] {
		t.Fatalf("color assignment lost a player: white=%s black=%s", start.White.UserID, start.Black.UserID)
	}
	if start.White.UserID == start.Black.UserID {
		t.Fatal("both colors assigned to the same player")
	}

	state := r.State()
	if state.Status != RoomStatusPlaying {
		t.Fatalf("expected playing room, got %q", state.Status)
	}
	for _, p := range state.Players {
		if p.Color == "" {
			t.Fatalf("player %s missing color in room state", p.UserID)
		}
	}

	// Both players received the start broadcast.
	if n.countFor(alice.UserID, EventGameStart) != 1 || n.countFor(bob.UserID, EventGameStart) != 1 {
		t.Fatal("game:start not delivered to both players")
	}
}

func TestThirdJoinRejected(t *testing.T) {
	t0 := testClock()
	r, _, _ := startTestRoom(t, t0)

	_, cerr := r.Join(t0, Player{UserID: "u3", Username: "carol"})
	if cerr == nil || cerr.Message != "Room is full" {
		t.Fatalf("expected Room is full, got %v", cerr)
	}
}

func TestRejoinIsIdempotent(t *testing.T) {
	t0 := testClock()
	r, _, _ := startTestRoom(t, t0)

	state, cerr := r.Join(t0, alice)
	if cerr != nil {
		t.Fatalf("rejoin failed: %v", cerr)
	}
	if len(state.Players) != 2 {
		t.Fatalf("rejoin changed seating: %d players", len(state.Players))
	}
}

func TestMoveTurnEnforcement(t *testing.T) {
	t0 := testClock()
	r, _, start := startTestRoom(t, t0)

	if _, cerr := r.ApplyMove(t0, start.Black.UserID, "e7", "e5", ""); cerr == nil || cerr.Message != "Not your turn" {
		t.Fatalf("expected Not your turn, got %v", cerr)
	}

	result, cerr := r.ApplyMove(t0.Add(time.Second), start.White.UserID, "e2", "e4", "")
	if cerr != nil {
		t.Fatalf("white's opening move failed: %v", cerr)
	}
	if result.Turn != SideBlack {
		t.Fatalf("turn did not flip, got %q", result.Turn)
	}
	if result.SAN != "e4" {
		t.Fatalf("unexpected SAN %q", result.SAN)
	}

	snap, cerr := r.Snapshot(t0.Add(time.Second))
	if cerr != nil {
		t.Fatalf("snapshot failed: %v", cerr)
	}
	if snap.Turn != SideBlack {
		t.Fatalf("snapshot turn mismatch: %q", snap.Turn)
	}
	if len(snap.Moves) != 1 || snap.Moves[0].ByUserID != start.White.UserID {
		t.Fatalf("move log not recorded: %+v", snap.Moves)
	}
}

func TestMoveByOutsiderRejected(t *testing.T) {
	t0 := testClock()
	r, _, _ := startTestRoom(t, t0)

	_, cerr := r.ApplyMove(t0, "u3", "e2", "e4", "")
	if cerr == nil || cerr.Message != "You are not a player in this game" {
		t.Fatalf("expected player check failure, got %v", cerr)
	}
}

func TestMoveRequiresSquares(t *testing.T) {
	t0 := testClock()
	r, _, start := startTestRoom(t, t0)

	_, cerr := r.ApplyMove(t0, start.White.UserID, "  ", "e4", "")
	if cerr == nil || cerr.Message != "Move must include from and to squares" {
		t.Fatalf("expected square validation failure, got %v", cerr)
	}
}

func TestRejectedMoveLeavesStateUnchanged(t *testing.T) {
	t0 := testClock()
	r, _, start := startTestRoom(t, t0)

	before, _ := r.Snapshot(t0)

	if _, cerr := r.ApplyMove(t0, start.White.UserID, "e2", "e5", ""); cerr == nil || cerr.Message != "Illegal move" {
		t.Fatalf("expected Illegal move, got %v", cerr)
	}

	after, _ := r.Snapshot(t0)
	if after.FEN != before.FEN || after.Turn != before.Turn {
		t.Fatal("rejected move mutated the position")
	}
	if after.ClockMs != before.ClockMs {
		t.Fatalf("rejected move at same instant changed clocks: %+v != %+v", after.ClockMs, before.ClockMs)
	}
}

func TestClockDecrementsOnActiveSide(t *testing.T) {
	t0 := testClock()
	r, _, start := startTestRoom(t, t0)

	if _, cerr := r.ApplyMove(t0.Add(10*time.Second), start.White.UserID, "e2", "e4", ""); cerr != nil {
		t.Fatalf("move failed: %v", cerr)
	}

	snap, _ := r.Snapshot(t0.Add(15 * time.Second))
	if snap.ClockMs.W != InitialClockMs-10_000 {
		t.Fatalf("white clock expected %d, got %d", InitialClockMs-10_000, snap.ClockMs.W)
	}
	if snap.ClockMs.B != InitialClockMs-5_000 {
		t.Fatalf("black clock expected %d, got %d", InitialClockMs-5_000, snap.ClockMs.B)
	}
}

func TestTimeoutObservedOnSnapshot(t *testing.T) {
	t0 := testClock()
	r, _, start := startTestRoom(t, t0)

	snap, cerr := r.Snapshot(t0.Add(181 * time.Second))
	if cerr != nil {
		t.Fatalf("snapshot failed: %v", cerr)
	}

	if snap.Status != StatusTimeout {
		t.Fatalf("expected timeout, got %q", snap.Status)
	}
	if snap.WinnerColor != SideBlack {
		t.Fatalf("expected black to win on time, got %q", snap.WinnerColor)
	}
	if snap.ClockMs.W != 0 {
		t.Fatalf("flagged side should be at 0, got %d", snap.ClockMs.W)
	}

	// The frozen clock no longer drains the other side.
	later, _ := r.Snapshot(t0.Add(400 * time.Second))
	if later.ClockMs.B != snap.ClockMs.B {
		t.Fatal("clock kept draining after terminal status")
	}

	_, cerr = r.ApplyMove(t0.Add(182*time.Second), start.White.UserID, "e2", "e4", "")
	if cerr == nil || cerr.Message != "Game is already over" {
		t.Fatalf("expected Game is already over, got %v", cerr)
	}
}

// playFoolsMate mates the white player: f3, e5, g4, Qh4#.
func playFoolsMate(t *testing.T, r *Room, start GameStartPayload, t0 time.Time) {
	t.Helper()

	moves := []struct {
		user     string
		from, to string
	}{
		{start.White.UserID, "f2", "f3"},
		{start.Black.UserID, "e7", "e5"},
		{start.White.UserID, "g2", "g4"},
		{start.Black.UserID, "d8", "h4"},
	}

	for i, m := range moves {
		if _, cerr := r.ApplyMove(t0.Add(time.Duration(i)*time.Second), m.user, m.from, m.to, ""); cerr != nil {
			t.Fatalf("fool's mate move %d failed: %v", i, cerr)
		}
	}
}

func TestCheckmateEndsGame(t *testing.T) {
	t0 := testClock()
	r, n, start := startTestRoom(t, t0)

	playFoolsMate(t, r, start, t0)

	snap, _ := r.Snapshot(t0.Add(10 * time.Second))
	if snap.Status != StatusCheckmate {
		t.Fatalf("expected checkmate, got %q", snap.Status)
	}
	if snap.WinnerColor != SideBlack {
		t.Fatalf("expected black winner, got %q", snap.WinnerColor)
	}

	if n.countFor(start.White.UserID, EventGameOver) == 0 {
		t.Fatal("game:over not broadcast after mate")
	}
}

func TestDrawOfferAccepted(t *testing.T) {
	t0 := testClock()
	r, n, start := startTestRoom(t, t0)

	ack, cerr := r.ProposeDraw(t0, start.White.UserID)
	if cerr != nil {
		t.Fatalf("draw offer failed: %v", cerr)
	}
	if ack.WaitingFor != start.Black.UserID {
		t.Fatalf("expected waitingFor %s, got %s", start.Black.UserID, ack.WaitingFor)
	}

	if n.countFor(start.Black.UserID, EventDrawRequested) != 1 {
		t.Fatal("opponent did not receive the targeted draw request")
	}
	if n.countFor(start.White.UserID, EventDrawRequested) != 0 {
		t.Fatal("draw request leaked to the proposer")
	}

	// Offering twice is idempotent.
	if _, cerr := r.ProposeDraw(t0, start.White.UserID); cerr != nil {
		t.Fatalf("repeated offer failed: %v", cerr)
	}

	ack, cerr = r.RespondDraw(t0.Add(time.Second), start.Black.UserID, true)
	if cerr != nil {
		t.Fatalf("draw accept failed: %v", cerr)
	}
	if !ack.Accepted {
		t.Fatal("accept ack not marked accepted")
	}

	snap, _ := r.Snapshot(t0.Add(2 * time.Second))
	if snap.Status != StatusDraw {
		t.Fatalf("expected draw, got %q", snap.Status)
	}
	if snap.WinnerColor != "" {
		t.Fatalf("draw has no winner, got %q", snap.WinnerColor)
	}
	if n.countFor(start.White.UserID, EventGameOver) == 0 {
		t.Fatal("game:over not broadcast after agreed draw")
	}
}

func TestDrawOfferDeclinedClearsOffer(t *testing.T) {
	t0 := testClock()
	r, _, start := startTestRoom(t, t0)

	if _, cerr := r.ProposeDraw(t0, start.White.UserID); cerr != nil {
		t.Fatalf("draw offer failed: %v", cerr)
	}

	ack, cerr := r.RespondDraw(t0, start.Black.UserID, false)
	if cerr != nil {
		t.Fatalf("decline failed: %v", cerr)
	}
	if ack.Accepted {
		t.Fatal("decline ack marked accepted")
	}

	// The cleared offer cannot be accepted afterwards.
	_, cerr = r.RespondDraw(t0, start.Black.UserID, true)
	if cerr == nil || cerr.Message != "No draw request to respond to" {
		t.Fatalf("expected no-pending failure, got %v", cerr)
	}

	snap, _ := r.Snapshot(t0)
	if snap.Status != StatusActive {
		t.Fatalf("declined draw ended the game: %q", snap.Status)
	}
}

func TestDrawOfferSurvivesProposersMove(t *testing.T) {
	t0 := testClock()
	r, _, start := startTestRoom(t, t0)

	if _, cerr := r.ProposeDraw(t0, start.White.UserID); cerr != nil {
		t.Fatalf("draw offer failed: %v", cerr)
	}
	if _, cerr := r.ApplyMove(t0, start.White.UserID, "e2", "e4", ""); cerr != nil {
		t.Fatalf("move failed: %v", cerr)
	}

	ack, cerr := r.RespondDraw(t0.Add(time.Second), start.Black.UserID, true)
	if cerr != nil || !ack.Accepted {
		t.Fatalf("offer should survive the proposer's move: %v", cerr)
	}
}

func TestRespondDrawWithoutOffer(t *testing.T) {
	t0 := testClock()
	r, _, start := startTestRoom(t, t0)

	_, cerr := r.RespondDraw(t0, start.Black.UserID, true)
	if cerr == nil || cerr.Message != "No draw request to respond to" {
		t.Fatalf("expected no-pending failure, got %v", cerr)
	}
}

func TestRematchAfterCheckmate(t *testing.T) {
	t0 := testClock()
	r, n, start := startTestRoom(t, t0)

	playFoolsMate(t, r, start, t0)

	ack, cerr := r.ProposeRematch(t0.Add(10*time.Second), start.White.UserID)
	if cerr != nil {
		t.Fatalf("rematch request failed: %v", cerr)
	}
	if ack.WaitingFor != start.Black.UserID {
		t.Fatalf("expected waitingFor %s, got %s", start.Black.UserID, ack.WaitingFor)
	}
	if n.countFor(start.Black.UserID, EventRematchRequested) != 1 {
		t.Fatal("opponent did not receive the targeted rematch request")
	}

	ack, cerr = r.RespondRematch(t0.Add(11*time.Second), start.Black.UserID, true)
	if cerr != nil {
		t.Fatalf("rematch accept failed: %v", cerr)
	}
	if !ack.Started {
		t.Fatal("accept did not start the rematch")
	}

	next, ok := n.lastGameStart()
	if !ok {
		t.Fatal("no game:start after rematch")
	}
	if next.FEN != startingFEN {
		t.Fatalf("rematch not at initial position: %s", next.FEN)
	}

	snap, _ := r.Snapshot(t0.Add(12 * time.Second))
	if snap.Status != StatusActive {
		t.Fatalf("rematch game not active: %q", snap.Status)
	}
	if len(snap.Moves) != 0 {
		t.Fatalf("move log carried over: %d entries", len(snap.Moves))
	}
	if snap.ClockMs.W != InitialClockMs-1000 || snap.ClockMs.B != InitialClockMs {
		t.Fatalf("rematch clock not reset: %+v", snap.ClockMs)
	}
}

func TestMutualRematchRequestStartsImmediately(t *testing.T) {
	t0 := testClock()
	r, _, start := startTestRoom(t, t0)

	playFoolsMate(t, r, start, t0)

	if _, cerr := r.ProposeRematch(t0.Add(10*time.Second), start.White.UserID); cerr != nil {
		t.Fatalf("first rematch request failed: %v", cerr)
	}

	ack, cerr := r.ProposeRematch(t0.Add(11*time.Second), start.Black.UserID)
	if cerr != nil {
		t.Fatalf("second rematch request failed: %v", cerr)
	}
	if !ack.Started {
		t.Fatal("mutual request did not start the rematch")
	}
}

func TestRematchDeclineClearsRequests(t *testing.T) {
	t0 := testClock()
	r, _, start := startTestRoom(t, t0)

	playFoolsMate(t, r, start, t0)

	if _, cerr := r.ProposeRematch(t0.Add(10*time.Second), start.White.UserID); cerr != nil {
		t.Fatalf("rematch request failed: %v", cerr)
	}
	if _, cerr := r.RespondRematch(t0.Add(11*time.Second), start.Black.UserID, false); cerr != nil {
		t.Fatalf("decline failed: %v", cerr)
	}

	_, cerr := r.RespondRematch(t0.Add(12*time.Second), start.Black.UserID, true)
	if cerr == nil || cerr.Message != "No rematch request to respond to" {
		t.Fatalf("expected no-pending failure after decline, got %v", cerr)
	}
}

func TestRematchDuringActiveGameRejected(t *testing.T) {
	t0 := testClock()
	r, _, start := startTestRoom(t, t0)

	_, cerr := r.ProposeRematch(t0, start.White.UserID)
	if cerr == nil || cerr.Message != "Rematch is only available after game over" {
		t.Fatalf("expected rematch availability failure, got %v", cerr)
	}
}

func TestLeaveDiscardsGame(t *testing.T) {
	t0 := testClock()
	r, n, _ := startTestRoom(t, t0)

	empty := r.Leave(bob.UserID)
	if empty {
		t.Fatal("room reported empty with one player remaining")
	}

	if n.countFor(alice.UserID, EventRoomError) == 0 {
		t.Fatal("remaining player not told about the departure")
	}

	state := r.State()
	if state.Status != RoomStatusWaiting {
		t.Fatalf("expected waiting after departure, got %q", state.Status)
	}

	if _, cerr := r.Snapshot(t0); cerr == nil || cerr.Message != "Game not started" {
		t.Fatalf("expected cleared game, got %v", cerr)
	}

	if !r.Leave(alice.UserID) {
		t.Fatal("room not reported empty after last leave")
	}
}

func TestRoomStateIdempotent(t *testing.T) {
	t0 := testClock()
	r, _, _ := startTestRoom(t, t0)

	first := r.State()
	second := r.State()

	if first.Status != second.Status || len(first.Players) != len(second.Players) {
		t.Fatal("consecutive state reads differ")
	}
	for i := range first.Players {
		if first.Players[i] != second.Players[i] {
			t.Fatalf("player entry %d differs between reads", i)
		}
	}
}

func TestOfflinePlayerVisibleInState(t *testing.T) {
	t0 := testClock()
	r, n, _ := startTestRoom(t, t0)

	n.mu.Lock()
	n.offline[bob.UserID] = true
	n.mu.Unlock()

	state := r.State()
	for _, p := range state.Players {
		if p.UserID == bob.UserID && p.Online {
			t.Fatal("offline player reported online")
		}
		if p.UserID == alice.UserID && !p.Online {
			t.Fatal("online player reported offline")
		}
	}
}
