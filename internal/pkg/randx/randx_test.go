package randx

import "testing"

func TestRoomIDFormat(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		id := RoomID()

		if len(id) != RoomIDLength {
			t.Fatalf("room ID %q has length %d", id, len(id))
		}
		if !IsValidRoomID(id) {
			t.Fatalf("generated room ID %q fails validation", id)
		}

		seen[id] = struct{}{}
	}

	if len(seen) < 90 {
		t.Fatalf("suspicious collision rate: %d unique of 100", len(seen))
	}
}

func TestIsValidRoomID(t *testing.T) {
	valid := []string{"ABC123", "ABCDEF12", "00000000", "ZZZZZZ"}
	for _, id := range valid {
		if !IsValidRoomID(id) {
			t.Fatalf("expected %q to be valid", id)
		}
	}

	invalid := []string{"", "AB1", "abc12345", "ABC 1234", "ABC-1234", "ÀBC12345"}
	for _, id := range invalid {
		if IsValidRoomID(id) {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}

func TestConnectionIDUnique(t *testing.T) {
	a, b := ConnectionID(), ConnectionID()
	if a == b {
		t.Fatal("connection IDs collided")
	}
}

func TestCoinFlipProducesBothSides(t *testing.T) {
	heads := false
	tails := false

	for i := 0; i < 200 && !(heads && tails); i++ {
		if CoinFlip() {
			heads = true
		} else {
			tails = true
		}
	}

	if !heads || !tails {
		t.Fatal("coin flip never produced both outcomes in 200 tries")
	}
}
