/*
Package randx provides generation and validation of the identifiers used by
the session core: room IDs, connection IDs, and the color-assignment coin flip.
*/
package randx

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// RoomIDLength is the length of a generated room ID.
	RoomIDLength = 8

	// RoomIDMinLength is the minimum accepted length for a client-supplied room ID.
	RoomIDMinLength = 6

	// roomIDChars is the accepted room ID alphabet.
	roomIDChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RoomID derives a fresh room ID from a UUID hex prefix, uppercased.
func RoomID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw[:RoomIDLength])
}

// ConnectionID generates a UUID v4 string identifying a single socket connection.
func ConnectionID() string {
	return uuid.New().String()
}

// IsValidRoomID reports whether the given string is an acceptable room ID:
// at least RoomIDMinLength characters, all from the uppercase alphanumeric set.
func IsValidRoomID(id string) bool {
	if len(id) < RoomIDMinLength {
		return false
	}

	for _, char := range id {
		if !strings.ContainsRune(roomIDChars, char) {
			return false
		}
	}

	return true
}

// CoinFlip returns a uniformly random boolean from crypto/rand.
func CoinFlip() bool {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		// crypto/rand failure is unrecoverable for fairness guarantees.
		panic(err)
	}
	return n.Int64() == 1
}
