/*
Package social adapts the social graph service for the session core.

The core needs a single predicate from the graph: whether two users hold an
accepted friendship. The production implementation reads the service's
friendships table; tests substitute the Checker interface.
*/
package social

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatusAccepted is the friendship state that permits invites.
const StatusAccepted = "accepted"

// lookupTimeout bounds a single friendship query.
const lookupTimeout = 3 * time.Second

// Checker answers whether two users are confirmed friends.
type Checker interface {
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
}

// Store is the pgx-backed Checker reading the social graph database.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a connection pool as a Checker.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// AreFriends reports whether an accepted friendship exists between the two
// users, in either direction of the request.
func (s *Store) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	const query = `
		SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE status = $3
			  AND ((requester_id = $1 AND addressee_id = $2)
			    OR (requester_id = $2 AND addressee_id = $1))
		)`

	var exists bool
	err := s.pool.QueryRow(ctx, query, userID, otherID, StatusAccepted).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}
