/*
Package errs provides custom error types and application-level error code constants.

The error messages attached to these codes are part of the client contract:
clients match on the message strings delivered in event acknowledgments.
*/
package errs

// 1xxx: Connection and request handling
const (
	// ErrUnauthorized indicates a missing or invalid bearer token at handshake.
	ErrUnauthorized = 1001

	// ErrRateLimitExceeded indicates the connection rate limit was hit.
	ErrRateLimitExceeded = 1002

	// ErrInvalidParams indicates an event payload failed validation.
	ErrInvalidParams = 1003
)

// 2xxx: Room membership
const (
	// ErrNotInRoom indicates the user has no current room.
	ErrNotInRoom = 2101

	// ErrAlreadyInRoom indicates the user is already seated in a room while joining another.
	ErrAlreadyInRoom = 2102

	// ErrLeaveCurrentRoomFirst indicates room creation while seated elsewhere.
	ErrLeaveCurrentRoomFirst = 2103

	// ErrRoomNotFound indicates the requested room does not exist.
	ErrRoomNotFound = 2104

	// ErrRoomFull indicates the room already seats two other players.
	ErrRoomFull = 2105

	// ErrRoomGone indicates the user's indexed room has since been destroyed.
	ErrRoomGone = 2106

	// ErrInvalidRoom indicates a malformed room identifier.
	ErrInvalidRoom = 2107
)

// 3xxx: Game state
const (
	// ErrGameNotStarted indicates the room has no active game.
	ErrGameNotStarted = 3101

	// ErrGameOver indicates the game has already reached a terminal state.
	ErrGameOver = 3102

	// ErrNotAPlayer indicates the user is not seated as white or black.
	ErrNotAPlayer = 3103

	// ErrNotYourTurn indicates the mover does not hold the side to move.
	ErrNotYourTurn = 3104

	// ErrIllegalMove indicates the rules engine rejected the move.
	ErrIllegalMove = 3105

	// ErrMoveSquaresMissing indicates an empty from or to square.
	ErrMoveSquaresMissing = 3106
)

// 4xxx: Side protocols (rematch, draw)
const (
	// ErrRematchNotAvailable indicates a rematch request during active play.
	ErrRematchNotAvailable = 4101

	// ErrNoRematchRequest indicates a rematch response with no pending request.
	ErrNoRematchRequest = 4102

	// ErrRematchNotPlayer indicates a rematch request from a non-player.
	ErrRematchNotPlayer = 4103

	// ErrRematchRespondNotPlayer indicates a rematch response from a non-player.
	ErrRematchRespondNotPlayer = 4104

	// ErrOpponentGone indicates the opponent left the room before the rematch.
	ErrOpponentGone = 4105

	// ErrNoDrawRequest indicates a draw response with no pending offer.
	ErrNoDrawRequest = 4106
)

// 5xxx: Invites
const (
	// ErrInviteMissingTarget indicates an invite without a target user.
	ErrInviteMissingTarget = 5101

	// ErrInviteSelf indicates a user inviting themselves.
	ErrInviteSelf = 5102

	// ErrInviteNoRoom indicates an invite issued with no room to invite into.
	ErrInviteNoRoom = 5103

	// ErrInviteNotInRoom indicates an invite into a room the requester is not seated in.
	ErrInviteNotInRoom = 5104

	// ErrInviteNotFriends indicates the social graph holds no accepted friendship.
	ErrInviteNotFriends = 5105

	// ErrInviteFriendOffline indicates the target has no live connections.
	ErrInviteFriendOffline = 5106
)

// 9xxx: Internal
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 9000
)
