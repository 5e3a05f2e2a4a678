/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct. The Message
strings are delivered verbatim in event acks and must not be reworded.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: Connection and request handling
	ErrUnauthorized:      {Code: ErrUnauthorized, Message: "Unauthorized", Status: http.StatusUnauthorized},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters."},

	// 2xxx: Room membership
	ErrNotInRoom:             {Code: ErrNotInRoom, Message: "You are not in a room"},
	ErrAlreadyInRoom:         {Code: ErrAlreadyInRoom, Message: "You are already in a room"},
	ErrLeaveCurrentRoomFirst: {Code: ErrLeaveCurrentRoomFirst, Message: "Leave your current room first"},
	ErrRoomNotFound:          {Code: ErrRoomNotFound, Message: "Room not found"},
	ErrRoomFull:              {Code: ErrRoomFull, Message: "Room is full"},
	ErrRoomGone:              {Code: ErrRoomGone, Message: "Room no longer exists"},
	ErrInvalidRoom:           {Code: ErrInvalidRoom, Message: "Invalid room"},

	// 3xxx: Game state
	ErrGameNotStarted:     {Code: ErrGameNotStarted, Message: "Game not started"},
	ErrGameOver:           {Code: ErrGameOver, Message: "Game is already over"},
	ErrNotAPlayer:         {Code: ErrNotAPlayer, Message: "You are not a player in this game"},
	ErrNotYourTurn:        {Code: ErrNotYourTurn, Message: "Not your turn"},
	ErrIllegalMove:        {Code: ErrIllegalMove, Message: "Illegal move"},
	ErrMoveSquaresMissing: {Code: ErrMoveSquaresMissing, Message: "Move must include from and to squares"},

	// 4xxx: Side protocols
	ErrRematchNotAvailable:     {Code: ErrRematchNotAvailable, Message: "Rematch is only available after game over"},
	ErrNoRematchRequest:        {Code: ErrNoRematchRequest, Message: "No rematch request to respond to"},
	ErrRematchNotPlayer:        {Code: ErrRematchNotPlayer, Message: "Only players can request rematch"},
	ErrRematchRespondNotPlayer: {Code: ErrRematchRespondNotPlayer, Message: "Only players can respond to rematch"},
	ErrOpponentGone:            {Code: ErrOpponentGone, Message: "Opponent is no longer in the room"},
	ErrNoDrawRequest:           {Code: ErrNoDrawRequest, Message: "No draw request to respond to"},

	// 5xxx: Invites
	ErrInviteMissingTarget: {Code: ErrInviteMissingTarget, Message: "Missing target user"},
	ErrInviteSelf:          {Code: ErrInviteSelf, Message: "You cannot invite yourself"},
	ErrInviteNoRoom:        {Code: ErrInviteNoRoom, Message: "Create or join a room first"},
	ErrInviteNotInRoom:     {Code: ErrInviteNotInRoom, Message: "You are not in that room"},
	ErrInviteNotFriends:    {Code: ErrInviteNotFriends, Message: "You can only invite users from your friend list"},
	ErrInviteFriendOffline: {Code: ErrInviteFriendOffline, Message: "Friend is offline"},

	// 9xxx: Internal
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
