/*
Package gateway is the event-dispatched boundary of the session core.

This file implements the friend-invite adapter: a gate chain over the target
user, the target room, the social graph, and the invitee's presence, ending
in a targeted delivery to every connection of the invitee. The friendship
lookup is the one piece of real I/O and runs outside every lock.
*/
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gambit/internal/pkg/errs"
)

// handleInviteSend validates and delivers a room invite to a friend.
func (g *Gateway) handleInviteSend(c *Client, payload json.RawMessage, _ time.Time) (any, *errs.CustomError) {
	var input InviteInput
	if cerr := bind(payload, &input); cerr != nil {
		return nil, cerr
	}

	uid := c.user.UserID
	target := strings.TrimSpace(input.ToUserID)

	if target == "" {
		return nil, errs.NewError(errs.ErrInviteMissingTarget)
	}
	if target == uid {
		return nil, errs.NewError(errs.ErrInviteSelf)
	}

	// Resolve the target room: the given roomId, normalized, or the caller's
	// current room.
	roomID := normalizeRoomID(input.RoomID)

	g.mu.RLock()
	if roomID == "" {
		roomID = g.roomByUser[uid]
	}
	room := g.rooms[roomID]
	g.mu.RUnlock()

	if roomID == "" {
		return nil, errs.NewError(errs.ErrInviteNoRoom)
	}
	if room == nil {
		return nil, errs.NewError(errs.ErrRoomGone)
	}

	if !room.HasPlayer(uid) {
		return nil, errs.NewError(errs.ErrInviteNotInRoom)
	}

	accepted, err := g.friends.AreFriends(context.Background(), uid, target)
	if err != nil {
		g.logger.Error().Err(err).
			Str("user_id", uid).
			Str("target_user_id", target).
			Msg("Friendship lookup failed.")
		return nil, errs.NewError(errs.ErrUnknown)
	}
	if !accepted {
		return nil, errs.NewError(errs.ErrInviteNotFriends)
	}

	if !g.presence.Online(target) {
		return nil, errs.NewError(errs.ErrInviteFriendOffline)
	}

	inviteLink := fmt.Sprintf("%s/?room=%s", g.clientOrigin, url.QueryEscape(room.ID))

	g.presence.ToUser(target, EventInviteReceived, InviteReceivedPayload{
		From:       c.user.Player(),
		RoomID:     room.ID,
		InviteLink: inviteLink,
	})

	g.logger.Info().
		Str("user_id", uid).
		Str("target_user_id", target).
		Str("room_id", room.ID).
		Msg("Invite delivered.")

	return InviteResult{RoomID: room.ID, InviteLink: inviteLink}, nil
}
