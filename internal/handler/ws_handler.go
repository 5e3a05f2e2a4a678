/*
Package handler provides the HTTP handlers and routing for the session core.

This file contains the websocket handler: rate limiting, bearer token
authentication from the handshake, the upgrade, and the client lifecycle
start. An absent or invalid token rejects the connection before upgrade.
*/
package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"gambit/internal/app/gateway"
	"gambit/internal/pkg/auth/jwt"
	"gambit/internal/pkg/errs"
	"gambit/internal/pkg/limiter"
	"gambit/internal/pkg/logx"
	"gambit/internal/pkg/randx"
	"gambit/internal/pkg/resp"
)

// HandleWebSocket creates the HandlerFunc processing socket connection
// requests.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		token := jwt.FromRequest(r)
		if token == "" {
			logx.Warn("WebSocket request rejected: Missing bearer token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		claims, err := jwt.ParseToken(token, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket request rejected: Invalid token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		user := gateway.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			Email:    claims.Email,
		}

		client := gateway.NewClient(deps.Gateway, conn, user, randx.ConnectionID())

		go client.WritePump()

		deps.Gateway.Register(client, time.Now())

		logx.Info("WebSocket connection established", "user_id", claims.UserID)

		client.ReadPump()
	}
}
