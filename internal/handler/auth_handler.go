/*
Package handler provides the HTTP handlers and routing for the session core.

This file contains the development-only token mint. Real identity lives in
the external identity service; in development the mint issues a signed token
so the socket surface can be exercised locally without it.
*/
package handler

import (
	"encoding/json"
	"net/http"

	"gambit/internal/pkg/auth/jwt"
	"gambit/internal/pkg/errs"
	"gambit/internal/pkg/resp"
)

// MintTokenInput names the identity to issue a token for.
type MintTokenInput struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// HandleMintToken issues a signed identity token. Only routed in development.
func HandleMintToken(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input MintTokenInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if input.UserID == "" || input.Username == "" || input.Email == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		token, err := jwt.GenerateToken(input.UserID, input.Username, input.Email, deps.Config.JWTSecret)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
		})
	}
}
