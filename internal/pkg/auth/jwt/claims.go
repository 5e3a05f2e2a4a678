package jwt

import "github.com/golang-jwt/jwt"

// Claims defines the JWT payload attached to every socket connection.
// The three identity fields are required and must be non-empty strings;
// a token missing any of them is rejected at the handshake.
type Claims struct {
	// StandardClaims embeds the standard JWT fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer), used for token validity checks.
	jwt.StandardClaims

	// UserID is the stable identifier assigned by the identity service.
	UserID string `json:"userId"`

	// Username is the display name shown to other players.
	Username string `json:"username"`

	// Email is the account email carried for the identity service's benefit.
	Email string `json:"email"`
}
