// Package token implements the session credential codec. A credential is a
// signed, self-describing blob carrying the user id and a login flag; there is
// no server-side session table. Logout is stateless: a token minted with the
// flag cleared is structurally valid but never resolves to a user.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims is the payload embedded in every credential.
type sessionClaims struct {
	UserID   int  `json:"u_id"`
	LoggedIn bool `json:"logged_in"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session credentials with a process-wide secret.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec signing with the given shared secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue mints a credential for userID. loggedIn=false produces the canonical
// "logged out" token for that user.
func (c *Codec) Issue(userID int, loggedIn bool) (string, error) {
	claims := sessionClaims{UserID: userID, LoggedIn: loggedIn}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Resolve returns the user id carried by tok, but only when the signature
// verifies and the login flag is set. Malformed tokens, bad signatures and
// logged-out tokens all resolve to (0, false); callers cannot and must not
// distinguish those cases.
func (c *Codec) Resolve(tok string) (int, bool) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return 0, false
	}
	if !claims.LoggedIn {
		return 0, false
	}
	return claims.UserID, true
}
