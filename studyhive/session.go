package studyhive

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/studyhive/studyhive-go/core"
)

// SessionClaims is what the client can learn from the access token without
// calling the backend. The signature is not verified; the backend stays the
// authority.
type SessionClaims struct {
	UserID string `json:"userId,omitempty"`
	ID     string `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AccountID returns the user id, whichever claim the backend put it in.
func (s *SessionClaims) AccountID() string {
	switch {
	case s.UserID != "":
		return s.UserID
	case s.ID != "":
		return s.ID
	default:
		return s.Subject
	}
}

// ExpiresIn returns the time left until the access token expires, or zero
// when it has no exp claim or is already expired.
func (s *SessionClaims) ExpiresIn(now time.Time) time.Duration {
	if s.ExpiresAt == nil {
		return 0
	}
	return max(s.ExpiresAt.Sub(now), 0)
}

func ParseSessionClaims(token string) (*SessionClaims, error) {
	if !core.IsValidToken(token) {
		return nil, core.ErrNoCredentials
	}

	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}

// Session decodes the stored access token.
func (c *Client) Session(ctx context.Context) (*SessionClaims, error) {
	token, ok := c.tokens.GetAccessToken(ctx)
	if !ok {
		return nil, core.ErrNoCredentials
	}
	return ParseSessionClaims(token)
}
