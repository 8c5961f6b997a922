package studyhive

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-go/core"
)

func signSession(t *testing.T, claims SessionClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return signed
}

func TestParseSessionClaims(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	token := signSession(t, SessionClaims{
		ID:   "user001",
		Role: RoleRep,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
	})

	claims, err := ParseSessionClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "user001", claims.AccountID())
	assert.Equal(t, RoleRep, claims.Role)
	assert.Equal(t, 15*time.Minute, claims.ExpiresIn(now))
	assert.Zero(t, claims.ExpiresIn(now.Add(time.Hour)), "expired tokens report zero")

	_, err = ParseSessionClaims("undefined")
	assert.ErrorIs(t, err, core.ErrNoCredentials)

	_, err = ParseSessionClaims("opaque")
	assert.Error(t, err)
}

func TestSessionClaims_AccountID(t *testing.T) {
	tests := []struct {
		name   string
		claims SessionClaims
		want   string
	}{
		{name: "userId", claims: SessionClaims{UserID: "a", ID: "b"}, want: "a"},
		{name: "id", claims: SessionClaims{ID: "b"}, want: "b"},
		{name: "sub", claims: SessionClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "c"}}, want: "c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.claims.AccountID(), tt.name)
	}
}

func TestClient_Session(t *testing.T) {
	client, err := New(Config{})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.Session(ctx)
	assert.ErrorIs(t, err, core.ErrNoCredentials)

	client.Tokens().SetTokens(ctx, signSession(t, SessionClaims{UserID: "user001", Email: "ada@uni.edu"}), "r")
	claims, err := client.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada@uni.edu", claims.Email)
	assert.Zero(t, claims.ExpiresIn(time.Now()))
}
