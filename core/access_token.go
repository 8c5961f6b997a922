package core

import (
	"context"
)

// TokenStorage holds the access/refresh token pair.
//
// Reads filter out unusable values (see IsValidToken) and report them as
// absent. Writes never fail from the caller's point of view: storage errors
// are logged by the implementation and surface as absence on the next read.
type TokenStorage interface {
	GetAccessToken(ctx context.Context) (string, bool)
	GetRefreshToken(ctx context.Context) (string, bool)
	SetAccessToken(ctx context.Context, token string)
	SetRefreshToken(ctx context.Context, token string)
	SetTokens(ctx context.Context, accessToken, refreshToken string)
	ClearTokens(ctx context.Context)
	HasTokens(ctx context.Context) bool
}

// AccessTokenRefresher obtains a new access token after the one that was
// sent got rejected.
//
// staleToken is the access token the failed request carried ("" when none
// was sent); implementations use it to detect that another caller already
// refreshed.
type AccessTokenRefresher interface {
	Refresh(ctx context.Context, staleToken string) (string, error)
}
