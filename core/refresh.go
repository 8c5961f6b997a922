package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
)

const RefreshPath = "/api/auth/refresh"

// RefreshFunc exchanges a refresh token for new credentials. An empty
// RefreshToken in the result keeps the current one.
type RefreshFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

type RefreshCoordinatorConfig struct {
	Tokens  TokenStorage
	Refresh RefreshFunc
	// OnSessionExpired runs once per failed refresh, after the stored tokens
	// were cleared. Applications send the user back to login from here.
	OnSessionExpired func(ctx context.Context, err error)
	Logger           *slog.Logger
}

type refreshCall struct {
	done    chan struct{}
	waiters int
	token   string
	err     error
}

// RefreshCoordinator collapses concurrent refresh attempts into a single
// call to the refresh endpoint. Callers arriving while a refresh is in flight
// wait for its outcome instead of starting another one.
type RefreshCoordinator struct {
	tokens           TokenStorage
	refresh          RefreshFunc
	onSessionExpired func(ctx context.Context, err error)
	logger           *slog.Logger

	mu       sync.Mutex
	inflight *refreshCall
}

func NewRefreshCoordinator(cfg RefreshCoordinatorConfig) (*RefreshCoordinator, error) {
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token storage is required")
	}
	if cfg.Refresh == nil {
		return nil, fmt.Errorf("refresh func is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RefreshCoordinator{
		tokens:           cfg.Tokens,
		refresh:          cfg.Refresh,
		onSessionExpired: cfg.OnSessionExpired,
		logger:           logger,
	}, nil
}

// Refresh returns a usable access token for a caller whose request carrying
// staleToken was rejected.
//
// If the stored token already differs from staleToken, a refresh for this
// caller's episode has completed and the stored token is returned without a
// network call. Errors wrap ErrRefreshFailed.
func (c *RefreshCoordinator) Refresh(ctx context.Context, staleToken string) (string, error) {
	c.mu.Lock()
	if call := c.inflight; call != nil {
		call.waiters++
		c.mu.Unlock()
		return waitRefreshCall(ctx, call)
	}
	if current, ok := c.tokens.GetAccessToken(ctx); ok && current != staleToken {
		c.mu.Unlock()
		return current, nil
	}

	call := &refreshCall{done: make(chan struct{})}
	c.inflight = call
	c.mu.Unlock()

	// The exchange outlives the leader's context: abandoning it halfway would
	// purge credentials that are still good.
	token, err := c.refreshAndStore(context.WithoutCancel(ctx))

	c.mu.Lock()
	call.token = token
	call.err = err
	waiters := call.waiters
	if c.inflight == call {
		c.inflight = nil
	}
	c.mu.Unlock()
	close(call.done)

	if err != nil {
		c.logger.WarnContext(ctx, "access token refresh failed",
			slog.Int("waiters", waiters),
			slog.Any("error", err),
		)
		if c.onSessionExpired != nil {
			c.onSessionExpired(ctx, err)
		}
		return "", err
	}

	c.logger.InfoContext(ctx, "access token refreshed", slog.Int("waiters", waiters))
	return token, nil
}

// pending reports how many callers wait on the in-flight refresh.
func (c *RefreshCoordinator) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight == nil {
		return 0
	}
	return c.inflight.waiters
}

func (c *RefreshCoordinator) refreshAndStore(ctx context.Context) (string, error) {
	refreshToken, ok := c.tokens.GetRefreshToken(ctx)
	if !ok {
		c.tokens.ClearTokens(ctx)
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNoRefreshToken)
	}

	c.logger.InfoContext(ctx, "refreshing access token")

	result, err := c.refresh(ctx, refreshToken)
	if err == nil && (result == nil || !IsValidToken(result.AccessToken)) {
		err = errors.New("empty access token from refresher")
	}
	if err != nil {
		c.tokens.ClearTokens(ctx)
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	next := result.RefreshToken
	if !IsValidToken(next) {
		next = refreshToken
	}
	c.tokens.SetTokens(ctx, result.AccessToken, next)

	return result.AccessToken, nil
}

func waitRefreshCall(ctx context.Context, call *refreshCall) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-call.done:
		return call.token, call.err
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// NewHTTPRefresher posts the refresh token to path (RefreshPath when empty).
// The request goes out without an Authorization header and is never
// retried, so a rejected refresh cannot recurse into another refresh.
func NewHTTPRefresher(client *Client, path string) RefreshFunc {
	if path == "" {
		path = RefreshPath
	}
	return func(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
		resp, err := NewTypedRequest[refreshResponse](client).
			Path(path).
			Body(refreshRequest{RefreshToken: refreshToken}).
			WithoutToken().
			Post(ctx)
		if err != nil {
			return nil, fmt.Errorf("request token refresh: %w", err)
		}

		tok := &oauth2.Token{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			TokenType:    "Bearer",
		}
		if expiry, ok := TokenExpiry(resp.AccessToken); ok {
			tok.Expiry = expiry
		}
		return tok, nil
	}
}

var _ AccessTokenRefresher = (*RefreshCoordinator)(nil)
