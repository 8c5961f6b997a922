package core

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
)

const (
	AccessTokenKey  = "studyhive_access_token"
	RefreshTokenKey = "studyhive_refresh_token"
)

// IsValidToken rejects empty tokens and the literal "undefined"/"null"
// strings left behind by clients that stored a missing value verbatim.
func IsValidToken(token string) bool {
	return token != "" && token != "undefined" && token != "null"
}

type TokenStoreConfig struct {
	Cache Cache
	// KeyPrefix namespaces both keys, e.g. per account on a shared Redis.
	KeyPrefix string
	Logger    *slog.Logger
}

// TokenStore keeps the credential pair in a Cache under two fixed keys.
type TokenStore struct {
	cache      Cache
	accessKey  string
	refreshKey string
	logger     *slog.Logger
}

func NewTokenStore(cfg TokenStoreConfig) (*TokenStore, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &TokenStore{
		cache:      cfg.Cache,
		accessKey:  cfg.KeyPrefix + AccessTokenKey,
		refreshKey: cfg.KeyPrefix + RefreshTokenKey,
		logger:     logger,
	}, nil
}

func (s *TokenStore) GetAccessToken(ctx context.Context) (string, bool) {
	return s.get(ctx, s.accessKey)
}

func (s *TokenStore) GetRefreshToken(ctx context.Context) (string, bool) {
	return s.get(ctx, s.refreshKey)
}

func (s *TokenStore) SetAccessToken(ctx context.Context, token string) {
	s.set(ctx, s.accessKey, token)
}

func (s *TokenStore) SetRefreshToken(ctx context.Context, token string) {
	s.set(ctx, s.refreshKey, token)
}

// SetTokens writes both tokens. If either write fails both keys are removed
// so a half-written pair is never left behind.
func (s *TokenStore) SetTokens(ctx context.Context, accessToken, refreshToken string) {
	if !s.set(ctx, s.accessKey, accessToken) || !s.set(ctx, s.refreshKey, refreshToken) {
		s.ClearTokens(ctx)
	}
}

func (s *TokenStore) ClearTokens(ctx context.Context) {
	for _, key := range []string{s.accessKey, s.refreshKey} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "delete token failed", slog.String("key", key), slog.Any("error", err))
		}
	}
}

func (s *TokenStore) HasTokens(ctx context.Context) bool {
	_, hasAccess := s.GetAccessToken(ctx)
	_, hasRefresh := s.GetRefreshToken(ctx)
	return hasAccess && hasRefresh
}

// Token returns the stored pair as an oauth2 token. Expiry is taken from the
// access token's exp claim when it is a JWT.
func (s *TokenStore) Token(ctx context.Context) (*oauth2.Token, bool) {
	access, ok := s.GetAccessToken(ctx)
	if !ok {
		return nil, false
	}
	refresh, ok := s.GetRefreshToken(ctx)
	if !ok {
		return nil, false
	}

	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}
	if expiry, ok := TokenExpiry(access); ok {
		tok.Expiry = expiry
	}
	return tok, true
}

// TokenSource exposes the stored credentials to oauth2-aware HTTP clients.
// It never refreshes on its own; refreshing is the RefreshCoordinator's job.
func (s *TokenStore) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: s}
}

func (s *TokenStore) get(ctx context.Context, key string) (string, bool) {
	token, ok := s.cache.Get(ctx, key)
	if !ok || !IsValidToken(token) {
		return "", false
	}
	return token, true
}

func (s *TokenStore) set(ctx context.Context, key, token string) bool {
	if err := s.cache.Set(ctx, key, token, 0); err != nil {
		s.logger.WarnContext(ctx, "store token failed", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

type storeTokenSource struct {
	ctx   context.Context
	store *TokenStore
}

func (ts *storeTokenSource) Token() (*oauth2.Token, error) {
	tok, ok := ts.store.Token(ts.ctx)
	if !ok {
		return nil, ErrNoCredentials
	}
	return tok, nil
}

var _ TokenStorage = (*TokenStore)(nil)
