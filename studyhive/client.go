package studyhive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/studyhive/studyhive-go/core"
)

type Config struct {
	BaseURL    string
	Cache      core.Cache
	HTTPClient *http.Client
	Logger     *slog.Logger
	// KeyPrefix namespaces the stored tokens, so several accounts can share
	// one cache.
	KeyPrefix string
	// OnSessionExpired runs once per failed refresh after the tokens were
	// cleared.
	OnSessionExpired func(ctx context.Context, err error)
}

type Client struct {
	cfg         Config
	apiClient   *core.Client
	tokens      *core.TokenStore
	coordinator *core.RefreshCoordinator
}

func New(cfg Config) (*Client, error) {
	cfg = normalizeConfig(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	tokens, err := core.NewTokenStore(core.TokenStoreConfig{
		Cache:     cfg.Cache,
		KeyPrefix: cfg.KeyPrefix,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	// The refresh call travels on its own anonymous client so it never
	// re-enters the 401 recovery of the client it serves.
	tokenClient, err := core.NewClient(core.ClientConfig{
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	coordinator, err := core.NewRefreshCoordinator(core.RefreshCoordinatorConfig{
		Tokens:           tokens,
		Refresh:          core.NewHTTPRefresher(tokenClient, core.RefreshPath),
		OnSessionExpired: cfg.OnSessionExpired,
		Logger:           cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	apiClient, err := core.NewClient(core.ClientConfig{
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
		Tokens:     tokens,
		Refresher:  coordinator,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:         cfg,
		apiClient:   apiClient,
		tokens:      tokens,
		coordinator: coordinator,
	}, nil
}

func (c *Client) Config() Config {
	return c.cfg
}

// API exposes the underlying request pipeline for endpoints without a
// typed wrapper.
func (c *Client) API() *core.Client {
	return c.apiClient
}

func (c *Client) Tokens() *core.TokenStore {
	return c.tokens
}

// IsAuthenticated reports whether a usable token pair is stored. It does not
// contact the backend; see CheckAuth.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	return c.tokens.HasTokens(ctx)
}

func normalizeConfig(cfg Config) Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = core.DefaultBaseURL
	}
	if cfg.Cache == nil {
		cfg.Cache = core.NewMemoryCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

func validateConfig(cfg Config) error {
	if strings.ContainsAny(cfg.KeyPrefix, " \t\r\n") {
		return fmt.Errorf("key prefix must not contain whitespace")
	}
	return nil
}
