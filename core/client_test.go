package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend accepts exactly one access token on /api/resource and mints a
// new one on /api/auth/refresh.
type fakeBackend struct {
	t *testing.T

	mu          sync.Mutex
	validToken  string
	newToken    string
	rotated     string
	always401   bool
	refreshFail int
	refreshGate chan struct{}
	seenAuth    []string
	seenIDs     []string
	seenBodies  []string

	refreshCalls  atomic.Int32
	resourceCalls atomic.Int32
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case RefreshPath:
		b.refreshCalls.Add(1)
		if r.Header.Get("Authorization") != "" {
			b.t.Errorf("refresh call must not carry an Authorization header")
		}
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			b.t.Errorf("decode refresh body: %v", err)
		}
		if b.refreshGate != nil {
			<-b.refreshGate
		}

		b.mu.Lock()
		failStatus := b.refreshFail
		b.mu.Unlock()
		if failStatus != 0 {
			w.WriteHeader(failStatus)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "invalid refresh token"})
			return
		}

		b.mu.Lock()
		b.validToken = b.newToken
		data := map[string]any{"accessToken": b.newToken}
		if b.rotated != "" {
			data["refreshToken"] = b.rotated
		}
		b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})

	default:
		b.resourceCalls.Add(1)
		body, _ := io.ReadAll(r.Body)

		b.mu.Lock()
		auth := r.Header.Get("Authorization")
		b.seenAuth = append(b.seenAuth, auth)
		b.seenIDs = append(b.seenIDs, r.Header.Get(RequestIDHeader))
		b.seenBodies = append(b.seenBodies, string(body))
		authorized := !b.always401 && auth == "Bearer "+b.validToken
		b.mu.Unlock()

		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Unauthorized"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"ok": true}})
	}
}

func (b *fakeBackend) authHeaders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.seenAuth...)
}

type pipeline struct {
	client      *Client
	store       *TokenStore
	coordinator *RefreshCoordinator
	expired     *atomic.Int32
}

func newTestPipeline(t *testing.T, baseURL string) *pipeline {
	t.Helper()

	store := newTestTokenStore(t, NewMemoryCache())

	anonymous, err := NewClient(ClientConfig{BaseURL: baseURL})
	require.NoError(t, err)

	expired := &atomic.Int32{}
	coordinator, err := NewRefreshCoordinator(RefreshCoordinatorConfig{
		Tokens:  store,
		Refresh: NewHTTPRefresher(anonymous, ""),
		OnSessionExpired: func(context.Context, error) {
			expired.Add(1)
		},
	})
	require.NoError(t, err)

	client, err := NewClient(ClientConfig{
		BaseURL:   baseURL,
		Tokens:    store,
		Refresher: coordinator,
	})
	require.NoError(t, err)

	return &pipeline{client: client, store: store, coordinator: coordinator, expired: expired}
}

type okPayload struct {
	OK bool `json:"ok"`
}

func TestClient_AttachesBearerToken(t *testing.T) {
	tests := []struct {
		name       string
		stored     string
		wantHeader string
	}{
		{name: "valid token", stored: "tok-1", wantHeader: "Bearer tok-1"},
		{name: "no token", stored: "", wantHeader: ""},
		{name: "literal undefined", stored: "undefined", wantHeader: ""},
		{name: "literal null", stored: "null", wantHeader: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
			}))
			defer server.Close()

			p := newTestPipeline(t, server.URL)
			if tt.stored != "" {
				require.NoError(t, p.store.cache.Set(context.Background(), AccessTokenKey, tt.stored, 0))
			}

			resp, err := p.client.Request().Path("/api/levels").Get(context.Background())
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.wantHeader, got)
		})
	}
}

func TestClient_RefreshesAndRetriesOn401(t *testing.T) {
	backend := &fakeBackend{t: t, validToken: "fresh", newToken: "fresh"}
	server := httptest.NewServer(backend)
	defer server.Close()

	p := newTestPipeline(t, server.URL)
	ctx := context.Background()
	p.store.SetTokens(ctx, "expired", "refresh-1")

	got, err := NewTypedRequest[okPayload](p.client).Path("/api/courses").Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.OK)

	assert.EqualValues(t, 1, backend.refreshCalls.Load())
	assert.Equal(t, []string{"Bearer expired", "Bearer fresh"}, backend.authHeaders())

	access, _ := p.store.GetAccessToken(ctx)
	refresh, _ := p.store.GetRefreshToken(ctx)
	assert.Equal(t, "fresh", access)
	assert.Equal(t, "refresh-1", refresh, "refresh token is kept when the backend does not rotate it")
	assert.Zero(t, p.expired.Load())
}

func TestClient_StoresRotatedRefreshToken(t *testing.T) {
	backend := &fakeBackend{t: t, newToken: "fresh", rotated: "refresh-2"}
	server := httptest.NewServer(backend)
	defer server.Close()

	p := newTestPipeline(t, server.URL)
	ctx := context.Background()
	p.store.SetTokens(ctx, "expired", "refresh-1")

	_, err := p.client.Request().Path("/api/courses").Get(ctx)
	require.NoError(t, err)

	refresh, _ := p.store.GetRefreshToken(ctx)
	assert.Equal(t, "refresh-2", refresh)
}

func TestClient_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	for _, n := range []int{2, 10} {
		t.Run(fmt.Sprintf("%d requests", n), func(t *testing.T) {
			backend := &fakeBackend{
				t:           t,
				validToken:  "fresh",
				newToken:    "fresh",
				refreshGate: make(chan struct{}),
			}
			server := httptest.NewServer(backend)
			defer server.Close()

			p := newTestPipeline(t, server.URL)
			ctx := context.Background()
			p.store.SetTokens(ctx, "expired", "refresh-1")

			errs := make(chan error, n)
			var wg sync.WaitGroup
			for range n {
				wg.Go(func() {
					got, err := NewTypedRequest[okPayload](p.client).Path("/api/quizzes").Get(ctx)
					if err == nil && !got.OK {
						err = errors.New("unexpected payload")
					}
					errs <- err
				})
			}

			require.Eventually(t, func() bool {
				return p.coordinator.pending() == n-1
			}, 5*time.Second, 5*time.Millisecond, "all other requests should wait on the in-flight refresh")
			close(backend.refreshGate)
			wg.Wait()
			close(errs)

			for err := range errs {
				assert.NoError(t, err)
			}
			assert.EqualValues(t, 1, backend.refreshCalls.Load(), "exactly one refresh call per episode")

			var retried int
			for _, h := range backend.authHeaders() {
				if h == "Bearer fresh" {
					retried++
				}
			}
			assert.Equal(t, n, retried, "every request is retried with the refreshed token")
		})
	}
}

func TestClient_RefreshFailureClearsTokensAndSignalsOnce(t *testing.T) {
	const n = 5
	backend := &fakeBackend{
		t:           t,
		validToken:  "never",
		refreshFail: http.StatusUnauthorized,
		refreshGate: make(chan struct{}),
	}
	server := httptest.NewServer(backend)
	defer server.Close()

	p := newTestPipeline(t, server.URL)
	ctx := context.Background()
	p.store.SetTokens(ctx, "expired", "revoked")

	type result struct {
		resp *Response
		err  error
	}
	results := make(chan result, n)
	var wg sync.WaitGroup
	for range n {
		wg.Go(func() {
			resp, err := p.client.Request().Path("/api/requests").Get(ctx)
			results <- result{resp: resp, err: err}
		})
	}

	require.Eventually(t, func() bool {
		return p.coordinator.pending() == n-1
	}, 5*time.Second, 5*time.Millisecond)
	close(backend.refreshGate)
	wg.Wait()
	close(results)

	for r := range results {
		require.Error(t, r.err)
		assert.True(t, IsUnauthorized(r.err), "original 401 is surfaced: %v", r.err)
		assert.True(t, IsSessionExpired(r.err))
		var apiErr *APIError
		require.ErrorAs(t, r.err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, "Unauthorized", apiErr.Message)
		assert.Nil(t, r.resp)
	}

	assert.False(t, p.store.HasTokens(ctx))
	assert.EqualValues(t, 1, backend.refreshCalls.Load())
	assert.EqualValues(t, 1, p.expired.Load(), "session expiry fires once per failed episode")
	assert.EqualValues(t, n, backend.resourceCalls.Load(), "nothing is retried after a failed refresh")
}

func TestClient_RetriedRequestIsNotRetriedAgain(t *testing.T) {
	backend := &fakeBackend{t: t, newToken: "fresh", always401: true}
	server := httptest.NewServer(backend)
	defer server.Close()

	p := newTestPipeline(t, server.URL)
	ctx := context.Background()
	p.store.SetTokens(ctx, "expired", "refresh-1")

	resp, err := p.client.Request().Path("/api/leaderboard").Get(ctx)
	require.NoError(t, err, "second 401 is returned as a response, not a refresh failure")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, err = NewTypedRequest[okPayload](p.client).Path("/api/leaderboard").Get(ctx)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsSessionExpired(err))

	// one refresh per logical request, each retried exactly once
	assert.EqualValues(t, 2, backend.refreshCalls.Load())
	assert.EqualValues(t, 4, backend.resourceCalls.Load())
	assert.True(t, p.store.HasTokens(ctx), "a successful refresh keeps the session")
}

func TestClient_MissingRefreshTokenFailsWithoutNetworkCall(t *testing.T) {
	backend := &fakeBackend{t: t, validToken: "never"}
	server := httptest.NewServer(backend)
	defer server.Close()

	p := newTestPipeline(t, server.URL)
	ctx := context.Background()
	p.store.SetAccessToken(ctx, "expired")

	_, err := p.client.Request().Path("/api/auth/me").Get(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRefreshToken)
	assert.True(t, IsUnauthorized(err))

	assert.Zero(t, backend.refreshCalls.Load())
	assert.EqualValues(t, 1, p.expired.Load())
	_, ok := p.store.GetAccessToken(ctx)
	assert.False(t, ok)
}

func TestClient_NonAuthErrorsPassThrough(t *testing.T) {
	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == RefreshPath {
			refreshCalls.Add(1)
		}
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Rep or admin only"})
	}))
	defer server.Close()

	p := newTestPipeline(t, server.URL)
	ctx := context.Background()
	p.store.SetTokens(ctx, "access", "refresh")

	resp, err := p.client.Request().Path("/api/requests/r1/fulfill").Patch(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, err = NewTypedRequest[okPayload](p.client).Path("/api/requests/r1/fulfill").Patch(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Rep or admin only", apiErr.Message)
	assert.False(t, IsUnauthorized(err))

	assert.Zero(t, refreshCalls.Load())
	assert.True(t, p.store.HasTokens(ctx))
}

func TestClient_WithoutTokenSkipsRefresh(t *testing.T) {
	backend := &fakeBackend{t: t, validToken: "never"}
	server := httptest.NewServer(backend)
	defer server.Close()

	p := newTestPipeline(t, server.URL)
	ctx := context.Background()
	p.store.SetTokens(ctx, "access", "refresh")

	resp, err := p.client.Request().Path("/api/auth/login").Body(map[string]string{"email": "a@b.c"}).WithoutToken().Post(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, []string{""}, backend.authHeaders())
	assert.Zero(t, backend.refreshCalls.Load())
	assert.True(t, p.store.HasTokens(ctx))
}

func TestClient_NetworkErrorIsDistinct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	p := newTestPipeline(t, baseURL)
	ctx := context.Background()
	p.store.SetTokens(ctx, "access", "refresh")

	_, err := p.client.Request().Path("/api/levels").Get(ctx)
	require.Error(t, err)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.MethodGet, netErr.Method)
	assert.False(t, IsUnauthorized(err))
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.True(t, p.store.HasTokens(ctx), "network failures never touch credentials")
}

func TestClient_RetryResendsSameBodyAndRequestID(t *testing.T) {
	backend := &fakeBackend{t: t, newToken: "fresh"}
	server := httptest.NewServer(backend)
	defer server.Close()

	p := newTestPipeline(t, server.URL)
	ctx := context.Background()
	p.store.SetTokens(ctx, "expired", "refresh")

	_, err := p.client.Request().
		Path("/api/quizzes/q1/attempt").
		Body(map[string]any{"answers": []int{1, 0, 2}}).
		Post(ctx)
	require.NoError(t, err)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.seenBodies, 2)
	assert.JSONEq(t, `{"answers":[1,0,2]}`, backend.seenBodies[0])
	assert.Equal(t, backend.seenBodies[0], backend.seenBodies[1])
	require.Len(t, backend.seenIDs, 2)
	assert.NotEmpty(t, backend.seenIDs[0])
	assert.Equal(t, backend.seenIDs[0], backend.seenIDs[1])
}

func TestClient_AnonymousClientNeverRefreshes(t *testing.T) {
	backend := &fakeBackend{t: t, validToken: "never"}
	server := httptest.NewServer(backend)
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := client.Request().Path("/api/levels").Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, backend.refreshCalls.Load())
}

func TestNewClient_BaseURL(t *testing.T) {
	client, err := NewClient(ClientConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())

	client, err = NewClient(ClientConfig{BaseURL: " https://api.studyhive.app/ "})
	require.NoError(t, err)
	assert.Equal(t, "https://api.studyhive.app", client.BaseURL())

	_, err = NewClient(ClientConfig{BaseURL: "localhost"})
	assert.Error(t, err)
}
