package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(404, "Level not found")
	if err.Error() != "studyhive api error: [404] Level not found" {
		t.Fatalf("unexpected error message: %s", err.Error())
	}

	err = NewAPIError(503, "")
	if err.Error() != "studyhive api error: [503] Service Unavailable" {
		t.Fatalf("unexpected error message: %s", err.Error())
	}
}

func TestIsUnauthorized(t *testing.T) {
	if !IsUnauthorized(NewAPIError(401, "Unauthorized")) {
		t.Fatal("expected 401 to be unauthorized")
	}
	if !IsUnauthorized(fmt.Errorf("load profile: %w", NewAPIError(401, ""))) {
		t.Fatal("expected wrapped 401 to be unauthorized")
	}
	if IsUnauthorized(NewAPIError(403, "Forbidden")) {
		t.Fatal("unexpected unauthorized for 403")
	}
	if IsUnauthorized(errors.New("plain")) {
		t.Fatal("unexpected unauthorized for plain error")
	}
}

func TestIsSessionExpired(t *testing.T) {
	apiErr := NewAPIError(401, "Unauthorized")
	if IsSessionExpired(apiErr) {
		t.Fatal("a bare 401 is not an expired session")
	}

	apiErr.Cause = fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNoRefreshToken)
	if !IsSessionExpired(apiErr) {
		t.Fatal("expected expired session")
	}
	if !errors.Is(apiErr, ErrNoRefreshToken) {
		t.Fatal("expected cause chain to be preserved")
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Method: "POST", URL: "http://localhost:5000/api/auth/login?token=abc", Err: cause}

	if !errors.Is(err, cause) {
		t.Fatal("expected network error to unwrap")
	}
	if got := err.Error(); got != "network error: POST http://localhost:5000/api/auth/login?token=%2A%2A%2A: connection refused" {
		t.Fatalf("unexpected error message: %s", got)
	}
}
