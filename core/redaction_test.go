package core

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestRedactURLQuery(t *testing.T) {
	raw := "http://localhost:5000/api/auth/verify-email?token=abc&email=a%40b.c"
	redacted := RedactURLQuery(raw)

	parsed, err := url.Parse(redacted)
	if err != nil {
		t.Fatalf("parse redacted url: %v", err)
	}

	if parsed.Query().Get("token") != "***" {
		t.Fatalf("expected token to be redacted")
	}
	if parsed.Query().Get("email") != "a@b.c" {
		t.Fatalf("expected email to remain unchanged")
	}

	if got := RedactURLQuery("http://localhost:5000/api/levels"); got != "http://localhost:5000/api/levels" {
		t.Fatalf("url without query should be unchanged, got %s", got)
	}
}

func TestRedactURLQuery_PresignedURL(t *testing.T) {
	raw := "https://r2.example.com/notes/a.pdf?X-Amz-Credential=key&X-Amz-Signature=sig&X-Amz-Expires=900"
	parsed, err := url.Parse(RedactURLQuery(raw))
	if err != nil {
		t.Fatalf("parse redacted url: %v", err)
	}

	query := parsed.Query()
	for _, key := range []string{"X-Amz-Credential", "X-Amz-Signature"} {
		if query.Get(key) != "***" {
			t.Fatalf("expected %s to be redacted, got %q", key, query.Get(key))
		}
	}
	if query.Get("X-Amz-Expires") != "900" {
		t.Fatalf("expected X-Amz-Expires to remain unchanged")
	}
}

func TestRedactHeader(t *testing.T) {
	in := http.Header{}
	in.Set("Authorization", "Bearer secret-token")
	in.Set("X-Request-ID", "req-1")

	out := RedactHeader(in)

	if out.Get("Authorization") != "Bearer ***" {
		t.Fatalf("expected bearer token to be redacted, got %q", out.Get("Authorization"))
	}
	if out.Get("X-Request-ID") != "req-1" {
		t.Fatalf("expected request id to remain unchanged")
	}

	// input must stay untouched
	if in.Get("Authorization") != "Bearer secret-token" {
		t.Fatalf("expected input header unchanged")
	}
}

func TestRedactJSONBody(t *testing.T) {
	body := []byte(`{"email":"ada@uni.edu","password":"hunter2","data":{"accessToken":"a","refresh_token":"r","items":[{"otp":"123456"}]}}`)

	var got map[string]any
	if err := json.Unmarshal([]byte(RedactJSONBody(body)), &got); err != nil {
		t.Fatalf("redacted body is not json: %v", err)
	}

	if got["email"] != "ada@uni.edu" {
		t.Fatalf("expected email to remain unchanged")
	}
	if got["password"] != "***" {
		t.Fatalf("expected password to be redacted")
	}
	data := got["data"].(map[string]any)
	if data["accessToken"] != "***" || data["refresh_token"] != "***" {
		t.Fatalf("expected nested tokens to be redacted, got %v", data)
	}
	item := data["items"].([]any)[0].(map[string]any)
	if item["otp"] != "***" {
		t.Fatalf("expected otp inside array to be redacted")
	}
}

func TestRedactJSONBody_NonJSON(t *testing.T) {
	body := []byte(strings.Repeat("x", 300))
	got := RedactJSONBody(body)
	if len(got) != 256+len("...") {
		t.Fatalf("expected truncated body, got %d bytes", len(got))
	}
}
