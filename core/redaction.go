package core

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const redactedValue = "***"

// Keys are compared lowercased with '_' and '-' removed, so "refreshToken",
// "refresh_token" and "Refresh-Token" all match.
var sensitiveKeys = map[string]struct{}{
	"accesstoken":     {},
	"authorization":   {},
	"currentpassword": {},
	"newpassword":     {},
	"otp":             {},
	"password":        {},
	"refreshtoken":    {},
	"secret":          {},
	"signature":       {},
	"token":           {},
	// presigned storage urls
	"xamzcredential":    {},
	"xamzsecuritytoken": {},
	"xamzsignature":     {},
}

func isSensitiveKey(key string) bool {
	normalized := strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(key))
	_, exists := sensitiveKeys[normalized]
	return exists
}

// RedactURLQuery masks sensitive query parameters.
func RedactURLQuery(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.RawQuery == "" {
		return rawURL
	}

	query := parsed.Query()
	for key, values := range query {
		if !isSensitiveKey(key) {
			continue
		}
		for i := range values {
			values[i] = redactedValue
		}
		query[key] = values
	}

	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// RedactHeader returns a copy of h with credentials masked. The auth scheme
// is kept so logs still show whether a bearer token was sent.
func RedactHeader(h http.Header) http.Header {
	out := h.Clone()
	for key, values := range out {
		if !isSensitiveKey(key) {
			continue
		}
		for i, value := range values {
			if scheme, _, ok := strings.Cut(value, " "); ok {
				values[i] = scheme + " " + redactedValue
			} else {
				values[i] = redactedValue
			}
		}
	}
	return out
}

// RedactJSONBody masks sensitive fields at any depth of a JSON document.
// Bodies that are not JSON are truncated instead.
func RedactJSONBody(body []byte) string {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return truncateBody(body, 256)
	}

	out, err := json.Marshal(redactValue(doc))
	if err != nil {
		return redactedValue
	}
	return string(out)
}

func redactValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for key, inner := range val {
			if isSensitiveKey(key) {
				val[key] = redactedValue
				continue
			}
			val[key] = redactValue(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = redactValue(inner)
		}
		return val
	default:
		return v
	}
}
