package studyhive

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

func validateDecodeTarget(target any) error {
	if target == nil {
		return fmt.Errorf("result is nil")
	}
	if v := reflect.ValueOf(target); v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("result must be a non-nil pointer, got %T", target)
	}
	return nil
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}

// pathID validates an identifier used as a path segment and escapes it.
// Dot segments are rejected because URL resolution would collapse them into
// a different endpoint.
func pathID(name, id string) (string, error) {
	if err := requireField(name, id); err != nil {
		return "", err
	}
	if strings.Contains(id, "/") {
		return "", fmt.Errorf("%s %q must not contain '/'", name, id)
	}
	if id == "." || id == ".." {
		return "", fmt.Errorf("%s %q is not a valid identifier", name, id)
	}
	return url.PathEscape(id), nil
}
