package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
)

// ParseQueryUint parses an optional non-negative integer query parameter.
func ParseQueryUint(r *http.Request, key string, defaultVal uint64) (uint64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a non-negative integer").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseQueryID parses an optional product id query parameter; absent means 0.
func ParseQueryID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	return ParseID(raw, key)
}
