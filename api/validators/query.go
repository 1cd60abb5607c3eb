package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/petrescue/admin-notifier/pkg/errors"
)

// ParseQueryInt reads the optional integer query parameter key. A missing or
// blank value yields fallback; anything outside [min, max] is a validation error.
func ParseQueryInt(r *http.Request, key string, fallback, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be an integer", key).
			WithDetails(map[string]any{"field": key, "value": raw})
	case value < min || value > max:
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be between %d and %d", key, min, max).
			WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}
