// Package env reads optional process settings that sit outside the envconfig
// structs, such as logger formatting.
package env

import (
	"os"
	"strconv"
	"strings"
)

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if value, ok := lookup(key); ok {
		return value
	}
	return fallback
}

// GetBool parses key with strconv.ParseBool. Unset or unparsable values yield fallback.
func GetBool(key string, fallback bool) bool {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func lookup(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != ""
}
