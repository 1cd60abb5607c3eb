package pagination

const (
	// DefaultLimit matches the admin dropdown's page size.
	DefaultLimit = 20
	// MaxLimit caps how many rows a list query can request.
	MaxLimit = 100
)

// NormalizeLimit applies fallback when limit is unset and clamps to MaxLimit.
func NormalizeLimit(limit, fallback int) int {
	if fallback <= 0 || fallback > MaxLimit {
		fallback = DefaultLimit
	}
	if limit <= 0 {
		return fallback
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
