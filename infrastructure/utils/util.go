package utils

import "github.com/google/uuid"

// IsUUID reports whether s is a canonical RFC 4122 UUID of version 1 to 5.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.Variant() == uuid.RFC4122 && id.Version() >= 1 && id.Version() <= 5
}

// ShortID returns the first 8 characters of a random UUID.
func ShortID() string {
	return uuid.NewString()[:8]
}

// Truncate cuts s to max runes, ending with suffix when it was cut.
func Truncate(s string, max int, suffix string) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	keep := max - len([]rune(suffix))
	if keep < 0 {
		keep = 0
	}
	return string(r[:keep]) + suffix
}
