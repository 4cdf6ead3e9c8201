package store

import "strings"

// Match reports whether key matches pattern under the store listing
// contract: '*' matches any run of characters, including none and including
// separators like '/' or ':'; everything else is literal and the pattern is
// anchored to full key equality. Identifiers are opaque caller strings, so
// no other character is special.
func Match(pattern, key string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return key == pattern
	}

	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	key = key[len(parts[0]):]

	last := parts[len(parts)-1]
	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		i := strings.Index(key, part)
		if i < 0 {
			return false
		}
		key = key[i+len(part):]
	}
	return strings.HasSuffix(key, last)
}
