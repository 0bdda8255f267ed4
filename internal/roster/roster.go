// Package roster loads and validates recipient chat-ID lists.
package roster

import (
	"strings"
)

// ParseText extracts chat IDs from raw text, one per line. Blank lines and
// lines starting with '#' are skipped. No deduplication happens here.
func ParseText(text string) []string {
	var ids []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids
}

// ValidID reports whether s is a well-formed chat ID: a base-10 integer,
// optionally negative (groups and channels have negative IDs).
func ValidID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
		if s == "" {
			return false
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Partition splits ids into valid (trimmed) and invalid (as given) lists,
// preserving order.
func Partition(ids []string) (valid, invalid []string) {
	for _, id := range ids {
		if ValidID(id) {
			valid = append(valid, strings.TrimSpace(id))
		} else {
			invalid = append(invalid, id)
		}
	}
	return valid, invalid
}

// Dedupe removes duplicate IDs, keeping first occurrences in order.
func Dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
