// Package strings holds small helpers for string lists read from config.
package strings

import "strings"

// DedupeAndTrim trims every element, drops blanks and keeps the first
// occurrence of each value, preserving order. A nil or empty input is
// returned unchanged.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
