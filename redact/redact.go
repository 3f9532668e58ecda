package redact

import (
	"strings"
)

// String keeps roughly the first and last eighth of s and masks the rest.
// Strings shorter than 8 bytes are fully masked.
func String(s string) string {
	l := len(s)
	if l < 8 {
		return strings.Repeat("*", l)
	}

	keep := l / 8
	if keep == 0 {
		keep = 1
	}

	return s[:keep] + strings.Repeat("*", l-2*keep) + s[l-keep:]
}
