package redact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/scdl/redact"
)

func TestString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "empty", in: "", expected: ""},
		{name: "short", in: "abc", expected: "***"},
		{name: "eight bytes", in: "abcdefgh", expected: "a******h"},
		{
			name:     "client id",
			in:       "abcdefghijklmnopqrstuvwxyz012345",
			expected: "abcd" + "************************" + "2345",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := redact.String(tc.in)
			assert.Equal(t, tc.expected, got)
			assert.Len(t, got, len(tc.in))
		})
	}
}
