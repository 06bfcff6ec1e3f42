package discord

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short text untouched", "hello", 10, "hello"},
		{"exact fit untouched", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello…"},
		{"cut lands mid-rune", "aaé", 3, "aa…"},
		{"multibyte only", strings.Repeat("é", 5), 5, "éé…"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.in, tc.limit)
			if got != tc.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate produced invalid UTF-8: %q", got)
			}
		})
	}
}
