package main

import (
	"testing"
	"time"
)

func TestShortSHA(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0123456789abcdef0123456789abcdef01234567", "0123456789ab"},
		{"0123456789ab", "0123456789ab"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := shortSHA(tc.in); got != tc.want {
			t.Errorf("shortSHA(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	in := time.Date(2026, 3, 4, 12, 30, 0, 0, loc)
	if got, want := formatTime(in), "2026-03-04T10:30:00Z"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
