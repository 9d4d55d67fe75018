package main

import "testing"

func TestShortID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "3f2a9c1e-0000-0000-0000-000000000000", want: "3f2a9c1e"},
		{in: "abcdefgh", want: "abcdefgh"},
		{in: "abc", want: "abc"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := shortID(tt.in); got != tt.want {
			t.Errorf("shortID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
