package main

import "testing"

func TestFramePath(t *testing.T) {
	tests := []struct {
		path string
		i, n int
		want string
	}{
		{"frame.png", 0, 1, "frame.png"},
		{"frame.png", 0, 3, "frame-000.png"},
		{"out/spin.webp", 12, 20, "out/spin-012.webp"},
	}
	for _, tc := range tests {
		if got := framePath(tc.path, tc.i, tc.n); got != tc.want {
			t.Errorf("framePath(%q, %d, %d) = %q, want %q", tc.path, tc.i, tc.n, got, tc.want)
		}
	}
}
