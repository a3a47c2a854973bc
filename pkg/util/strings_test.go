package util

import "testing"

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("42", 7); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("got %d, want default", got)
	}
	if got := ParseIntDefault("abc", 7); got != 7 {
		t.Fatalf("got %d, want default on invalid", got)
	}
}

func TestParseFloatDefault(t *testing.T) {
	if got := ParseFloatDefault("0.25", 1); got != 0.25 {
		t.Fatalf("got %v, want 0.25", got)
	}
	if got := ParseFloatDefault("x", 1); got != 1 {
		t.Fatalf("got %v, want default on invalid", got)
	}
}
