package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	if got := AtoiDefault("", 7); got != 7 {
		t.Fatalf("empty = %d", got)
	}
	if got := AtoiDefault("12", 7); got != 12 {
		t.Fatalf("valid = %d", got)
	}
	if got := AtoiDefault("twelve", 7); got != 7 {
		t.Fatalf("garbage = %d", got)
	}
	if got := AtoiDefault("-3", 7); got != -3 {
		t.Fatalf("negative = %d", got)
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(5, 1, 10); got != 5 {
		t.Fatalf("inside = %d", got)
	}
	if got := ClampInt(-5, 1, 10); got != 1 {
		t.Fatalf("below = %d", got)
	}
	if got := ClampInt(50, 1, 10); got != 10 {
		t.Fatalf("above = %d", got)
	}
}
