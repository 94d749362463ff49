package utils

import (
	"math"
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if got := Truncate("ربا ربا", 3); got != "ربا..." {
		t.Errorf("multibyte: got %q", got)
	}
}

func TestContainsAny(t *testing.T) {
	tests := []struct {
		text     string
		keywords []string
		want     bool
	}{
		{"What is RIBA?", []string{"riba"}, true},
		{"Islamic Finance basics", []string{"islamic finance"}, true},
		{"What is the capital of France?", []string{"riba", "bank"}, false},
		{"anything", nil, false},
	}
	for _, tt := range tests {
		if got := ContainsAny(tt.text, tt.keywords); got != tt.want {
			t.Errorf("ContainsAny(%q, %v) = %v, want %v", tt.text, tt.keywords, got, tt.want)
		}
	}
}

func TestRoundScore(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.912345, 0.9123},
		{0.87659, 0.8766},
		{1, 1},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundScore(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("RoundScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("got %v", v)
	}
	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}
