//go:build !integration

package worker

import (
	"testing"
	"time"
)

func TestLinear_GrowsLinearlyUpToCap(t *testing.T) {
	l := NewLinear(2*time.Second, 10*time.Second)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 6 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{6, 10 * time.Second}, // capped
		{100, 10 * time.Second},
	}
	for _, tt := range tests {
		if got := l.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestLinear_ZeroCapMeansUncapped(t *testing.T) {
	l := NewLinear(time.Second, 0)
	if got := l.Delay(100); got != 100*time.Second {
		t.Errorf("Delay(100) = %v, want 100s", got)
	}
}

func TestDefaultStrategy(t *testing.T) {
	s := DefaultStrategy()
	if got := s.Delay(1); got != 2*time.Second {
		t.Errorf("Delay(1) = %v, want 2s", got)
	}
	if got := s.Delay(10); got != 10*time.Second {
		t.Errorf("Delay(10) = %v, want 10s", got)
	}
}
