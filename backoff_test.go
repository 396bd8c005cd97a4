package mqtt5

import "testing"

func TestBackoffDelayGrowsAndCaps(t *testing.T) {
	b := Backoff{Base: 1, Ceiling: 8, JitterFraction: 0}
	tests := []struct {
		attempt int
		want    int64
	}{
		{0, 1},
		{1, 2},
		{2, 4},
		{3, 8},
		{10, 8}, // capped at Ceiling
	}
	for _, tt := range tests {
		got := b.Delay(tt.attempt)
		if int64(got) != tt.want {
			t.Errorf("Delay(%d) = %d, want %d", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffJitterNeverExceedsDelay(t *testing.T) {
	b := Backoff{Base: 100, Ceiling: 100, JitterFraction: 1.0}
	for i := 0; i < 50; i++ {
		got := b.Delay(0)
		if got < 0 || got > 100 {
			t.Fatalf("Delay() = %d, want within [0, 100]", got)
		}
	}
}

func TestBackoffZeroValueUsesDefaults(t *testing.T) {
	var b Backoff
	if d := b.Delay(0); d <= 0 {
		t.Errorf("zero-value Backoff.Delay(0) = %d, want positive", d)
	}
}
