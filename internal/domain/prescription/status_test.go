package prescription

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusActive, StatusFilled, true},
		{StatusActive, StatusCancelled, true},
		{StatusFilled, StatusCompleted, true},
		{StatusActive, StatusCompleted, false},
		{StatusFilled, StatusCancelled, false},
		{StatusFilled, StatusActive, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusActive, false},
		{StatusActive, StatusActive, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}
