package model

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from  MessageStatus
		to    MessageStatus
		legal bool
	}{
		{StatusPending, StatusInFlight, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusSent, false},
		{StatusPending, StatusFailed, false},
		{StatusInFlight, StatusSent, true},
		{StatusInFlight, StatusFailed, true},
		{StatusInFlight, StatusPending, true},
		{StatusInFlight, StatusCancelled, false},
		{StatusSent, StatusPending, false},
		{StatusSent, StatusFailed, false},
		{StatusFailed, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusInFlight, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.legal {
			t.Errorf("%s -> %s: expected legal=%v, got %v", tc.from, tc.to, tc.legal, got)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []MessageStatus{StatusSent, StatusFailed, StatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []MessageStatus{StatusPending, StatusInFlight} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
