package action

import (
	"errors"
	"testing"
	"time"
)

func TestValidatePayload_CreateEvent(t *testing.T) {
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	if err := ValidatePayload(KindCreateEvent, Payload{Title: "Team sync", Start: start, End: end}); err != nil {
		t.Fatalf("valid create payload rejected: %v", err)
	}

	cases := []struct {
		name    string
		payload Payload
		field   string
	}{
		{"missing title", Payload{Start: start, End: end}, "title"},
		{"whitespace title", Payload{Title: "   ", Start: start, End: end}, "title"},
		{"missing times", Payload{Title: "x"}, "start/end"},
		{"only start", Payload{Title: "x", Start: start}, "start/end"},
		{"start equals end", Payload{Title: "x", Start: start, End: start}, "start"},
		{"start after end", Payload{Title: "x", Start: end, End: start}, "start"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePayload(KindCreateEvent, tc.payload)
			if !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("expected ErrInvalidPayload, got %v", err)
			}
			var pe *PayloadError
			if !errors.As(err, &pe) || pe.Field != tc.field {
				t.Fatalf("expected field %q, got %v", tc.field, err)
			}
		})
	}
}

func TestValidatePayload_UpdateEvent(t *testing.T) {
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)

	if err := ValidatePayload(KindUpdateEvent, Payload{EventID: "ev-1"}); err != nil {
		t.Fatalf("update without reschedule rejected: %v", err)
	}
	if err := ValidatePayload(KindUpdateEvent, Payload{EventID: "ev-1", Start: start, End: start.Add(time.Hour)}); err != nil {
		t.Fatalf("update with reschedule rejected: %v", err)
	}
	if err := ValidatePayload(KindUpdateEvent, Payload{Start: start, End: start.Add(time.Hour)}); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("update without event_id accepted: %v", err)
	}
	if err := ValidatePayload(KindUpdateEvent, Payload{EventID: "ev-1", Start: start}); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("update with half a window accepted: %v", err)
	}
}

func TestValidatePayload_DeleteAndUnknownKind(t *testing.T) {
	if err := ValidatePayload(KindDeleteEvent, Payload{EventID: "ev-1"}); err != nil {
		t.Fatalf("valid delete payload rejected: %v", err)
	}
	if err := ValidatePayload(KindDeleteEvent, Payload{}); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("delete without event_id accepted: %v", err)
	}
	if err := ValidatePayload(Kind("teleport_event"), Payload{}); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("unknown kind accepted: %v", err)
	}
}

func TestState_Terminal(t *testing.T) {
	if StatePending.Terminal() {
		t.Fatal("pending must not be terminal")
	}
	for _, s := range []State{StateApproved, StateRejected, StateExpired} {
		if !s.Terminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
}

func TestPendingAction_DueAt(t *testing.T) {
	deadline := time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)
	a := PendingAction{State: StatePending, ExpiresAt: deadline}

	if a.DueAt(deadline) {
		t.Fatal("action must not be due exactly at its deadline")
	}
	if !a.DueAt(deadline.Add(time.Second)) {
		t.Fatal("action must be due after its deadline")
	}

	a.State = StateApproved
	if a.DueAt(deadline.Add(time.Hour)) {
		t.Fatal("terminal action must never be due")
	}
}
