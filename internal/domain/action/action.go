package action

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTTL is how long a proposed action waits for a human decision
// before it expires.
const DefaultTTL = 30 * time.Minute

type Kind string

const (
	KindCreateEvent Kind = "create_event"
	KindUpdateEvent Kind = "update_event"
	KindDeleteEvent Kind = "delete_event"
)

func (k Kind) Valid() bool {
	switch k {
	case KindCreateEvent, KindUpdateEvent, KindDeleteEvent:
		return true
	}
	return false
}

type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
	StateExpired  State = "expired"
)

// Terminal reports whether no further transition is permitted.
func (s State) Terminal() bool {
	return s == StateApproved || s == StateRejected || s == StateExpired
}

// Payload carries the parameters needed to execute an action against the
// owner's calendar. EventID targets an existing event for update/delete.
type Payload struct {
	Title       string    `json:"title,omitempty"`
	Start       time.Time `json:"start,omitempty"`
	End         time.Time `json:"end,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	EventID     string    `json:"event_id,omitempty"`
}

// PendingAction is a proposed calendar mutation awaiting approval. Every
// field except State and ResolvedAt is immutable after creation.
type PendingAction struct {
	ActionID    string
	OwnerID     string
	Kind        Kind
	Payload     Payload
	Description string
	State       State
	CreatedAt   time.Time
	ExpiresAt   time.Time
	ResolvedAt  *time.Time
}

// DueAt reports whether the action is pending but past its deadline, so
// the next observer must mark it expired.
func (a PendingAction) DueAt(now time.Time) bool {
	return a.State == StatePending && now.After(a.ExpiresAt)
}

var ErrInvalidPayload = errors.New("invalid action payload")

type PayloadError struct {
	Field  string
	Reason string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidPayload.Error(), e.Field, e.Reason)
}

func (e *PayloadError) Unwrap() error {
	return ErrInvalidPayload
}

// ValidatePayload checks the kind-specific required fields before an
// action may be recorded. Invalid proposals are never persisted.
func ValidatePayload(kind Kind, p Payload) error {
	switch kind {
	case KindCreateEvent:
		if strings.TrimSpace(p.Title) == "" {
			return &PayloadError{Field: "title", Reason: "must not be empty"}
		}
		if p.Start.IsZero() || p.End.IsZero() {
			return &PayloadError{Field: "start/end", Reason: "must both be set"}
		}
		if !p.Start.Before(p.End) {
			return &PayloadError{Field: "start", Reason: "must be before end"}
		}
	case KindUpdateEvent:
		if strings.TrimSpace(p.EventID) == "" {
			return &PayloadError{Field: "event_id", Reason: "must not be empty"}
		}
		if !p.Start.IsZero() || !p.End.IsZero() {
			if p.Start.IsZero() || p.End.IsZero() {
				return &PayloadError{Field: "start/end", Reason: "must both be set when rescheduling"}
			}
			if !p.Start.Before(p.End) {
				return &PayloadError{Field: "start", Reason: "must be before end"}
			}
		}
	case KindDeleteEvent:
		if strings.TrimSpace(p.EventID) == "" {
			return &PayloadError{Field: "event_id", Reason: "must not be empty"}
		}
	default:
		return &PayloadError{Field: "kind", Reason: "is not supported"}
	}
	return nil
}
