package agent

import (
	"context"
	"time"

	"dayplan/internal/app/approval"
	"dayplan/internal/app/ports"
	"dayplan/internal/domain/action"
	"dayplan/internal/domain/calendar"
)

// Shared stubs for the handler chain.

type stubProposer struct {
	created  []approval.CreateRequest
	actionID string
	err      error
}

var _ Proposer = (*stubProposer)(nil)

func (p *stubProposer) Create(_ context.Context, req approval.CreateRequest) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.created = append(p.created, req)
	if p.actionID == "" {
		return "act_test", nil
	}
	return p.actionID, nil
}

type stubEventsGateway struct {
	events []calendar.Event
	err    error
}

var _ ports.CalendarGateway = stubEventsGateway{}

func (g stubEventsGateway) Execute(context.Context, action.Kind, action.Payload, ports.Credentials) (calendar.EventRef, error) {
	return calendar.EventRef{}, nil
}

func (g stubEventsGateway) Events(context.Context, string, time.Time, time.Time) ([]calendar.Event, error) {
	return g.events, g.err
}

type stubConversations struct {
	messages []ports.ConversationMessage
}

var _ ports.ConversationRepository = stubConversations{}

func (stubConversations) Append(context.Context, string, string, string) error { return nil }

func (s stubConversations) Recent(context.Context, string, int) ([]ports.ConversationMessage, error) {
	return s.messages, nil
}

type stubProfiles struct {
	record ports.ProfileRecord
	found  bool
	saved  *ports.ProfileRecord
}

var _ ports.ProfileRepository = (*stubProfiles)(nil)

func (s *stubProfiles) Get(context.Context, string) (ports.ProfileRecord, error) {
	if !s.found {
		return ports.ProfileRecord{}, ports.ErrNotFound
	}
	return s.record, nil
}

func (s *stubProfiles) Save(_ context.Context, profile ports.ProfileRecord) error {
	s.saved = &profile
	s.record = profile
	s.found = true
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
}
