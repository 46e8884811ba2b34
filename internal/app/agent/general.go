package agent

import (
	"context"
	"time"

	"dayplan/internal/app/ports"
)

// GeneralHandler is the fallback: it claims every message, so routing is
// a total function.
type GeneralHandler struct{}

func (GeneralHandler) Name() string { return "general" }

func (GeneralHandler) Claims(string) bool { return true }

func (GeneralHandler) Handle(_ context.Context, _ Request) (Response, error) {
	return Response{
		Message: "I can help with your schedule, reflect on your week, or remember things about you. What would you like to do?",
		Suggested: []string{
			"What's on my calendar this week?",
			`schedule "Team sync" 2026-09-01T14:00:00Z to 2026-09-01T15:00:00Z`,
			"Reflect on my week",
		},
	}, nil
}

// DefaultHandlers wires the standard handler chain in routing order. The
// general fallback must stay last.
func DefaultHandlers(approvals Proposer, gateway ports.CalendarGateway, conversations ports.ConversationRepository, profiles ports.ProfileRepository, now func() time.Time) []Handler {
	return []Handler{
		CalendarHandler{Approvals: approvals, Calendar: gateway, Now: now},
		ReflectionHandler{Calendar: gateway, Conversations: conversations, Now: now},
		ProfileHandler{Profiles: profiles, Now: now},
		GeneralHandler{},
	}
}
