package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dayplan/internal/app/ports"
)

var reflectionKeywords = []string{
	"reflect", "journal", "insight", "looking back", "how was my",
	"review my", "takeaway",
}

// ReflectionHandler summarizes recent activity so the user can look back
// on it. Read-only: it never proposes actions.
type ReflectionHandler struct {
	Calendar      ports.CalendarGateway
	Conversations ports.ConversationRepository
	Now           func() time.Time
}

func (h ReflectionHandler) Name() string { return "reflection" }

func (h ReflectionHandler) Claims(message string) bool {
	return containsAny(message, reflectionKeywords)
}

func (h ReflectionHandler) Handle(ctx context.Context, req Request) (Response, error) {
	days := reflectionWindowDays(req.Message)
	now := h.now()
	from := now.AddDate(0, 0, -days)

	attended := 0
	if events, err := h.Calendar.Events(ctx, req.UserID, from, now); err == nil {
		attended = len(events)
	}

	shared := 0
	if msgs, err := h.Conversations.Recent(ctx, req.UserID, 200); err == nil {
		for _, m := range msgs {
			if m.Role == "user" && m.CreatedAt.After(from) {
				shared++
			}
		}
	}

	period := fmt.Sprintf("past %d days", days)
	if days == 1 {
		period = "past day"
	}
	if attended == 0 && shared == 0 {
		return Response{
			Message:   fmt.Sprintf("I don't have any activity from the %s to reflect on yet. How did it go for you?", period),
			Suggested: []string{"Tell me about your day", "What's on my calendar this week?"},
		}, nil
	}

	return Response{
		Message: fmt.Sprintf(
			"Over the %s you attended %d calendar events and shared %d messages with me. What stood out? Which of those activities brought you the most value, and is there anything you'd schedule differently?",
			period, attended, shared),
		Suggested: []string{
			"Block focus time for what mattered most",
			"Set a goal for next week",
		},
	}, nil
}

func (h ReflectionHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func reflectionWindowDays(message string) int {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "today"), strings.Contains(lower, "my day"):
		return 1
	case strings.Contains(lower, "month"):
		return 30
	default:
		return 7
	}
}
