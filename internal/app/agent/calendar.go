package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dayplan/internal/app/approval"
	"dayplan/internal/app/ports"
	"dayplan/internal/domain/action"
	"dayplan/internal/domain/calendar"
)

// Proposer is the slice of the approval engine handlers may touch:
// proposals only, never direct execution.
type Proposer interface {
	Create(ctx context.Context, req approval.CreateRequest) (string, error)
}

var calendarKeywords = []string{
	"calendar", "schedule", "meeting", "event", "appointment", "agenda",
	"reschedule", "cancel", "book", "availability", "free time", "invite",
}

// CalendarHandler grounds answers in the owner's calendar and turns
// mutation requests into pending actions awaiting approval.
type CalendarHandler struct {
	Approvals Proposer
	Calendar  ports.CalendarGateway
	Now       func() time.Time
}

func (h CalendarHandler) Name() string { return "calendar" }

func (h CalendarHandler) Claims(message string) bool {
	return containsAny(message, calendarKeywords)
}

func (h CalendarHandler) Handle(ctx context.Context, req Request) (Response, error) {
	switch {
	case containsAny(req.Message, []string{"cancel", "delete", "remove"}):
		return h.proposeCancel(ctx, req)
	case containsAny(req.Message, []string{"reschedule", "move", "push back"}):
		return h.proposeReschedule(ctx, req)
	case containsAny(req.Message, []string{"schedule", "book", "create", "set up", "add", "plan"}):
		return h.proposeCreate(ctx, req)
	default:
		return h.summarizeUpcoming(ctx, req)
	}
}

func (h CalendarHandler) proposeCreate(ctx context.Context, req Request) (Response, error) {
	title := firstQuoted(req.Message)
	times := parseTimes(req.Message)
	if title == "" || len(times) == 0 {
		return Response{
			Message: `To schedule something I need a quoted title and a start time, for example: schedule "Team sync" 2026-09-01T14:00:00Z to 2026-09-01T15:00:00Z.`,
			Suggested: []string{
				`schedule "Team sync" 2026-09-01T14:00:00Z to 2026-09-01T15:00:00Z`,
				"What's on my calendar this week?",
			},
		}, nil
	}
	start := times[0]
	end := start.Add(time.Hour)
	if len(times) > 1 {
		end = times[1]
	}

	warning := h.conflictWarning(ctx, req.UserID, start, end)
	description := fmt.Sprintf("Create %q from %s to %s", title,
		start.Format("2006-01-02 15:04"), end.Format("15:04"))
	actionID, err := h.Approvals.Create(ctx, approval.CreateRequest{
		OwnerID:     req.UserID,
		Kind:        action.KindCreateEvent,
		Payload:     action.Payload{Title: title, Start: start, End: end},
		Description: description,
	})
	if err != nil {
		if errors.Is(err, action.ErrInvalidPayload) {
			return Response{Message: "Those event details don't work: " + err.Error() + ". Mind double-checking the times?"}, nil
		}
		return Response{}, err
	}

	return Response{
		Message: fmt.Sprintf("I'd like to create %q from %s to %s.%s Approve or reject it when you're ready.",
			title, start.Format("2006-01-02 15:04"), end.Format("15:04"), warning),
		ProposedActionID: actionID,
		RequiresApproval: true,
	}, nil
}

func (h CalendarHandler) proposeCancel(ctx context.Context, req Request) (Response, error) {
	title := firstQuoted(req.Message)
	if title == "" {
		return Response{Message: `Which event should I cancel? Put its title in quotes, for example: cancel "Team sync".`}, nil
	}
	ev, ok := h.findEventByTitle(ctx, req.UserID, title)
	if !ok {
		return Response{Message: fmt.Sprintf("I couldn't find an upcoming event titled %q on your calendar.", title)}, nil
	}

	description := fmt.Sprintf("Cancel %q on %s", ev.Title, ev.Start.Format("2006-01-02 15:04"))
	actionID, err := h.Approvals.Create(ctx, approval.CreateRequest{
		OwnerID:     req.UserID,
		Kind:        action.KindDeleteEvent,
		Payload:     action.Payload{EventID: ev.ID, Title: ev.Title},
		Description: description,
	})
	if err != nil {
		return Response{}, err
	}
	return Response{
		Message:          fmt.Sprintf("I'd like to cancel %q on %s. Approve or reject it when you're ready.", ev.Title, ev.Start.Format("2006-01-02 15:04")),
		ProposedActionID: actionID,
		RequiresApproval: true,
	}, nil
}

func (h CalendarHandler) proposeReschedule(ctx context.Context, req Request) (Response, error) {
	title := firstQuoted(req.Message)
	times := parseTimes(req.Message)
	if title == "" || len(times) == 0 {
		return Response{Message: `To reschedule I need the event title in quotes and the new start time, for example: reschedule "Team sync" to 2026-09-02T10:00:00Z.`}, nil
	}
	ev, ok := h.findEventByTitle(ctx, req.UserID, title)
	if !ok {
		return Response{Message: fmt.Sprintf("I couldn't find an upcoming event titled %q on your calendar.", title)}, nil
	}
	start := times[0]
	end := start.Add(ev.End.Sub(ev.Start))
	if len(times) > 1 {
		end = times[1]
	}

	description := fmt.Sprintf("Move %q to %s", ev.Title, start.Format("2006-01-02 15:04"))
	actionID, err := h.Approvals.Create(ctx, approval.CreateRequest{
		OwnerID:     req.UserID,
		Kind:        action.KindUpdateEvent,
		Payload:     action.Payload{EventID: ev.ID, Title: ev.Title, Start: start, End: end},
		Description: description,
	})
	if err != nil {
		return Response{}, err
	}
	return Response{
		Message:          fmt.Sprintf("I'd like to move %q to %s. Approve or reject it when you're ready.", ev.Title, start.Format("2006-01-02 15:04")),
		ProposedActionID: actionID,
		RequiresApproval: true,
	}, nil
}

func (h CalendarHandler) summarizeUpcoming(ctx context.Context, req Request) (Response, error) {
	now := h.now()
	events, err := h.Calendar.Events(ctx, req.UserID, now, now.Add(7*24*time.Hour))
	if err != nil {
		if errors.Is(err, ports.ErrAuthExpired) || errors.Is(err, ports.ErrNotFound) {
			return Response{
				Message:   "Your calendar isn't connected yet, so I can't see your schedule. Link it and ask again.",
				Suggested: []string{"Connect your calendar", "Reflect on your week"},
			}, nil
		}
		return Response{Message: "I couldn't reach your calendar right now. Please try again in a moment."}, nil
	}
	if len(events) == 0 {
		return Response{
			Message:   "Nothing on your calendar for the next 7 days.",
			Suggested: []string{`schedule "Focus block" 2026-09-01T09:00:00Z to 2026-09-01T11:00:00Z`},
		}, nil
	}

	var b strings.Builder
	b.WriteString("Here's your next 7 days:\n")
	for i, ev := range events {
		if i == 5 {
			fmt.Fprintf(&b, "...and %d more.", len(events)-i)
			break
		}
		fmt.Fprintf(&b, "- %s on %s from %s to %s\n", ev.Title,
			ev.Start.Format("Mon Jan 2"), ev.Start.Format("15:04"), ev.End.Format("15:04"))
	}
	return Response{Message: strings.TrimRight(b.String(), "\n")}, nil
}

// conflictWarning is best effort: a gateway failure only drops the
// warning, never the proposal.
func (h CalendarHandler) conflictWarning(ctx context.Context, ownerID string, start, end time.Time) string {
	events, err := h.Calendar.Events(ctx, ownerID, start.Add(-24*time.Hour), end.Add(24*time.Hour))
	if err != nil {
		return ""
	}
	for _, ev := range events {
		if ev.Overlaps(start, end) {
			return fmt.Sprintf(" Warning: this overlaps %q at %s.", ev.Title, ev.Start.Format("15:04"))
		}
	}
	return ""
}

func (h CalendarHandler) findEventByTitle(ctx context.Context, ownerID, title string) (calendar.Event, bool) {
	now := h.now()
	events, err := h.Calendar.Events(ctx, ownerID, now, now.AddDate(0, 2, 0))
	if err != nil {
		return calendar.Event{}, false
	}
	for _, ev := range events {
		if strings.EqualFold(ev.Title, title) {
			return ev, true
		}
	}
	return calendar.Event{}, false
}

func (h CalendarHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

// firstQuoted returns the first double-quoted span in the message.
func firstQuoted(message string) string {
	open := strings.IndexByte(message, '"')
	if open < 0 {
		return ""
	}
	rest := message[open+1:]
	close := strings.IndexByte(rest, '"')
	if close < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:close])
}

// parseTimes collects up to two RFC 3339 timestamps from the message, in
// order of appearance.
func parseTimes(message string) []time.Time {
	var out []time.Time
	for _, tok := range strings.Fields(message) {
		tok = strings.Trim(tok, "().,;!?")
		ts, err := time.Parse(time.RFC3339, tok)
		if err != nil {
			continue
		}
		out = append(out, ts.UTC())
		if len(out) == 2 {
			break
		}
	}
	return out
}
