package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"dayplan/internal/app/ports"
	"dayplan/internal/domain/action"
	"dayplan/internal/domain/calendar"

	"github.com/google/uuid"
)

// Gateway is an in-memory calendar, used in tests and as the local-dev
// provider when no Google credentials are configured. The opaque
// credential payload is simply the owner id.
type Gateway struct {
	mu     sync.Mutex
	events map[string][]calendar.Event
}

func NewGateway() *Gateway {
	return &Gateway{events: make(map[string][]calendar.Event)}
}

// Credentials returns the opaque payload the mock accepts for an owner.
func Credentials(ownerID string) ports.Credentials {
	return ports.Credentials{Raw: []byte(ownerID)}
}

// Seed places an event on an owner's calendar, generating an id when the
// event has none.
func (g *Gateway) Seed(ownerID string, ev calendar.Event) calendar.Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	g.events[ownerID] = append(g.events[ownerID], ev)
	return ev
}

func (g *Gateway) Execute(_ context.Context, kind action.Kind, payload action.Payload, creds ports.Credentials) (calendar.EventRef, error) {
	ownerID := string(creds.Raw)
	if ownerID == "" {
		return calendar.EventRef{}, ports.ErrAuthExpired
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch kind {
	case action.KindCreateEvent:
		ev := calendar.Event{
			ID:          uuid.NewString(),
			Title:       payload.Title,
			Start:       payload.Start,
			End:         payload.End,
			Description: payload.Description,
			Location:    payload.Location,
		}
		g.events[ownerID] = append(g.events[ownerID], ev)
		return calendar.EventRef{EventID: ev.ID}, nil
	case action.KindUpdateEvent:
		for i, ev := range g.events[ownerID] {
			if ev.ID != payload.EventID {
				continue
			}
			if payload.Title != "" {
				ev.Title = payload.Title
			}
			if !payload.Start.IsZero() {
				ev.Start = payload.Start
				ev.End = payload.End
			}
			g.events[ownerID][i] = ev
			return calendar.EventRef{EventID: ev.ID}, nil
		}
		return calendar.EventRef{}, fmt.Errorf("%w: event %q not found", ports.ErrUpstream, payload.EventID)
	case action.KindDeleteEvent:
		events := g.events[ownerID]
		for i, ev := range events {
			if ev.ID != payload.EventID {
				continue
			}
			g.events[ownerID] = append(events[:i:i], events[i+1:]...)
			return calendar.EventRef{EventID: ev.ID}, nil
		}
		return calendar.EventRef{}, fmt.Errorf("%w: event %q not found", ports.ErrUpstream, payload.EventID)
	default:
		return calendar.EventRef{}, fmt.Errorf("%w: unsupported action kind %q", ports.ErrUpstream, kind)
	}
}

func (g *Gateway) Events(_ context.Context, ownerID string, from, to time.Time) ([]calendar.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []calendar.Event
	for _, ev := range g.events[ownerID] {
		if ev.Overlaps(from, to) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}
