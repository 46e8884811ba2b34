package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"dayplan/internal/app/ports"
	"dayplan/internal/domain/action"
	"dayplan/internal/domain/calendar"

	"golang.org/x/oauth2"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// Gateway talks to the Google Calendar REST API. Execute receives the
// owner's credentials from the caller; Events unseals them from the
// vault itself so handlers can stay credential-free.
type Gateway struct {
	Vault      ports.CredentialVault
	HTTPClient *http.Client
	BaseURL    string
	CalendarID string
}

type eventBody struct {
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       *eventTime `json:"start,omitempty"`
	End         *eventTime `json:"end,omitempty"`
}

type eventTime struct {
	DateTime string `json:"dateTime"`
}

type eventItem struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

func (g Gateway) Execute(ctx context.Context, kind action.Kind, payload action.Payload, creds ports.Credentials) (calendar.EventRef, error) {
	client, err := g.client(ctx, creds)
	if err != nil {
		return calendar.EventRef{}, err
	}

	switch kind {
	case action.KindCreateEvent:
		var created eventItem
		err := g.call(ctx, client, http.MethodPost, g.eventsURL(""), payload, &created)
		if err != nil {
			return calendar.EventRef{}, err
		}
		return calendar.EventRef{EventID: created.ID}, nil
	case action.KindUpdateEvent:
		var updated eventItem
		err := g.call(ctx, client, http.MethodPatch, g.eventsURL(payload.EventID), payload, &updated)
		if err != nil {
			return calendar.EventRef{}, err
		}
		return calendar.EventRef{EventID: updated.ID}, nil
	case action.KindDeleteEvent:
		if err := g.call(ctx, client, http.MethodDelete, g.eventsURL(payload.EventID), action.Payload{}, nil); err != nil {
			return calendar.EventRef{}, err
		}
		return calendar.EventRef{EventID: payload.EventID}, nil
	default:
		return calendar.EventRef{}, fmt.Errorf("%w: unsupported action kind %q", ports.ErrUpstream, kind)
	}
}

func (g Gateway) Events(ctx context.Context, ownerID string, from, to time.Time) ([]calendar.Event, error) {
	creds, err := g.Vault.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	client, err := g.client(ctx, creds)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("timeMin", from.UTC().Format(time.RFC3339))
	query.Set("timeMax", to.UTC().Format(time.RFC3339))
	query.Set("singleEvents", "true")
	query.Set("orderBy", "startTime")

	var listing struct {
		Items []eventItem `json:"items"`
	}
	if err := g.call(ctx, client, http.MethodGet, g.eventsURL("")+"?"+query.Encode(), action.Payload{}, &listing); err != nil {
		return nil, err
	}

	out := make([]calendar.Event, 0, len(listing.Items))
	for _, item := range listing.Items {
		start, startErr := time.Parse(time.RFC3339, item.Start.DateTime)
		end, endErr := time.Parse(time.RFC3339, item.End.DateTime)
		if startErr != nil || endErr != nil {
			// All-day events carry dates without times; skip them.
			continue
		}
		out = append(out, calendar.Event{
			ID:          item.ID,
			Title:       item.Summary,
			Start:       start,
			End:         end,
			Description: item.Description,
			Location:    item.Location,
		})
	}
	return out, nil
}

func (g Gateway) call(ctx context.Context, client *http.Client, method, target string, payload action.Payload, out any) error {
	var body io.Reader
	if method == http.MethodPost || method == http.MethodPatch {
		b, err := json.Marshal(eventBody{
			Summary:     payload.Title,
			Description: payload.Description,
			Location:    payload.Location,
			Start:       maybeTime(payload.Start),
			End:         maybeTime(payload.End),
		})
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ports.ErrAuthExpired
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: provider returned %d", ports.ErrUpstream, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ports.ErrUpstream, err)
	}
	return nil
}

// client wraps the base transport with the owner's bearer token. An
// unparsable credential blob is treated as expired authorization: the
// fix in both cases is re-linking the calendar.
func (g Gateway) client(ctx context.Context, creds ports.Credentials) (*http.Client, error) {
	var token oauth2.Token
	if err := json.Unmarshal(creds.Raw, &token); err != nil {
		return nil, ports.ErrAuthExpired
	}
	if g.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.HTTPClient)
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&token)), nil
}

func (g Gateway) eventsURL(eventID string) string {
	base := g.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	calendarID := g.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	u := base + "/calendars/" + url.PathEscape(calendarID) + "/events"
	if eventID != "" {
		u += "/" + url.PathEscape(eventID)
	}
	return u
}

func maybeTime(t time.Time) *eventTime {
	if t.IsZero() {
		return nil
	}
	return &eventTime{DateTime: t.UTC().Format(time.RFC3339)}
}
