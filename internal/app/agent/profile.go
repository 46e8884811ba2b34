package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dayplan/internal/app/ports"
)

var profileKeywords = []string{
	"profile", "call me", "my name", "timezone", "time zone", "my goals",
	"add goal", "about me",
}

// ProfileHandler reads and updates the stored user profile. Mutations
// here are local preferences, not calendar writes, so they do not go
// through the approval gate.
type ProfileHandler struct {
	Profiles ports.ProfileRepository
	Now      func() time.Time
}

func (h ProfileHandler) Name() string { return "profile" }

func (h ProfileHandler) Claims(message string) bool {
	return containsAny(message, profileKeywords)
}

func (h ProfileHandler) Handle(ctx context.Context, req Request) (Response, error) {
	lower := strings.ToLower(req.Message)
	switch {
	case strings.Contains(lower, "call me"):
		return h.setDisplayName(ctx, req)
	case strings.Contains(lower, "timezone"), strings.Contains(lower, "time zone"):
		return h.setTimezone(ctx, req)
	case strings.Contains(lower, "add goal"):
		return h.addGoal(ctx, req)
	default:
		return h.summary(ctx, req)
	}
}

func (h ProfileHandler) setDisplayName(ctx context.Context, req Request) (Response, error) {
	name := strings.Trim(textAfter(req.Message, "call me"), " .,!?\"")
	if name == "" {
		return Response{Message: "What should I call you?"}, nil
	}
	profile, err := h.loadOrInit(ctx, req.UserID)
	if err != nil {
		return Response{}, err
	}
	profile.DisplayName = name
	profile.UpdatedAt = h.now()
	if err := h.Profiles.Save(ctx, profile); err != nil {
		return Response{}, err
	}
	return Response{Message: fmt.Sprintf("Got it, I'll call you %s.", name)}, nil
}

func (h ProfileHandler) setTimezone(ctx context.Context, req Request) (Response, error) {
	name := timezoneToken(req.Message)
	if name == "" {
		return Response{Message: "Which timezone should I use? Something like Europe/Berlin or America/New_York."}, nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return Response{Message: fmt.Sprintf("I don't recognize %q as a timezone. Try an IANA name like Europe/Berlin.", name)}, nil
	}
	profile, err := h.loadOrInit(ctx, req.UserID)
	if err != nil {
		return Response{}, err
	}
	profile.Timezone = name
	profile.UpdatedAt = h.now()
	if err := h.Profiles.Save(ctx, profile); err != nil {
		return Response{}, err
	}
	return Response{Message: fmt.Sprintf("Timezone set to %s.", name)}, nil
}

func (h ProfileHandler) addGoal(ctx context.Context, req Request) (Response, error) {
	goal := strings.Trim(textAfter(req.Message, "add goal"), " :.,!?\"")
	if goal == "" {
		return Response{Message: `What's the goal? For example: add goal: run twice a week.`}, nil
	}
	profile, err := h.loadOrInit(ctx, req.UserID)
	if err != nil {
		return Response{}, err
	}
	profile.Goals = append(profile.Goals, goal)
	profile.UpdatedAt = h.now()
	if err := h.Profiles.Save(ctx, profile); err != nil {
		return Response{}, err
	}
	return Response{Message: fmt.Sprintf("Added to your goals: %s. You now have %d.", goal, len(profile.Goals))}, nil
}

func (h ProfileHandler) summary(ctx context.Context, req Request) (Response, error) {
	profile, err := h.Profiles.Get(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return Response{
				Message:   "You haven't told me about yourself yet. I can remember your name, timezone, and goals.",
				Suggested: []string{"Call me Alex", "Set my timezone to Europe/Berlin", "add goal: run twice a week"},
			}, nil
		}
		return Response{}, err
	}

	var parts []string
	if profile.DisplayName != "" {
		parts = append(parts, "I call you "+profile.DisplayName)
	}
	if profile.Timezone != "" {
		parts = append(parts, "your timezone is "+profile.Timezone)
	}
	if len(profile.Goals) > 0 {
		parts = append(parts, fmt.Sprintf("you're tracking %d goals: %s", len(profile.Goals), strings.Join(profile.Goals, "; ")))
	}
	if len(parts) == 0 {
		return Response{Message: "Your profile is empty so far. I can remember your name, timezone, and goals."}, nil
	}
	return Response{Message: "Here's what I know: " + strings.Join(parts, ", ") + "."}, nil
}

func (h ProfileHandler) loadOrInit(ctx context.Context, userID string) (ports.ProfileRecord, error) {
	profile, err := h.Profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ports.ProfileRecord{UserID: userID}, nil
		}
		return ports.ProfileRecord{}, err
	}
	return profile, nil
}

func (h ProfileHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

// textAfter returns everything following the first case-insensitive
// occurrence of marker.
func textAfter(message, marker string) string {
	idx := strings.Index(strings.ToLower(message), marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(message[idx+len(marker):])
}

// timezoneToken picks the first token that looks like an IANA zone name.
func timezoneToken(message string) string {
	for _, tok := range strings.Fields(message) {
		tok = strings.Trim(tok, ".,;!?\"")
		if strings.Count(tok, "/") >= 1 && !strings.HasPrefix(tok, "/") {
			return tok
		}
	}
	return ""
}
