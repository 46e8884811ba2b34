package agent

import (
	"context"
	"strings"
	"testing"

	"dayplan/internal/app/ports"
)

func TestProfileHandler_SetDisplayName(t *testing.T) {
	profiles := &stubProfiles{}
	h := ProfileHandler{Profiles: profiles, Now: fixedNow}

	resp, err := h.Handle(context.Background(), Request{UserID: "user-1", Message: "Please call me Alex."})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if profiles.saved == nil || profiles.saved.DisplayName != "Alex" {
		t.Fatalf("display name not saved: %+v", profiles.saved)
	}
	if !strings.Contains(resp.Message, "Alex") {
		t.Fatalf("response does not confirm the name: %q", resp.Message)
	}
	if profiles.saved.UserID != "user-1" {
		t.Fatalf("profile saved for %q", profiles.saved.UserID)
	}
}

func TestProfileHandler_SetTimezone(t *testing.T) {
	profiles := &stubProfiles{}
	h := ProfileHandler{Profiles: profiles, Now: fixedNow}

	if _, err := h.Handle(context.Background(), Request{UserID: "user-1", Message: "set my timezone to Europe/Berlin"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if profiles.saved == nil || profiles.saved.Timezone != "Europe/Berlin" {
		t.Fatalf("timezone not saved: %+v", profiles.saved)
	}
}

func TestProfileHandler_SetTimezone_RejectsUnknownZone(t *testing.T) {
	profiles := &stubProfiles{}
	h := ProfileHandler{Profiles: profiles, Now: fixedNow}

	resp, err := h.Handle(context.Background(), Request{UserID: "user-1", Message: "set my timezone to Narnia/Lantern"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if profiles.saved != nil {
		t.Fatalf("bogus timezone saved: %+v", profiles.saved)
	}
	if !strings.Contains(resp.Message, "Narnia/Lantern") {
		t.Fatalf("response does not name the rejected zone: %q", resp.Message)
	}
}

func TestProfileHandler_AddGoal(t *testing.T) {
	profiles := &stubProfiles{
		record: ports.ProfileRecord{UserID: "user-1", Goals: []string{"sleep more"}},
		found:  true,
	}
	h := ProfileHandler{Profiles: profiles, Now: fixedNow}

	if _, err := h.Handle(context.Background(), Request{UserID: "user-1", Message: "add goal: run twice a week"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if profiles.saved == nil || len(profiles.saved.Goals) != 2 {
		t.Fatalf("goal not appended: %+v", profiles.saved)
	}
	if profiles.saved.Goals[1] != "run twice a week" {
		t.Fatalf("goals=%v", profiles.saved.Goals)
	}
}

func TestProfileHandler_Summary(t *testing.T) {
	h := ProfileHandler{Profiles: &stubProfiles{
		record: ports.ProfileRecord{UserID: "user-1", DisplayName: "Alex", Timezone: "Europe/Berlin", Goals: []string{"run"}},
		found:  true,
	}, Now: fixedNow}

	resp, err := h.Handle(context.Background(), Request{UserID: "user-1", Message: "what do you know about me? show my profile"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	for _, want := range []string{"Alex", "Europe/Berlin", "run"} {
		if !strings.Contains(resp.Message, want) {
			t.Fatalf("summary missing %q: %q", want, resp.Message)
		}
	}

	empty := ProfileHandler{Profiles: &stubProfiles{}, Now: fixedNow}
	resp, err = empty.Handle(context.Background(), Request{UserID: "user-2", Message: "show my profile"})
	if err != nil {
		t.Fatalf("handle empty: %v", err)
	}
	if len(resp.Suggested) == 0 {
		t.Fatalf("empty profile should suggest next steps: %+v", resp)
	}
}

func TestTimezoneToken(t *testing.T) {
	if got := timezoneToken("set my timezone to America/New_York please"); got != "America/New_York" {
		t.Fatalf("got %q", got)
	}
	if got := timezoneToken("timezone please"); got != "" {
		t.Fatalf("got %q want empty", got)
	}
}
