package gormrepo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"dayplan/internal/app/ports"
	"dayplan/internal/domain/action"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("DAYPLAN_DB_DSN")
	if dsn == "" {
		t.Skip("DAYPLAN_DB_DSN is required for integration test")
	}
	return dsn
}

func TestPendingActionRepo_LifecycleRoundTrip(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := ApplyMigrations(context.Background(), db, "../../../../migrations"); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	ctx := context.Background()
	ownerID := "it-owner-lifecycle"
	_ = db.Exec("DELETE FROM pending_actions WHERE owner_id = ?", ownerID).Error

	repo := NewPendingActionRepo(db)
	now := time.Now().UTC().Truncate(time.Microsecond)
	start := now.Add(24 * time.Hour)
	a := action.PendingAction{
		ActionID:    "it_act_1",
		OwnerID:     ownerID,
		Kind:        action.KindCreateEvent,
		Payload:     action.Payload{Title: "it event", Start: start, End: start.Add(time.Hour)},
		Description: "integration fixture",
		State:       action.StatePending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(30 * time.Minute),
	}
	_ = db.Exec("DELETE FROM pending_actions WHERE action_id = ?", a.ActionID).Error

	if err := repo.Insert(ctx, a); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(ctx, a); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("duplicate insert: expected ErrConflict, got %v", err)
	}

	got, err := repo.FindByID(ctx, ownerID, a.ActionID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.State != action.StatePending || got.Payload.Title != "it event" {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if _, err := repo.FindByID(ctx, "someone-else", a.ActionID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("cross-owner find: expected ErrNotFound, got %v", err)
	}

	ok, err := repo.CompareAndTransition(ctx, a.ActionID, action.StatePending, action.StateApproved, now)
	if err != nil || !ok {
		t.Fatalf("transition: ok=%v err=%v", ok, err)
	}
	ok, err = repo.CompareAndTransition(ctx, a.ActionID, action.StatePending, action.StateRejected, now)
	if err != nil || ok {
		t.Fatalf("stale transition: ok=%v err=%v", ok, err)
	}

	got, err = repo.FindByID(ctx, ownerID, a.ActionID)
	if err != nil {
		t.Fatalf("find after transition: %v", err)
	}
	if got.State != action.StateApproved || got.ResolvedAt == nil {
		t.Fatalf("transition not persisted: %+v", got)
	}
}

func TestPendingActionRepo_FindPendingDueBefore_Postgres(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := ApplyMigrations(context.Background(), db, "../../../../migrations"); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	ctx := context.Background()
	ownerID := "it-owner-due"
	_ = db.Exec("DELETE FROM pending_actions WHERE owner_id = ?", ownerID).Error

	repo := NewPendingActionRepo(db)
	now := time.Now().UTC().Truncate(time.Microsecond)
	start := now.Add(24 * time.Hour)
	mk := func(id string, expiresAt time.Time) action.PendingAction {
		return action.PendingAction{
			ActionID:    id,
			OwnerID:     ownerID,
			Kind:        action.KindCreateEvent,
			Payload:     action.Payload{Title: "due fixture", Start: start, End: start.Add(time.Hour)},
			Description: "due fixture",
			State:       action.StatePending,
			CreatedAt:   now.Add(-time.Hour),
			ExpiresAt:   expiresAt,
		}
	}
	for _, a := range []action.PendingAction{
		mk("it_act_due", now.Add(-time.Minute)),
		mk("it_act_fresh", now.Add(time.Hour)),
	} {
		_ = db.Exec("DELETE FROM pending_actions WHERE action_id = ?", a.ActionID).Error
		if err := repo.Insert(ctx, a); err != nil {
			t.Fatalf("insert %s: %v", a.ActionID, err)
		}
	}

	due, err := repo.FindPendingDueBefore(ctx, now)
	if err != nil {
		t.Fatalf("find due: %v", err)
	}
	found := false
	for _, a := range due {
		if a.ActionID == "it_act_fresh" {
			t.Fatalf("undue action returned: %+v", a)
		}
		if a.ActionID == "it_act_due" {
			found = true
		}
	}
	if !found {
		t.Fatal("due action not returned")
	}
}

func TestUserAndProfileRepo_Postgres(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := ApplyMigrations(context.Background(), db, "../../../../migrations"); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	ctx := context.Background()
	userID := "it-usr-1"
	email := "it-usr-1@example.com"
	_ = db.Exec("DELETE FROM user_profiles WHERE user_id = ?", userID).Error
	_ = db.Exec("DELETE FROM users WHERE user_id = ?", userID).Error

	users := NewUserRepo(db)
	now := time.Now().UTC().Truncate(time.Microsecond)
	if err := users.Create(ctx, ports.UserRecord{UserID: userID, Email: email, CreatedAt: now}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := users.Create(ctx, ports.UserRecord{UserID: "it-usr-dup", Email: email, CreatedAt: now}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("duplicate email: expected ErrConflict, got %v", err)
	}
	got, err := users.GetByEmail(ctx, email)
	if err != nil || got.UserID != userID {
		t.Fatalf("get by email: %+v %v", got, err)
	}

	profiles := NewProfileRepo(db)
	if err := profiles.Save(ctx, ports.ProfileRecord{UserID: userID, DisplayName: "It", Goals: []string{"a"}, UpdatedAt: now}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if err := profiles.Save(ctx, ports.ProfileRecord{UserID: userID, DisplayName: "It2", Goals: []string{"a", "b"}, UpdatedAt: now}); err != nil {
		t.Fatalf("upsert profile: %v", err)
	}
	profile, err := profiles.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.DisplayName != "It2" || len(profile.Goals) != 2 {
		t.Fatalf("upsert not applied: %+v", profile)
	}
}
