package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dayplan/internal/app/ports"
	"dayplan/internal/domain/action"
)

func pendingFixture(id, owner string, createdAt time.Time) action.PendingAction {
	return action.PendingAction{
		ActionID:  id,
		OwnerID:   owner,
		Kind:      action.KindCreateEvent,
		State:     action.StatePending,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(30 * time.Minute),
	}
}

func TestPendingActionRepo_InsertAndFind(t *testing.T) {
	repo := NewPendingActionRepo(NewStore())
	ctx := context.Background()
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	if err := repo.Insert(ctx, pendingFixture("act_1", "user-1", now)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(ctx, pendingFixture("act_1", "user-1", now)); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("duplicate insert: expected ErrConflict, got %v", err)
	}

	if _, err := repo.FindByID(ctx, "user-1", "act_1"); err != nil {
		t.Fatalf("find: %v", err)
	}
	if _, err := repo.FindByID(ctx, "user-2", "act_1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("cross-owner find: expected ErrNotFound, got %v", err)
	}
}

func TestPendingActionRepo_CompareAndTransition(t *testing.T) {
	repo := NewPendingActionRepo(NewStore())
	ctx := context.Background()
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	if err := repo.Insert(ctx, pendingFixture("act_1", "user-1", now)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ok, err := repo.CompareAndTransition(ctx, "act_1", action.StatePending, action.StateApproved, now)
	if err != nil || !ok {
		t.Fatalf("first transition: ok=%v err=%v", ok, err)
	}
	a, err := repo.FindByID(ctx, "user-1", "act_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if a.State != action.StateApproved || a.ResolvedAt == nil || !a.ResolvedAt.Equal(now) {
		t.Fatalf("transition not recorded: %+v", a)
	}

	ok, err = repo.CompareAndTransition(ctx, "act_1", action.StatePending, action.StateRejected, now)
	if err != nil || ok {
		t.Fatalf("stale transition must report no match: ok=%v err=%v", ok, err)
	}
	ok, err = repo.CompareAndTransition(ctx, "act_missing", action.StatePending, action.StateApproved, now)
	if err != nil || ok {
		t.Fatalf("missing id must report no match: ok=%v err=%v", ok, err)
	}
}

func TestPendingActionRepo_ConcurrentTransitions_SingleWinner(t *testing.T) {
	repo := NewPendingActionRepo(NewStore())
	ctx := context.Background()
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	if err := repo.Insert(ctx, pendingFixture("act_1", "user-1", now)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	const attempts = 32
	results := make([]bool, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			to := action.StateApproved
			if i%2 == 1 {
				to = action.StateRejected
			}
			ok, err := repo.CompareAndTransition(ctx, "act_1", action.StatePending, to, now)
			if err != nil {
				t.Errorf("transition: %v", err)
			}
			results[i] = ok
		}()
	}
	wg.Wait()

	winners := 0
	for _, ok := range results {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("winners=%d want exactly 1", winners)
	}
}

func TestPendingActionRepo_FindPendingDueBefore(t *testing.T) {
	repo := NewPendingActionRepo(NewStore())
	ctx := context.Background()
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	if err := repo.Insert(ctx, pendingFixture("act_due", "user-1", base.Add(-time.Hour))); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(ctx, pendingFixture("act_fresh", "user-1", base)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	resolved := pendingFixture("act_done", "user-2", base.Add(-time.Hour))
	resolved.State = action.StateApproved
	if err := repo.Insert(ctx, resolved); err != nil {
		t.Fatalf("insert: %v", err)
	}

	due, err := repo.FindPendingDueBefore(ctx, base)
	if err != nil {
		t.Fatalf("find due: %v", err)
	}
	if len(due) != 1 || due[0].ActionID != "act_due" {
		t.Fatalf("due=%+v want only act_due", due)
	}
}
