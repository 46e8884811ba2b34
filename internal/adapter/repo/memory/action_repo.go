package memory

import (
	"context"
	"sort"
	"time"

	"dayplan/internal/app/ports"
	"dayplan/internal/domain/action"
)

type PendingActionRepo struct {
	store *Store
}

func NewPendingActionRepo(store *Store) PendingActionRepo {
	return PendingActionRepo{store: store}
}

func (r PendingActionRepo) Insert(_ context.Context, a action.PendingAction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.actions[a.ActionID]; exists {
		return ports.ErrConflict
	}
	r.store.actions[a.ActionID] = a
	return nil
}

func (r PendingActionRepo) FindByID(_ context.Context, ownerID, actionID string) (action.PendingAction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.actions[actionID]
	if !ok || a.OwnerID != ownerID {
		return action.PendingAction{}, ports.ErrNotFound
	}
	return a, nil
}

func (r PendingActionRepo) CompareAndTransition(_ context.Context, actionID string, from, to action.State, resolvedAt time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.actions[actionID]
	if !ok || a.State != from {
		return false, nil
	}
	a.State = to
	a.ResolvedAt = &resolvedAt
	r.store.actions[actionID] = a
	return true, nil
}

func (r PendingActionRepo) FindPending(_ context.Context, ownerID string) ([]action.PendingAction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []action.PendingAction
	for _, a := range r.store.actions {
		if a.OwnerID == ownerID && a.State == action.StatePending {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r PendingActionRepo) FindPendingDueBefore(_ context.Context, cutoff time.Time) ([]action.PendingAction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []action.PendingAction
	for _, a := range r.store.actions {
		if a.State == action.StatePending && !a.ExpiresAt.After(cutoff) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}
