package approval

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"dayplan/internal/app/ports"
	"dayplan/internal/domain/action"
	"dayplan/internal/domain/calendar"
)

var (
	ErrInvalidRequest = errors.New("invalid approval request")

	// Transition attempted on a non-pending action.
	ErrAlreadyResolved = errors.New("action already resolved")
	ErrExpired         = errors.New("action expired")

	// The action was approved but the provider write did not complete.
	ErrExecutionFailed = errors.New("action execution failed")
)

type FailureReason string

const (
	FailureAuthExpired FailureReason = "auth_expired"
	FailureTransient   FailureReason = "transient"
)

type ExecutionError struct {
	Reason FailureReason
	Cause  error
}

func (e *ExecutionError) Error() string {
	return ErrExecutionFailed.Error() + ": " + string(e.Reason)
}

func (e *ExecutionError) Unwrap() error {
	return ErrExecutionFailed
}

// UseCase is the sole authority over pending-action state transitions.
// All coordination is pushed into the repository's CompareAndTransition,
// so concurrent approve/reject/expire races settle with exactly one
// winner and no lock manager.
type UseCase struct {
	Actions  ports.ActionRepository
	Vault    ports.CredentialVault
	Calendar ports.CalendarGateway
	Metrics  ports.AssistantMetrics
	TTL      time.Duration
	Now      func() time.Time
}

type CreateRequest struct {
	OwnerID     string
	Kind        action.Kind
	Payload     action.Payload
	Description string
	// TTL overrides the engine default when positive.
	TTL time.Duration
}

type ExecutionResult struct {
	ActionID string
	Executed bool
	EventRef calendar.EventRef
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now().UTC()
	}
	return time.Now().UTC()
}

func (u UseCase) ttl(override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	if u.TTL > 0 {
		return u.TTL
	}
	return action.DefaultTTL
}

// Create validates the proposal and records it as pending. The returned
// id is opaque, URL-path safe, and stable once issued.
func (u UseCase) Create(ctx context.Context, req CreateRequest) (string, error) {
	if strings.TrimSpace(req.OwnerID) == "" || strings.TrimSpace(req.Description) == "" {
		return "", ErrInvalidRequest
	}
	if err := action.ValidatePayload(req.Kind, req.Payload); err != nil {
		return "", err
	}

	now := u.now()
	actionID, err := newActionID(now)
	if err != nil {
		return "", err
	}
	a := action.PendingAction{
		ActionID:    actionID,
		OwnerID:     req.OwnerID,
		Kind:        req.Kind,
		Payload:     req.Payload,
		Description: strings.TrimSpace(req.Description),
		State:       action.StatePending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(u.ttl(req.TTL)),
	}
	if err := u.Actions.Insert(ctx, a); err != nil {
		return "", err
	}
	if u.Metrics != nil {
		u.Metrics.RecordActionCreated(string(req.Kind))
	}
	return a.ActionID, nil
}

// Get loads an owner's action, applying lazy expiry first: a pending
// action past its deadline is transitioned before anyone observes it, so
// reads are themselves expiry-enforcing.
func (u UseCase) Get(ctx context.Context, ownerID, actionID string) (action.PendingAction, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(actionID) == "" {
		return action.PendingAction{}, ErrInvalidRequest
	}
	a, err := u.Actions.FindByID(ctx, ownerID, actionID)
	if err != nil {
		return action.PendingAction{}, err
	}
	return u.expireIfDue(ctx, a)
}

func (u UseCase) expireIfDue(ctx context.Context, a action.PendingAction) (action.PendingAction, error) {
	now := u.now()
	if !a.DueAt(now) {
		return a, nil
	}
	ok, err := u.Actions.CompareAndTransition(ctx, a.ActionID, action.StatePending, action.StateExpired, now)
	if err != nil {
		return action.PendingAction{}, err
	}
	if !ok {
		// Lost the race to a concurrent resolver; re-read the settled row.
		return u.Actions.FindByID(ctx, a.OwnerID, a.ActionID)
	}
	if u.Metrics != nil {
		u.Metrics.RecordActionResolved(string(action.StateExpired))
	}
	a.State = action.StateExpired
	resolvedAt := now
	a.ResolvedAt = &resolvedAt
	return a, nil
}

// Approve transitions the action to approved and then executes it against
// the calendar provider. The provider call happens after the transition
// and outside any store coordination: a failure leaves the action
// approved and is surfaced as ErrExecutionFailed for a human to
// re-attempt, never retried here.
func (u UseCase) Approve(ctx context.Context, ownerID, actionID string) (ExecutionResult, error) {
	a, err := u.resolve(ctx, ownerID, actionID, action.StateApproved)
	if err != nil {
		return ExecutionResult{}, err
	}

	creds, err := u.Vault.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ExecutionResult{}, u.executionFailure(FailureAuthExpired, err)
		}
		return ExecutionResult{}, u.executionFailure(FailureTransient, err)
	}
	ref, err := u.Calendar.Execute(ctx, a.Kind, a.Payload, creds)
	if err != nil {
		if errors.Is(err, ports.ErrAuthExpired) {
			return ExecutionResult{}, u.executionFailure(FailureAuthExpired, err)
		}
		return ExecutionResult{}, u.executionFailure(FailureTransient, err)
	}
	return ExecutionResult{ActionID: a.ActionID, Executed: true, EventRef: ref}, nil
}

// Reject transitions the action to rejected. No calendar side effect.
func (u UseCase) Reject(ctx context.Context, ownerID, actionID string) error {
	_, err := u.resolve(ctx, ownerID, actionID, action.StateRejected)
	if err != nil {
		return err
	}
	return nil
}

// resolve performs the terminal transition shared by Approve and Reject:
// lazy-expiring load, pending precondition, then the compare-and-set. A
// lost race reports the state that actually won.
func (u UseCase) resolve(ctx context.Context, ownerID, actionID string, to action.State) (action.PendingAction, error) {
	a, err := u.Get(ctx, ownerID, actionID)
	if err != nil {
		return action.PendingAction{}, err
	}
	if a.State != action.StatePending {
		return action.PendingAction{}, terminalStateErr(a.State)
	}

	now := u.now()
	ok, err := u.Actions.CompareAndTransition(ctx, a.ActionID, action.StatePending, to, now)
	if err != nil {
		return action.PendingAction{}, err
	}
	if !ok {
		settled, err := u.Actions.FindByID(ctx, ownerID, actionID)
		if err != nil {
			return action.PendingAction{}, err
		}
		return action.PendingAction{}, terminalStateErr(settled.State)
	}
	if u.Metrics != nil {
		u.Metrics.RecordActionResolved(string(to))
	}
	a.State = to
	resolvedAt := now
	a.ResolvedAt = &resolvedAt
	return a, nil
}

// ExpireDue transitions every pending action due at or before now across
// all owners. Idempotent: a second run with the same timestamp finds
// nothing left to transition.
func (u UseCase) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := u.Actions.FindPendingDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, a := range due {
		ok, err := u.Actions.CompareAndTransition(ctx, a.ActionID, action.StatePending, action.StateExpired, now)
		if err != nil {
			return count, err
		}
		if !ok {
			continue
		}
		count++
		if u.Metrics != nil {
			u.Metrics.RecordActionResolved(string(action.StateExpired))
		}
	}
	return count, nil
}

// ListPending returns the owner's actions still pending as of call time,
// oldest first, applying lazy expiry to each before inclusion.
func (u UseCase) ListPending(ctx context.Context, ownerID string) ([]action.PendingAction, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrInvalidRequest
	}
	rows, err := u.Actions.FindPending(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]action.PendingAction, 0, len(rows))
	for _, a := range rows {
		settled, err := u.expireIfDue(ctx, a)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if settled.State == action.StatePending {
			out = append(out, settled)
		}
	}
	return out, nil
}

func terminalStateErr(s action.State) error {
	if s == action.StateExpired {
		return ErrExpired
	}
	return ErrAlreadyResolved
}

func (u UseCase) executionFailure(reason FailureReason, cause error) error {
	if u.Metrics != nil {
		u.Metrics.RecordExecutionFailure()
	}
	return &ExecutionError{Reason: reason, Cause: cause}
}

// newActionID builds a time-ordered id with a random suffix, unique with
// overwhelming probability and without global coordination.
func newActionID(now time.Time) (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "act_" + now.UTC().Format("20060102T150405") + "_" + base64.RawURLEncoding.EncodeToString(b), nil
}
