package ports

import (
	"context"
	"time"

	"dayplan/internal/domain/action"
)

// ActionRepository persists pending actions. All terminal transitions
// funnel through CompareAndTransition, which must be atomic per action id
// so that at most one resolution ever wins.
type ActionRepository interface {
	// Insert fails with ErrConflict when the action id already exists.
	Insert(ctx context.Context, a action.PendingAction) error

	// FindByID is scoped to the owner: an action owned by someone else is
	// ErrNotFound, indistinguishable from a truly absent one.
	FindByID(ctx context.Context, ownerID, actionID string) (action.PendingAction, error)

	// CompareAndTransition moves the action from one state to another and
	// records resolvedAt. It returns false without mutating anything when
	// the current state differs from expected.
	CompareAndTransition(ctx context.Context, actionID string, from, to action.State, resolvedAt time.Time) (bool, error)

	// FindPending returns the owner's pending actions ordered by creation
	// time ascending.
	FindPending(ctx context.Context, ownerID string) ([]action.PendingAction, error)

	// FindPendingDueBefore returns pending actions across all owners whose
	// deadline is at or before the cutoff. Used by the expiry sweeper.
	FindPendingDueBefore(ctx context.Context, cutoff time.Time) ([]action.PendingAction, error)
}

type ConversationMessage struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

// ConversationRepository is the append-only message log the router reads
// for continuity. Ownership of the log lives outside the approval core.
type ConversationRepository interface {
	Append(ctx context.Context, userID, role, content string) error
	// Recent returns at most limit messages, oldest first.
	Recent(ctx context.Context, userID string, limit int) ([]ConversationMessage, error)
}

type UserRecord struct {
	UserID    string
	Email     string
	CreatedAt time.Time
}

type UserRepository interface {
	Create(ctx context.Context, user UserRecord) error
	GetByID(ctx context.Context, userID string) (UserRecord, error)
	GetByEmail(ctx context.Context, email string) (UserRecord, error)
}

type ProfileRecord struct {
	UserID      string
	DisplayName string
	Timezone    string
	Goals       []string
	UpdatedAt   time.Time
}

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (ProfileRecord, error)
	Save(ctx context.Context, profile ProfileRecord) error
}
