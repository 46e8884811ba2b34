package memory

import (
	"sync"

	"dayplan/internal/app/ports"
	"dayplan/internal/domain/action"
)

// Store backs the in-memory adapters used in tests and local runs. One
// mutex guards everything: transitions for the same action id serialize
// on it, which is the per-key atomicity the approval engine requires.
type Store struct {
	mu       sync.Mutex
	actions  map[string]action.PendingAction
	messages map[string][]ports.ConversationMessage
	users    map[string]ports.UserRecord
	profiles map[string]ports.ProfileRecord
	creds    map[string]ports.Credentials
}

func NewStore() *Store {
	return &Store{
		actions:  make(map[string]action.PendingAction),
		messages: make(map[string][]ports.ConversationMessage),
		users:    make(map[string]ports.UserRecord),
		profiles: make(map[string]ports.ProfileRecord),
		creds:    make(map[string]ports.Credentials),
	}
}
