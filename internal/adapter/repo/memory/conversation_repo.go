package memory

import (
	"context"
	"time"

	"dayplan/internal/app/ports"
)

type ConversationRepo struct {
	store *Store
}

func NewConversationRepo(store *Store) ConversationRepo {
	return ConversationRepo{store: store}
}

func (r ConversationRepo) Append(_ context.Context, userID, role, content string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.messages[userID] = append(r.store.messages[userID], ports.ConversationMessage{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (r ConversationRepo) Recent(_ context.Context, userID string, limit int) ([]ports.ConversationMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	msgs := r.store.messages[userID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]ports.ConversationMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
