package memory

import (
	"context"

	"dayplan/internal/app/ports"
)

type UserRepo struct {
	store *Store
}

func NewUserRepo(store *Store) UserRepo {
	return UserRepo{store: store}
}

func (r UserRepo) Create(_ context.Context, user ports.UserRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.users[user.UserID]; exists {
		return ports.ErrConflict
	}
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return ports.ErrConflict
		}
	}
	r.store.users[user.UserID] = user
	return nil
}

func (r UserRepo) GetByID(_ context.Context, userID string) (ports.UserRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[userID]
	if !ok {
		return ports.UserRecord{}, ports.ErrNotFound
	}
	return user, nil
}

func (r UserRepo) GetByEmail(_ context.Context, email string) (ports.UserRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return ports.UserRecord{}, ports.ErrNotFound
}

type ProfileRepo struct {
	store *Store
}

func NewProfileRepo(store *Store) ProfileRepo {
	return ProfileRepo{store: store}
}

func (r ProfileRepo) Get(_ context.Context, userID string) (ports.ProfileRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	profile, ok := r.store.profiles[userID]
	if !ok {
		return ports.ProfileRecord{}, ports.ErrNotFound
	}
	return profile, nil
}

func (r ProfileRepo) Save(_ context.Context, profile ports.ProfileRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.profiles[profile.UserID] = profile
	return nil
}
