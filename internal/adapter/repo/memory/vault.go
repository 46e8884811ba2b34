package memory

import (
	"context"

	"dayplan/internal/app/ports"
)

// Vault stores credentials unsealed; only for tests and local runs.
type Vault struct {
	store *Store
}

func NewVault(store *Store) Vault {
	return Vault{store: store}
}

func (v Vault) Get(_ context.Context, ownerID string) (ports.Credentials, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	creds, ok := v.store.creds[ownerID]
	if !ok {
		return ports.Credentials{}, ports.ErrNotFound
	}
	return creds, nil
}

func (v Vault) Put(_ context.Context, ownerID string, creds ports.Credentials) error {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	v.store.creds[ownerID] = creds
	return nil
}

func (v Vault) Clear(_ context.Context, ownerID string) error {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	delete(v.store.creds, ownerID)
	return nil
}
