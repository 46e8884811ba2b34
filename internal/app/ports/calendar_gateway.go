package ports

import (
	"context"
	"time"

	"dayplan/internal/domain/action"
	"dayplan/internal/domain/calendar"
)

// Credentials is the opaque provider payload stored by the vault. The
// approval core passes it through without ever inspecting it.
type Credentials struct {
	Raw []byte
}

// CalendarGateway executes approved mutations against the provider and
// serves read-only event queries for grounding agent responses. Execute
// fails with ErrAuthExpired or ErrUpstream.
type CalendarGateway interface {
	Execute(ctx context.Context, kind action.Kind, payload action.Payload, creds Credentials) (calendar.EventRef, error)
	Events(ctx context.Context, ownerID string, from, to time.Time) ([]calendar.Event, error)
}

// CredentialVault stores sealed provider credentials per owner. Get fails
// with ErrNotFound when the owner has no linked calendar.
type CredentialVault interface {
	Get(ctx context.Context, ownerID string) (Credentials, error)
	Put(ctx context.Context, ownerID string, creds Credentials) error
	Clear(ctx context.Context, ownerID string) error
}
