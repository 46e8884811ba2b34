package ports

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Calendar provider failures. ErrAuthExpired means the stored
	// credentials were refused and the owner must re-link the calendar;
	// ErrUpstream covers transient provider trouble.
	ErrAuthExpired = errors.New("calendar authorization expired")
	ErrUpstream    = errors.New("calendar provider failure")
)
