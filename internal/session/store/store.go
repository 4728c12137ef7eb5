// Package store persists the current session across console restarts.
package store

import (
	"context"
	"errors"

	sessiondomain "mallops-console/internal/session/domain"
)

// ErrStorageUnavailable is returned when the durable storage cannot be read
// or written (e.g. the storage directory is not accessible). The
// authentication service degrades to an always-anonymous state on it rather
// than failing the process.
var ErrStorageUnavailable = errors.New("session storage unavailable")

// Store persists at most one session. Load is a dumb getter: it performs no
// validation of its own; token and profile checks are the authentication
// service's responsibility. Save and Clear are last-writer-wins.
type Store interface {
	Save(ctx context.Context, s *sessiondomain.Session) error
	// Load returns the stored session, or (nil, nil) when none is stored.
	Load(ctx context.Context) (*sessiondomain.Session, error)
	// Clear removes any stored session. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
