package ports

import (
	"context"

	"github.com/aretw0/screengraph/pkg/domain"
)

// SnapshotStore persists navigator sessions so a test run can be resumed by
// another process or replica.
type SnapshotStore interface {
	// Save persists the snapshot under sessionID, replacing any previous one.
	Save(ctx context.Context, sessionID string, snap domain.Snapshot) error

	// Load retrieves a snapshot. It returns domain.ErrSessionNotFound when
	// nothing is stored under sessionID.
	Load(ctx context.Context, sessionID string) (domain.Snapshot, error)

	// Delete removes a snapshot. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
