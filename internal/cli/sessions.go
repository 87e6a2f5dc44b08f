package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/screengraph/pkg/ports"
)

// ListSessions prints the IDs of the stored sessions.
func ListSessions(ctx context.Context, w io.Writer, store ports.SnapshotStore) error {
	sessions, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return nil
	}
	fmt.Fprintln(w, "Sessions:")
	for _, s := range sessions {
		fmt.Fprintln(w, "- "+s)
	}
	return nil
}

// InspectSession prints a stored snapshot as indented JSON.
func InspectSession(ctx context.Context, w io.Writer, store ports.SnapshotStore, sessionID string) error {
	snap, err := store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session '%s': %w", sessionID, err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveSessions deletes the given sessions, or every stored session when
// all is set. Every ID is attempted; the failures are joined.
func RemoveSessions(ctx context.Context, w io.Writer, store ports.SnapshotStore, ids []string, all bool) error {
	if all {
		stored, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		ids = stored
	}
	var errs []error
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove '%s': %w", id, err))
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}
