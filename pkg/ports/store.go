package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// SnapshotStore defines the interface for persisting collection snapshots.
// It lets server deployments keep named collections alive across requests
// and replicas.
type SnapshotStore interface {
	// Save persists the snapshot under the given collection ID.
	Save(ctx context.Context, id string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given collection ID.
	// Returns domain.ErrSnapshotNotFound if the collection does not exist.
	Load(ctx context.Context, id string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given collection ID.
	Delete(ctx context.Context, id string) error

	// List returns the known collection IDs.
	List(ctx context.Context) ([]string, error)
}
