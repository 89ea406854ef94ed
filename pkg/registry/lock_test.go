package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
)

type nullStore struct{}

func (nullStore) Save(ctx context.Context, id string, snap *domain.Snapshot) error {
	return nil
}
func (nullStore) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	return nil, domain.ErrSnapshotNotFound
}
func (nullStore) Delete(ctx context.Context, id string) error { return nil }
func (nullStore) List(ctx context.Context) ([]string, error)  { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nullStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("collection-%d", i)
		_ = mgr.Save(ctx, id, &domain.Snapshot{})
		_ = mgr.Delete(ctx, id)
	}

	// Reference counting must drop entries as soon as nobody holds them.
	if leaked := len(mgr.locks); leaked != 0 {
		t.Errorf("%d lock entries remain in memory after all work finished", leaked)
	}
}
