package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a
// SnapshotStore implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	id := "contract-test-collection-" + time.Now().Format("20060102150405")

	snap := &domain.Snapshot{
		Sections: []domain.SectionSnapshot{
			{
				ID:    "inbox",
				Title: "Inbox",
				Items: []domain.RowSnapshot{
					{ID: "a", Fields: map[string]any{"text": "first"}},
					{ID: "b", Fields: map[string]any{"text": "second"}},
				},
			},
			{ID: "archive", Items: []domain.RowSnapshot{{ID: "c"}}},
		},
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, id, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded.Sections, 2)
		assert.Equal(t, snap.SectionKeys(), loaded.SectionKeys())
		assert.Equal(t, []string{"a", "b"}, loaded.Sections[0].RowKeys())
		assert.Equal(t, "Inbox", loaded.Sections[0].Title)
		// JSON persistence is allowed to widen numeric field types, so only
		// presence is asserted for free-form fields.
		assert.NotNil(t, loaded.Sections[0].Items[0].Fields["text"])
	})

	t.Run("Load Does Not Alias", func(t *testing.T) {
		first, err := store.Load(ctx, id)
		require.NoError(t, err)
		first.Sections[0].ID = "mutated"

		second, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "inbox", second.Sections[0].ID, "stores must hand out copies")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, id, snap)
		require.NoError(t, err)

		err = store.Delete(ctx, id)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		_ = store.Save(ctx, id1, snap)
		_ = store.Save(ctx, id2, snap)

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
