package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSnapshotJSON(t *testing.T) {
	path := writeFile(t, "board.json", `{
		"sections": [
			{"id": "inbox", "title": "Inbox", "rows": [{"id": "a", "fields": {"label": "task"}}]}
		]
	}`)

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, snap.Sections, 1)
	assert.Equal(t, "inbox", snap.Sections[0].ID)
	require.Len(t, snap.Sections[0].Items, 1)
	assert.Equal(t, "task", snap.Sections[0].Items[0].Fields["label"])
}

func TestLoadSnapshotYAML(t *testing.T) {
	path := writeFile(t, "board.yaml", `
sections:
  - id: inbox
    title: Inbox
    rows:
      - id: a
        fields:
          label: task
  - id: done
    rows: []
`)

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, snap.Sections, 2)
	assert.Equal(t, "Inbox", snap.Sections[0].Title)
	assert.Equal(t, "task", snap.Sections[0].Items[0].Fields["label"])
	assert.Equal(t, "done", snap.Sections[1].ID)
}

func TestLoadSnapshotRejectsDuplicates(t *testing.T) {
	path := writeFile(t, "dup.json", `{"sections": [{"id": "x", "rows": []}, {"id": "x", "rows": []}]}`)

	_, err := LoadSnapshot(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
}

func TestLoadSnapshotRejectsMalformed(t *testing.T) {
	jsonPath := writeFile(t, "bad.json", `{nope`)
	_, err := LoadSnapshot(jsonPath)
	assert.Error(t, err)

	yamlPath := writeFile(t, "bad.yaml", "\t: not yaml")
	_, err = LoadSnapshot(yamlPath)
	assert.Error(t, err)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestWriteSnapshotRoundTrip(t *testing.T) {
	snap := &domain.Snapshot{Sections: []domain.SectionSnapshot{
		{ID: "inbox", Title: "Inbox", Items: []domain.RowSnapshot{{ID: "a"}}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, snap))

	var decoded domain.Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, snap.Sections[0].ID, decoded.Sections[0].ID)
}
