package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/espalier/pkg/domain"
)

// LoadSnapshot reads and validates a snapshot file. The format follows the
// extension: .yaml/.yml parse as YAML, everything else as JSON. "-" reads
// JSON from stdin.
func LoadSnapshot(path string) (*domain.Snapshot, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snap domain.Snapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("parse YAML snapshot %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("parse JSON snapshot %s: %w", path, err)
		}
	}

	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// WriteSnapshot writes a snapshot as indented JSON.
func WriteSnapshot(w io.Writer, snap *domain.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
