package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Snapshot is a serializable description of one sectioned collection. It is
// the concrete document the stores persist, the servers exchange, and the
// CLI reads from YAML or JSON files. SectionSnapshot and RowSnapshot satisfy
// the identity constraints, so a snapshot can be reconciled directly.
type Snapshot struct {
	Sections []SectionSnapshot `json:"sections" yaml:"sections"`
}

// SectionSnapshot is one section of a snapshot. ID is the stable key.
type SectionSnapshot struct {
	ID    string        `json:"id" yaml:"id"`
	Title string        `json:"title,omitempty" yaml:"title,omitempty"`
	Items []RowSnapshot `json:"rows" yaml:"rows"`
}

// RowSnapshot is one row of a snapshot. ID is the stable key; Fields carries
// free-form content that travels with the row but is opaque to the engine.
type RowSnapshot struct {
	ID     string         `json:"id" yaml:"id"`
	Fields map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Key returns the section's stable identity.
func (s SectionSnapshot) Key() string { return s.ID }

// Rows returns the section's ordered rows.
func (s SectionSnapshot) Rows() []RowSnapshot { return s.Items }

// WithRows returns a copy of the section with its row sequence replaced.
func (s SectionSnapshot) WithRows(rows []RowSnapshot) SectionSnapshot {
	s.Items = rows
	return s
}

// Key returns the row's stable identity.
func (r RowSnapshot) Key() string { return r.ID }

// DecodeFields decodes the row's free-form fields into a caller-defined
// struct using mapstructure tags.
func (r RowSnapshot) DecodeFields(out any) error {
	return mapstructure.Decode(r.Fields, out)
}

// SectionKeys returns the snapshot's section IDs in order.
func (s *Snapshot) SectionKeys() []string {
	keys := make([]string, len(s.Sections))
	for i, sec := range s.Sections {
		keys[i] = sec.ID
	}
	return keys
}

// RowKeys returns the section's row IDs in order.
func (s SectionSnapshot) RowKeys() []string {
	keys := make([]string, len(s.Items))
	for i, r := range s.Items {
		keys[i] = r.ID
	}
	return keys
}

// RowCount returns the total number of rows across all sections.
func (s *Snapshot) RowCount() int {
	n := 0
	for _, sec := range s.Sections {
		n += len(sec.Items)
	}
	return n
}

// Validate checks the identity invariants the reconciler relies on: no empty
// IDs, no duplicate section IDs, no duplicate row IDs within one section.
// All findings are joined into the returned error.
func (s *Snapshot) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(s.Sections))
	for i, sec := range s.Sections {
		if sec.ID == "" {
			errs = append(errs, fmt.Errorf("section %d: empty id", i))
		} else if seen[sec.ID] {
			errs = append(errs, &KeyConflictError{Scope: "sections", Key: sec.ID})
		}
		seen[sec.ID] = true

		rowSeen := make(map[string]bool, len(sec.Items))
		for j, row := range sec.Items {
			if row.ID == "" {
				errs = append(errs, fmt.Errorf("section %q row %d: empty id", sec.ID, j))
			} else if rowSeen[row.ID] {
				errs = append(errs, &KeyConflictError{Scope: fmt.Sprintf("section %q", sec.ID), Key: row.ID})
			}
			rowSeen[row.ID] = true
		}
	}
	return errors.Join(errs...)
}

// SectionContentEqual reports whether two sections carry the same own
// content, rows aside. Used as the section comparator for content sync.
func SectionContentEqual(a, b SectionSnapshot) bool {
	return a.Title == b.Title
}

// RowContentEqual reports whether two rows carry the same free-form fields.
// Fields that differ only in JSON-indistinguishable ways (int 3 in memory,
// float64 3 after a store round trip) compare equal, so reconciling against
// a persisted snapshot converges instead of rewriting rows on every pass.
func RowContentEqual(a, b RowSnapshot) bool {
	if len(a.Fields) == 0 && len(b.Fields) == 0 {
		return true
	}
	if reflect.DeepEqual(a.Fields, b.Fields) {
		return true
	}
	aj, errA := json.Marshal(a.Fields)
	bj, errB := json.Marshal(b.Fields)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}

// Clone returns a deep copy. Row field maps are copied one level deep, which
// is enough to isolate store reads from later caller mutation.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{Sections: make([]SectionSnapshot, len(s.Sections))}
	for i, sec := range s.Sections {
		rows := make([]RowSnapshot, len(sec.Items))
		for j, row := range sec.Items {
			cp := row
			if row.Fields != nil {
				cp.Fields = make(map[string]any, len(row.Fields))
				for k, v := range row.Fields {
					cp.Fields[k] = v
				}
			}
			rows[j] = cp
		}
		sec.Items = rows
		out.Sections[i] = sec
	}
	return out
}
