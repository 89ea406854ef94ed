package espalier

import (
	"fmt"
	"slices"

	"github.com/aretw0/espalier/pkg/domain"
)

// KeyedList is a List whose sections and rows carry stable keys, which makes
// it reconcilable: Ensure transforms the current content into any desired
// content using a minimal ordered edit script.
//
// Identity invariant: no two sections share a key, and no two rows within
// one section share a key. The positional primitives inherited from List do
// not enforce this; Ensure checks it up front and refuses to run against
// conflicting data.
type KeyedList[S domain.KeyedSection[S, R, K], R domain.Keyed[K], K comparable] struct {
	List[S, R]
}

// NewKeyedList builds a keyed list from the given sections.
func NewKeyedList[S domain.KeyedSection[S, R, K], R domain.Keyed[K], K comparable](sections ...S) *KeyedList[S, R, K] {
	return &KeyedList[S, R, K]{List: List[S, R]{sections: slices.Clone(sections)}}
}

// Keys returns the section keys in order.
func (l *KeyedList[S, R, K]) Keys() []K {
	keys := make([]K, len(l.sections))
	for i, s := range l.sections {
		keys[i] = s.Key()
	}
	return keys
}

// RowKeys returns the row keys of one section in order.
func (l *KeyedList[S, R, K]) RowKeys(section int) ([]K, error) {
	if err := l.sectionInRange(section); err != nil {
		return nil, err
	}
	rows := l.sections[section].Rows()
	keys := make([]K, len(rows))
	for i, r := range rows {
		keys[i] = r.Key()
	}
	return keys, nil
}

// SectionIndex returns the index of the section with the given key. Absence
// is a normal outcome, reported through ok.
func (l *KeyedList[S, R, K]) SectionIndex(key K) (index int, ok bool) {
	if i := l.sectionIndexOf(key, 0); i >= 0 {
		return i, true
	}
	return 0, false
}

// RowPosition returns the position of the row with the given key inside the
// section with the given key.
func (l *KeyedList[S, R, K]) RowPosition(sectionKey, rowKey K) (domain.Position, bool) {
	i := l.sectionIndexOf(sectionKey, 0)
	if i < 0 {
		return domain.Position{}, false
	}
	j := l.rowIndexOf(i, rowKey, 0)
	if j < 0 {
		return domain.Position{}, false
	}
	return domain.Pos(i, j), true
}

// ValidateKeys checks the identity invariant over the current content.
func (l *KeyedList[S, R, K]) ValidateKeys() error {
	return validateKeys[S, R, K](l.sections)
}

// sectionIndexOf scans for key starting at from; -1 when absent.
func (l *KeyedList[S, R, K]) sectionIndexOf(key K, from int) int {
	for i := from; i < len(l.sections); i++ {
		if l.sections[i].Key() == key {
			return i
		}
	}
	return -1
}

// rowIndexOf scans one section's rows for key starting at from; -1 when
// absent.
func (l *KeyedList[S, R, K]) rowIndexOf(section int, key K, from int) int {
	rows := l.sections[section].Rows()
	for j := from; j < len(rows); j++ {
		if rows[j].Key() == key {
			return j
		}
	}
	return -1
}

func validateKeys[S domain.KeyedSection[S, R, K], R domain.Keyed[K], K comparable](sections []S) error {
	seen := make(map[K]bool, len(sections))
	for _, s := range sections {
		key := s.Key()
		if seen[key] {
			return &domain.KeyConflictError{Scope: "sections", Key: key}
		}
		seen[key] = true

		rows := s.Rows()
		rowSeen := make(map[K]bool, len(rows))
		for _, r := range rows {
			rk := r.Key()
			if rowSeen[rk] {
				return &domain.KeyConflictError{Scope: fmt.Sprintf("section %v", key), Key: rk}
			}
			rowSeen[rk] = true
		}
	}
	return nil
}
