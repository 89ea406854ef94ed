package espalier

import (
	"slices"

	"github.com/aretw0/espalier/pkg/domain"
)

// List is a mutable, ordered, two-level collection: sections at the top
// level, each holding an ordered sequence of rows. The section type S
// supplies row access through the domain.RowContainer constraint, so callers
// keep their own concrete types.
//
// A List is owned by exactly one logical thread of control. Nothing inside
// it locks; every mutation is synchronous and runs to completion. Positions
// and indexes returned by mutations describe exactly what changed, so a host
// can mirror each edit on an external rendering widget.
type List[S domain.RowContainer[S, R], R any] struct {
	sections []S
}

// NewList builds a list from the given sections. The section slice is
// copied; the sections themselves are used as-is.
func NewList[S domain.RowContainer[S, R], R any](sections ...S) *List[S, R] {
	return &List[S, R]{sections: slices.Clone(sections)}
}

// Len returns the number of sections.
func (l *List[S, R]) Len() int {
	return len(l.sections)
}

// IsEmpty reports whether the list holds no sections at all.
func (l *List[S, R]) IsEmpty() bool {
	return len(l.sections) == 0
}

// RowCount returns the number of rows in one section.
func (l *List[S, R]) RowCount(section int) (int, error) {
	if section < 0 || section >= len(l.sections) {
		return 0, &domain.RangeError{What: "section", Index: section, Len: len(l.sections)}
	}
	return len(l.sections[section].Rows()), nil
}

// Set replaces the entire collection. No positions are reported; a widget
// mirroring the list must do a full reload.
func (l *List[S, R]) Set(sections []S) {
	l.sections = slices.Clone(sections)
}

// Snapshot returns a copy of the current section sequence.
func (l *List[S, R]) Snapshot() []S {
	return slices.Clone(l.sections)
}

func (l *List[S, R]) sectionInRange(index int) error {
	if index < 0 || index >= len(l.sections) {
		return &domain.RangeError{What: "section", Index: index, Len: len(l.sections)}
	}
	return nil
}

func (l *List[S, R]) positionInRange(p domain.Position) error {
	if err := l.sectionInRange(p.Section); err != nil {
		return err
	}
	rows := l.sections[p.Section].Rows()
	if p.Row < 0 || p.Row >= len(rows) {
		return &domain.RangeError{What: "row", Index: p.Row, Len: len(rows)}
	}
	return nil
}
