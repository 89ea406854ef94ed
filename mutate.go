package espalier

import (
	"slices"

	"github.com/aretw0/espalier/pkg/domain"
)

// Mutation primitives. Each one is atomic, validates its arguments against
// the pre-edit collection, applies in a single pass, and returns the exact
// index or position set it touched. Removal and replacement sets are
// expressed in pre-edit coordinates, insertion sets in post-edit ones; that
// is what an incremental widget API expects inside one batch.
//
// Row slices handed in by callers are never written through: every row-level
// edit builds a fresh slice and swaps it in via WithRows.

// InsertSections inserts a contiguous run starting at the given index.
// Existing sections at and after it shift right by the run length. Valid
// insertion points are 0 through Len inclusive.
func (l *List[S, R]) InsertSections(sections []S, at int) ([]int, error) {
	if at < 0 || at > len(l.sections) {
		return nil, &domain.RangeError{What: "section", Index: at, Len: len(l.sections)}
	}
	if len(sections) == 0 {
		return nil, nil
	}
	out := make([]S, 0, len(l.sections)+len(sections))
	out = append(out, l.sections[:at]...)
	out = append(out, sections...)
	out = append(out, l.sections[at:]...)
	l.sections = out

	indexes := make([]int, len(sections))
	for i := range sections {
		indexes[i] = at + i
	}
	return indexes, nil
}

// ReplaceSection overwrites the section at the given index in place.
func (l *List[S, R]) ReplaceSection(section S, at int) error {
	if err := l.sectionInRange(at); err != nil {
		return err
	}
	l.sections[at] = section
	return nil
}

// ReplaceSectionsFunc overwrites every section for which fn yields a
// replacement, in one pass over pre-edit indexes. Returns the overwritten
// indexes in ascending order.
func (l *List[S, R]) ReplaceSectionsFunc(fn func(index int, section S) (S, bool)) []int {
	var touched []int
	for i := range l.sections {
		if next, ok := fn(i, l.sections[i]); ok {
			l.sections[i] = next
			touched = append(touched, i)
		}
	}
	return touched
}

// RemoveSection removes one section; all later sections shift left by one.
func (l *List[S, R]) RemoveSection(at int) error {
	if err := l.sectionInRange(at); err != nil {
		return err
	}
	l.sections = append(l.sections[:at], l.sections[at+1:]...)
	return nil
}

// RemoveSections removes all given indexes in one pass; survivors close the
// gaps, preserving relative order. Every index is validated against the
// pre-edit collection before anything is removed. Returns the removed index
// set, sorted and deduplicated.
func (l *List[S, R]) RemoveSections(indexes []int) ([]int, error) {
	if len(indexes) == 0 {
		return nil, nil
	}
	drop := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= len(l.sections) {
			return nil, &domain.RangeError{What: "section", Index: idx, Len: len(l.sections)}
		}
		drop[idx] = true
	}
	removed := make([]int, 0, len(drop))
	kept := make([]S, 0, len(l.sections)-len(drop))
	for i, s := range l.sections {
		if drop[i] {
			removed = append(removed, i)
		} else {
			kept = append(kept, s)
		}
	}
	l.sections = kept
	return removed, nil
}

// RemoveSectionsFunc removes every section matching fn in one pass. Returns
// the removed indexes as the pre-edit collection numbered them.
func (l *List[S, R]) RemoveSectionsFunc(fn func(index int, section S) bool) []int {
	var removed []int
	kept := l.sections[:0:0]
	for i, s := range l.sections {
		if fn(i, s) {
			removed = append(removed, i)
		} else {
			kept = append(kept, s)
		}
	}
	l.sections = kept
	return removed
}

// InsertRows inserts a contiguous run of rows into one section, starting at
// the position's row index. Later rows in that section shift right. The row
// index may equal the section's current row count (append).
func (l *List[S, R]) InsertRows(rows []R, at domain.Position) ([]domain.Position, error) {
	if err := l.sectionInRange(at.Section); err != nil {
		return nil, err
	}
	current := l.sections[at.Section].Rows()
	if at.Row < 0 || at.Row > len(current) {
		return nil, &domain.RangeError{What: "row", Index: at.Row, Len: len(current)}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	next := make([]R, 0, len(current)+len(rows))
	next = append(next, current[:at.Row]...)
	next = append(next, rows...)
	next = append(next, current[at.Row:]...)
	l.sections[at.Section] = l.sections[at.Section].WithRows(next)

	positions := make([]domain.Position, len(rows))
	for i := range rows {
		positions[i] = domain.Pos(at.Section, at.Row+i)
	}
	return positions, nil
}

// AppendRows inserts rows at the end of the given section's row sequence.
func (l *List[S, R]) AppendRows(rows []R, section int) ([]domain.Position, error) {
	if err := l.sectionInRange(section); err != nil {
		return nil, err
	}
	return l.InsertRows(rows, domain.Pos(section, len(l.sections[section].Rows())))
}

// ReplaceRow overwrites one row in place.
func (l *List[S, R]) ReplaceRow(row R, at domain.Position) error {
	if err := l.positionInRange(at); err != nil {
		return err
	}
	current := l.sections[at.Section].Rows()
	next := slices.Clone(current)
	next[at.Row] = row
	l.sections[at.Section] = l.sections[at.Section].WithRows(next)
	return nil
}

// ReplaceRowsFunc overwrites every row for which fn yields a replacement,
// one pass over pre-edit positions. Returns the affected positions.
func (l *List[S, R]) ReplaceRowsFunc(fn func(p domain.Position, section S, row R) (R, bool)) []domain.Position {
	var touched []domain.Position
	for i := range l.sections {
		rows := l.sections[i].Rows()
		var next []R
		for j, r := range rows {
			repl, ok := fn(domain.Pos(i, j), l.sections[i], r)
			if !ok {
				continue
			}
			if next == nil {
				next = slices.Clone(rows)
			}
			next[j] = repl
			touched = append(touched, domain.Pos(i, j))
		}
		if next != nil {
			l.sections[i] = l.sections[i].WithRows(next)
		}
	}
	return touched
}

// RemoveRow removes one row; later rows in its section shift left.
func (l *List[S, R]) RemoveRow(at domain.Position) error {
	if err := l.positionInRange(at); err != nil {
		return err
	}
	current := l.sections[at.Section].Rows()
	next := make([]R, 0, len(current)-1)
	next = append(next, current[:at.Row]...)
	next = append(next, current[at.Row+1:]...)
	l.sections[at.Section] = l.sections[at.Section].WithRows(next)
	return nil
}

// RemoveRows removes all given positions in one pass per section, preserving
// the relative order of survivors. Every position is validated against the
// pre-edit collection before anything is removed. Returns the removed set in
// section-major order, deduplicated, in pre-edit coordinates.
func (l *List[S, R]) RemoveRows(positions []domain.Position) ([]domain.Position, error) {
	if len(positions) == 0 {
		return nil, nil
	}
	drop := make(map[domain.Position]bool, len(positions))
	perSection := make(map[int]int, len(positions))
	for _, p := range positions {
		if err := l.positionInRange(p); err != nil {
			return nil, err
		}
		if !drop[p] {
			drop[p] = true
			perSection[p.Section]++
		}
	}
	removed := make([]domain.Position, 0, len(drop))
	for i := range l.sections {
		count := perSection[i]
		if count == 0 {
			continue
		}
		rows := l.sections[i].Rows()
		next := make([]R, 0, len(rows)-count)
		for j, r := range rows {
			if drop[domain.Pos(i, j)] {
				removed = append(removed, domain.Pos(i, j))
			} else {
				next = append(next, r)
			}
		}
		l.sections[i] = l.sections[i].WithRows(next)
	}
	return removed, nil
}

// RemoveRowsFunc removes every row matching fn, one pass over pre-edit
// positions. Returns the removed position set in pre-edit coordinates.
func (l *List[S, R]) RemoveRowsFunc(fn func(p domain.Position, section S, row R) bool) []domain.Position {
	var removed []domain.Position
	for i := range l.sections {
		rows := l.sections[i].Rows()
		var next []R
		for j, r := range rows {
			if fn(domain.Pos(i, j), l.sections[i], r) {
				if next == nil {
					next = slices.Clone(rows[:j])
				}
				removed = append(removed, domain.Pos(i, j))
			} else if next != nil {
				next = append(next, r)
			}
		}
		if next != nil {
			l.sections[i] = l.sections[i].WithRows(next)
		}
	}
	return removed
}

// MoveRow removes the row at from and reinserts it at to, possibly across
// sections. The destination is resolved against the collection after the
// removal, so moving within one section to a higher index needs no manual
// off-by-one correction.
func (l *List[S, R]) MoveRow(from, to domain.Position) error {
	if err := l.positionInRange(from); err != nil {
		return err
	}
	row := l.sections[from.Section].Rows()[from.Row]
	if err := l.RemoveRow(from); err != nil {
		return err
	}
	if _, err := l.InsertRows([]R{row}, to); err != nil {
		// The source row is already out; restore it so a bounds mistake on
		// the destination does not lose data.
		_, _ = l.InsertRows([]R{row}, from)
		return err
	}
	return nil
}
