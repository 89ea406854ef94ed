package espalier

import "github.com/aretw0/espalier/pkg/domain"

// Read-only queries. All of them are deterministic, side-effect-free linear
// scans in section-major, row-minor order; no secondary index is maintained
// behind the collection's back.

// SectionAt returns the section at the given index.
func (l *List[S, R]) SectionAt(index int) (S, error) {
	if err := l.sectionInRange(index); err != nil {
		var zero S
		return zero, err
	}
	return l.sections[index], nil
}

// Sections returns the sections matching pred, in ascending index order.
func (l *List[S, R]) Sections(pred func(index int, section S) bool) []S {
	var out []S
	for i, s := range l.sections {
		if pred(i, s) {
			out = append(out, s)
		}
	}
	return out
}

// SectionIndexes returns the indexes of sections matching pred, ascending.
func (l *List[S, R]) SectionIndexes(pred func(index int, section S) bool) []int {
	var out []int
	for i, s := range l.sections {
		if pred(i, s) {
			out = append(out, i)
		}
	}
	return out
}

// FirstSectionIndex returns the lowest index matching pred. Absence is a
// normal outcome, reported through ok.
func (l *List[S, R]) FirstSectionIndex(pred func(index int, section S) bool) (index int, ok bool) {
	for i, s := range l.sections {
		if pred(i, s) {
			return i, true
		}
	}
	return 0, false
}

// RowAt returns the row at the given position.
func (l *List[S, R]) RowAt(p domain.Position) (R, error) {
	if err := l.positionInRange(p); err != nil {
		var zero R
		return zero, err
	}
	return l.sections[p.Section].Rows()[p.Row], nil
}

// Rows returns every row matching pred, iterated across all sections.
func (l *List[S, R]) Rows(pred func(p domain.Position, section S, row R) bool) []R {
	var out []R
	for i, s := range l.sections {
		for j, r := range s.Rows() {
			if pred(domain.Pos(i, j), s, r) {
				out = append(out, r)
			}
		}
	}
	return out
}

// Positions returns the positions of every row matching pred.
func (l *List[S, R]) Positions(pred func(p domain.Position, section S, row R) bool) []domain.Position {
	var out []domain.Position
	for i, s := range l.sections {
		for j, r := range s.Rows() {
			if pred(domain.Pos(i, j), s, r) {
				out = append(out, domain.Pos(i, j))
			}
		}
	}
	return out
}

// FirstPosition returns the first position matching pred in iteration order.
func (l *List[S, R]) FirstPosition(pred func(p domain.Position, section S, row R) bool) (domain.Position, bool) {
	for i, s := range l.sections {
		for j, r := range s.Rows() {
			if pred(domain.Pos(i, j), s, r) {
				return domain.Pos(i, j), true
			}
		}
	}
	return domain.Position{}, false
}
