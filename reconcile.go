package espalier

import (
	"slices"

	"github.com/aretw0/espalier/pkg/domain"
)

// ensureConfig collects the optional behavior of one Ensure call.
type ensureConfig[S, R any] struct {
	observe   func(domain.Op)
	sectionEq func(S, S) bool
	rowEq     func(R, R) bool
}

// EnsureOption configures one Ensure call.
type EnsureOption[S, R any] func(*ensureConfig[S, R])

// WithSectionSync layers content synchronization for retained sections on
// top of the structural reconciliation: after order and membership are
// settled, every section whose content eq reports as changed is overwritten
// in place (keeping its reconciled rows) and reported as a replace op. eq
// receives the current and the desired section.
func WithSectionSync[S, R any](eq func(current, desired S) bool) EnsureOption[S, R] {
	return func(c *ensureConfig[S, R]) {
		c.sectionEq = eq
	}
}

// WithRowSync is the row-level counterpart of WithSectionSync.
func WithRowSync[S, R any](eq func(current, desired R) bool) EnsureOption[S, R] {
	return func(c *ensureConfig[S, R]) {
		c.rowEq = eq
	}
}

// withObserver streams each op to fn as it is applied; the Controller uses
// this to forward ops to the widget inside the surrounding batch scope.
func withObserver[S, R any](fn func(domain.Op)) EnsureOption[S, R] {
	return func(c *ensureConfig[S, R]) {
		c.observe = fn
	}
}

// Ensure transforms the collection so that its section keys equal desired's
// section keys in order, and each section's row keys equal the matching
// desired section's row keys in order. It applies the fewest structural
// operations it knows how to and returns them, in application order, as the
// script. Given equal inputs the op sequence is always the same.
//
// The work runs in three ordered phases:
//
//  1. Remove every section whose key does not appear in desired, as one
//     batched removal.
//  2. Remove every row of a surviving section whose key does not appear in
//     the matching desired section, as one batched removal.
//  3. Walk desired left to right with an index cursor. A section found at
//     the wrong index is removed and folded into the following insertion; a
//     maximal run of consecutive absent sections is inserted as one call. A
//     section already in place gets the identical treatment applied to its
//     rows.
//
// Both key sets are validated before anything is touched: a duplicate key
// anywhere returns a KeyConflictError and the collection stays as it was.
// Inserted sections enter with the desired rows as given, so only retained
// sections need the row pass. Content of retained items is left alone unless
// WithSectionSync / WithRowSync ask for the trailing replace pass.
func (l *KeyedList[S, R, K]) Ensure(desired []S, opts ...EnsureOption[S, R]) (domain.Script, error) {
	var cfg ensureConfig[S, R]
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateKeys[S, R, K](desired); err != nil {
		return nil, err
	}
	if err := l.ValidateKeys(); err != nil {
		return nil, err
	}

	var script domain.Script
	emit := func(op domain.Op) {
		script = append(script, op)
		if cfg.observe != nil {
			cfg.observe(op)
		}
	}

	// Phase 1: prune sections that are not wanted at all.
	wantSection := make(map[K]int, len(desired))
	for i, s := range desired {
		wantSection[s.Key()] = i
	}
	if removed := l.RemoveSectionsFunc(func(_ int, s S) bool {
		_, ok := wantSection[s.Key()]
		return !ok
	}); len(removed) > 0 {
		emit(domain.Op{Kind: domain.OpRemoveSections, Sections: removed})
	}

	// Phase 2: prune rows of surviving sections that are not wanted. One
	// batched pass over the whole collection; the predicate consults the
	// desired row-key set of the row's own section.
	wantRow := make(map[K]map[K]bool, len(desired))
	for _, s := range desired {
		rows := s.Rows()
		set := make(map[K]bool, len(rows))
		for _, r := range rows {
			set[r.Key()] = true
		}
		wantRow[s.Key()] = set
	}
	if removed := l.RemoveRowsFunc(func(_ domain.Position, s S, r R) bool {
		return !wantRow[s.Key()][r.Key()]
	}); len(removed) > 0 {
		emit(domain.Op{Kind: domain.OpRemoveRows, Positions: removed})
	}

	// Phase 3: reconcile order and fill gaps. Everything before the cursor
	// is already in its final place, so key scans start at the cursor.
	i := 0
	pending := slices.Clone(desired)
	for len(pending) > 0 {
		next := pending[0]
		j := l.sectionIndexOf(next.Key(), i)
		if j >= 0 && j != i {
			// Out of place: take it out and let the run insertion below
			// bring in the desired version.
			_ = l.RemoveSection(j)
			emit(domain.Op{Kind: domain.OpRemoveSections, Sections: []int{j}})
			j = -1
		}
		if j < 0 {
			run := []S{next}
			pending = pending[1:]
			for len(pending) > 0 && l.sectionIndexOf(pending[0].Key(), i) < 0 {
				run = append(run, pending[0])
				pending = pending[1:]
			}
			indexes, err := l.InsertSections(run, i)
			if err != nil {
				return script, err
			}
			emit(domain.Op{Kind: domain.OpInsertSections, Sections: indexes})
			i += len(run)
			continue
		}
		if err := l.ensureRows(i, next, emit); err != nil {
			return script, err
		}
		pending = pending[1:]
		i++
	}

	l.syncContent(desired, cfg, emit)
	return script, nil
}

// ensureRows is phase 3 at the row level, applied to one retained section.
// Structurally identical to the section pass: pruning already happened in
// phase 2, so only reordering and gap filling remain.
func (l *KeyedList[S, R, K]) ensureRows(section int, desired S, emit func(domain.Op)) error {
	r := 0
	pending := slices.Clone(desired.Rows())
	for len(pending) > 0 {
		next := pending[0]
		j := l.rowIndexOf(section, next.Key(), r)
		if j >= 0 && j != r {
			_ = l.RemoveRow(domain.Pos(section, j))
			emit(domain.Op{Kind: domain.OpRemoveRows, Positions: []domain.Position{domain.Pos(section, j)}})
			j = -1
		}
		if j < 0 {
			run := []R{next}
			pending = pending[1:]
			for len(pending) > 0 && l.rowIndexOf(section, pending[0].Key(), r) < 0 {
				run = append(run, pending[0])
				pending = pending[1:]
			}
			positions, err := l.InsertRows(run, domain.Pos(section, r))
			if err != nil {
				return err
			}
			emit(domain.Op{Kind: domain.OpInsertRows, Positions: positions})
			r += len(run)
			continue
		}
		pending = pending[1:]
		r++
	}
	return nil
}

// syncContent runs the optional trailing replace passes. By the time it
// runs, section i holds the key of desired[i] and row orders match, so
// current and desired can be compared positionally.
func (l *KeyedList[S, R, K]) syncContent(desired []S, cfg ensureConfig[S, R], emit func(domain.Op)) {
	if cfg.sectionEq != nil {
		touched := l.ReplaceSectionsFunc(func(i int, current S) (S, bool) {
			if cfg.sectionEq(current, desired[i]) {
				var zero S
				return zero, false
			}
			return desired[i].WithRows(current.Rows()), true
		})
		if len(touched) > 0 {
			emit(domain.Op{Kind: domain.OpReplaceSections, Sections: touched})
		}
	}
	if cfg.rowEq != nil {
		touched := l.ReplaceRowsFunc(func(p domain.Position, _ S, current R) (R, bool) {
			want := desired[p.Section].Rows()[p.Row]
			if cfg.rowEq(current, want) {
				var zero R
				return zero, false
			}
			return want, true
		})
		if len(touched) > 0 {
			emit(domain.Op{Kind: domain.OpReplaceRows, Positions: touched})
		}
	}
}
