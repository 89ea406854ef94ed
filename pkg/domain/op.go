package domain

import (
	"fmt"
	"strings"
)

// OpKind identifies one primitive structural edit.
type OpKind string

const (
	// OpReload signals a full collection replacement. Carries no positions;
	// the widget is expected to re-read everything.
	OpReload OpKind = "reload"

	// OpInsertSections carries the newly occupied section indexes of one
	// contiguous run.
	OpInsertSections OpKind = "insert_sections"

	// OpRemoveSections carries the removed section indexes, expressed
	// against the collection as it was before the removal.
	OpRemoveSections OpKind = "remove_sections"

	// OpReplaceSections carries the indexes of sections overwritten in place.
	OpReplaceSections OpKind = "replace_sections"

	// OpInsertRows carries the newly occupied row positions of one
	// contiguous run inside a single section.
	OpInsertRows OpKind = "insert_rows"

	// OpRemoveRows carries the removed row positions, expressed against the
	// collection as it was before the removal.
	OpRemoveRows OpKind = "remove_rows"

	// OpReplaceRows carries the positions of rows overwritten in place.
	OpReplaceRows OpKind = "replace_rows"

	// OpMoveRow carries a source and a destination position. The destination
	// is resolved against the collection after the source row was taken out.
	OpMoveRow OpKind = "move_row"
)

// Op is one applied edit together with the exact index or position set the
// mutation returned. Ops are what a host forwards to its rendering widget,
// in order, inside one batch.
type Op struct {
	Kind      OpKind     `json:"kind" yaml:"kind"`
	Sections  []int      `json:"sections,omitempty" yaml:"sections,omitempty"`
	Positions []Position `json:"positions,omitempty" yaml:"positions,omitempty"`
	From      *Position  `json:"from,omitempty" yaml:"from,omitempty"`
	To        *Position  `json:"to,omitempty" yaml:"to,omitempty"`
}

// Structural reports whether the op inserts or removes elements, as opposed
// to overwriting content in place.
func (o Op) Structural() bool {
	switch o.Kind {
	case OpReplaceSections, OpReplaceRows:
		return false
	default:
		return true
	}
}

func (o Op) String() string {
	switch o.Kind {
	case OpMoveRow:
		return fmt.Sprintf("%s %s -> %s", o.Kind, o.From, o.To)
	case OpInsertSections, OpRemoveSections, OpReplaceSections:
		return fmt.Sprintf("%s %v", o.Kind, o.Sections)
	case OpReload:
		return string(o.Kind)
	default:
		parts := make([]string, len(o.Positions))
		for i, p := range o.Positions {
			parts[i] = p.String()
		}
		return fmt.Sprintf("%s %s", o.Kind, strings.Join(parts, " "))
	}
}

// Script is the ordered sequence of ops one reconciliation (or one batch of
// direct mutations) applied.
type Script []Op

// IsEmpty reports whether the script contains no ops at all.
func (s Script) IsEmpty() bool {
	return len(s) == 0
}

// StructuralCount returns how many ops insert or remove elements. A second
// reconciliation against an already converged collection yields zero.
func (s Script) StructuralCount() int {
	n := 0
	for _, op := range s {
		if op.Structural() {
			n++
		}
	}
	return n
}

// Summary returns per-kind op counts, for logs and reports.
func (s Script) Summary() map[OpKind]int {
	if len(s) == 0 {
		return nil
	}
	out := make(map[OpKind]int, len(s))
	for _, op := range s {
		out[op.Kind]++
	}
	return out
}
