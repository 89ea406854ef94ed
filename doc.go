/*
Package espalier is a diffing and reconciliation engine for ordered,
two-level collections: sections at the top, rows inside each section. Given
the collection a widget currently shows and the collection it should show,
it computes and applies the minimal ordered edit script (section/row
insertions, removals, moves, in-place replacements) while preserving the
identity of unchanged items.

It implements a "Keyed Reconciliation over Positional Primitives"
architecture, separating index bookkeeping (the collection) from identity
matching (the reconciler) and from rendering (the Target port). This
Hexagonal Architecture lets the same engine drive any incremental UI: a
terminal list, a remote view over SSE, or an in-process widget.

# Key Features

  - Deterministic Reconciliation: the same old and new content always
    produces the same op sequence, which makes update streams testable.
  - Exact Position Sets: every mutation returns precisely the indexes it
    touched, matching the bookkeeping contract of incremental widget APIs.
  - Contiguous-Run Batching: consecutive new items are inserted in one
    operation, keeping scripts short for the common append/prepend cases.
  - Hexagonal Architecture: the core is pure; widgets, stores, and servers
    are adapters behind small ports.

# Usage

Hold a Controller wherever you would hold the widget's data source. Feed it
the full desired content whenever your data changes; it reconciles in place
and forwards the edit script to the widget inside one batch.

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/espalier"
		"github.com/aretw0/espalier/pkg/domain"
	)

	func main() {
		current := &domain.Snapshot{Sections: []domain.SectionSnapshot{
			{ID: "inbox", Items: []domain.RowSnapshot{{ID: "a"}, {ID: "b"}}},
		}}
		desired := &domain.Snapshot{Sections: []domain.SectionSnapshot{
			{ID: "inbox", Items: []domain.RowSnapshot{{ID: "b"}, {ID: "c"}}},
			{ID: "archive", Items: []domain.RowSnapshot{{ID: "a"}}},
		}}

		script, err := espalier.DiffSnapshots(current, desired)
		if err != nil {
			log.Fatal(err)
		}
		for _, op := range script {
			fmt.Println(op)
		}
	}

For a live widget, construct the Controller with WithTarget and let Ensure
drive it. Custom section and row types plug in through the domain.Keyed and
domain.RowContainer constraints; see NewController.
*/
package espalier
