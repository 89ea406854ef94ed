package ports

import "github.com/aretw0/espalier/pkg/domain"

// Target is the rendering-widget contract. The Controller calls one method
// per applied mutation, in application order, carrying the exact index or
// position set the mutation returned. An implementation whose own index
// bookkeeping diverges from these sets, even by one element, leaves the rest
// of the batch undefined; this is a hard compatibility contract, not a
// convenience.
//
// Implementations must not call back into the collection that is driving
// them while a batch is open.
type Target interface {
	// Reload signals a full replacement; the target re-reads everything.
	Reload()

	// InsertSections announces a contiguous run of new section indexes.
	InsertSections(indexes []int)

	// RemoveSections announces removed section indexes, numbered against
	// the state before the removal.
	RemoveSections(indexes []int)

	// ReplaceSections announces sections overwritten in place.
	ReplaceSections(indexes []int)

	// InsertRows announces a contiguous run of new row positions.
	InsertRows(positions []domain.Position)

	// RemoveRows announces removed row positions, numbered against the
	// state before the removal.
	RemoveRows(positions []domain.Position)

	// ReplaceRows announces rows overwritten in place.
	ReplaceRows(positions []domain.Position)

	// MoveRow announces one row moving from source to destination, with the
	// destination resolved after the source removal.
	MoveRow(from, to domain.Position)
}

// BatchTarget is implemented by targets that want explicit transaction
// boundaries around the ops of one update. The Controller brackets every
// update in exactly one BeginUpdates/EndUpdates pair when the target
// supports it.
type BatchTarget interface {
	Target

	// BeginUpdates opens one atomic visual batch.
	BeginUpdates()

	// EndUpdates closes the batch; only now may the target settle what it
	// shows.
	EndUpdates()
}
