package domain

// Keyed is implemented by values carrying a stable identity. The key must
// not change for the lifetime of the logical entity, even when its content
// does; reconciliation matches entities by key, never by value equality.
type Keyed[K comparable] interface {
	Key() K
}

// RowContainer gives the engine ordered, value-semantics access to a
// section's rows. WithRows returns a copy of the section with its row
// sequence replaced; the receiver is left untouched.
type RowContainer[S, R any] interface {
	Rows() []R
	WithRows(rows []R) S
}

// KeyedSection is the constraint for sections participating in
// identity-aware operations: ordered rows plus a stable key.
type KeyedSection[S, R any, K comparable] interface {
	RowContainer[S, R]
	Keyed[K]
}
