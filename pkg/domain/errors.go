package domain

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when an index or position argument falls outside
// the collection's current bounds. Bounds are never clamped silently.
var ErrOutOfRange = errors.New("index out of range")

// ErrDuplicateKey is returned when identity-aware operations encounter data
// violating the key-uniqueness invariant. This is a defect in the calling
// code, not a recoverable runtime condition.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrSnapshotNotFound is returned when a collection ID cannot be found in a
// snapshot store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// RangeError reports the offending index and the extent that was valid at
// call time. It unwraps to ErrOutOfRange.
type RangeError struct {
	What  string // "section" or "row"
	Index int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range (len %d)", e.What, e.Index, e.Len)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// KeyConflictError reports a duplicated key, with the scope it was found in.
// It unwraps to ErrDuplicateKey.
type KeyConflictError struct {
	Scope string // "sections" or the owning section's rendered key
	Key   any
}

func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("duplicate key %v in %s", e.Key, e.Scope)
}

func (e *KeyConflictError) Unwrap() error { return ErrDuplicateKey }
