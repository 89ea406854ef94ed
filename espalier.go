package espalier

import "github.com/aretw0/espalier/pkg/domain"

// Version is the library version, surfaced by the CLI and the servers.
const Version = "0.2.0"

// Diff computes the edit script that would transform old into new, without
// retaining any state. It is the stateless entry point used by tooling; the
// script is the same one a Controller around old would have forwarded to its
// target.
func Diff[S domain.KeyedSection[S, R, K], R domain.Keyed[K], K comparable](old, new []S) (domain.Script, error) {
	list := NewKeyedList[S, R, K](old...)
	return list.Ensure(new)
}

// DiffSnapshots reconciles two snapshot documents. This is the concrete
// form every server and CLI surface speaks.
func DiffSnapshots(old, new *domain.Snapshot) (domain.Script, error) {
	var oldSections, newSections []domain.SectionSnapshot
	if old != nil {
		oldSections = old.Sections
	}
	if new != nil {
		newSections = new.Sections
	}
	return Diff[domain.SectionSnapshot, domain.RowSnapshot, string](oldSections, newSections)
}

// NewSnapshotController builds a Controller over snapshot documents, the
// ready-made section/row types. Library users with their own types use
// NewController directly.
func NewSnapshotController(initial *domain.Snapshot, opts ...ControllerOption[domain.SectionSnapshot, domain.RowSnapshot]) *Controller[domain.SectionSnapshot, domain.RowSnapshot, string] {
	var sections []domain.SectionSnapshot
	if initial != nil {
		sections = initial.Sections
	}
	return NewController[domain.SectionSnapshot, domain.RowSnapshot, string](sections, opts...)
}
