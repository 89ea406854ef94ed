package dsl

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// Builder manages the snapshot construction. Sections appear in the order of
// their first mention.
type Builder struct {
	order    []string
	sections map[string]*SectionBuilder
}

// New creates a new snapshot builder.
func New() *Builder {
	return &Builder{
		sections: make(map[string]*SectionBuilder),
	}
}

// Section creates a new section in the snapshot.
// If the section already exists, it returns the existing builder.
func (b *Builder) Section(id string) *SectionBuilder {
	if sb, ok := b.sections[id]; ok {
		return sb
	}
	sb := &SectionBuilder{
		section: domain.SectionSnapshot{ID: id},
		builder: b,
	}
	b.sections[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build compiles the sections into a validated snapshot.
func (b *Builder) Build() (*domain.Snapshot, error) {
	snap := &domain.Snapshot{Sections: make([]domain.SectionSnapshot, 0, len(b.order))}
	for _, id := range b.order {
		snap.Sections = append(snap.Sections, b.sections[id].section)
	}

	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}
	return snap, nil
}
