package dsl

import "github.com/aretw0/espalier/pkg/domain"

// SectionBuilder provides a fluent API for configuring a section.
type SectionBuilder struct {
	section domain.SectionSnapshot
	builder *Builder
}

// Title sets the section's display title.
func (s *SectionBuilder) Title(title string) *SectionBuilder {
	s.section.Title = title
	return s
}

// Row appends a row carrying only its identity.
func (s *SectionBuilder) Row(id string) *SectionBuilder {
	s.section.Items = append(s.section.Items, domain.RowSnapshot{ID: id})
	return s
}

// RowWith appends a row carrying free-form content fields.
func (s *SectionBuilder) RowWith(id string, fields map[string]any) *SectionBuilder {
	s.section.Items = append(s.section.Items, domain.RowSnapshot{ID: id, Fields: fields})
	return s
}

// Rows appends prebuilt rows, for content produced elsewhere.
func (s *SectionBuilder) Rows(rows ...domain.RowSnapshot) *SectionBuilder {
	s.section.Items = append(s.section.Items, rows...)
	return s
}

// Section starts the next section, so whole snapshots chain fluently.
func (s *SectionBuilder) Section(id string) *SectionBuilder {
	return s.builder.Section(id)
}

// Build compiles the whole snapshot. Shorthand for the Builder's Build.
func (s *SectionBuilder) Build() (*domain.Snapshot, error) {
	return s.builder.Build()
}

// Snapshot returns the underlying section.
// This is primarily used by the Builder, but exposed for advanced usage.
func (s *SectionBuilder) Snapshot() domain.SectionSnapshot {
	return s.section
}
