package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks row field values whose
// keys match the patterns before they reach the store. Loads pass through
// untouched; masking is a write-time concern.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, id string, snap *domain.Snapshot) error {
	if snap == nil {
		return m.next.Save(ctx, id, snap)
	}

	// Masking recurses into nested field maps, so the copy must go all the
	// way down; the caller's snapshot stays untouched.
	cloned := deepCopySnapshot(snap)
	for si := range cloned.Sections {
		for ri := range cloned.Sections[si].Items {
			maskMap(cloned.Sections[si].Items[ri].Fields, m.patterns)
		}
	}
	return m.next.Save(ctx, id, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func deepCopySnapshot(snap *domain.Snapshot) *domain.Snapshot {
	if snap == nil {
		return nil
	}
	out := &domain.Snapshot{Sections: make([]domain.SectionSnapshot, len(snap.Sections))}
	for i, sec := range snap.Sections {
		rows := make([]domain.RowSnapshot, len(sec.Items))
		for j, row := range sec.Items {
			cp := row
			if row.Fields != nil {
				cp.Fields = deepCopyMap(row.Fields)
			}
			rows[j] = cp
		}
		sec.Items = rows
		out.Sections[i] = sec
	}
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		// Handle nested maps
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v // shallow copy of value
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
