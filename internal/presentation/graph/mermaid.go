package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// Overlay marks positions to highlight on the generated graph, keyed against
// the snapshot being rendered. Removals have no home in the new structure,
// so only insertions and replacements are drawable.
type Overlay struct {
	InsertedSections []int
	ReplacedSections []int
	InsertedRows     []domain.Position
	ReplacedRows     []domain.Position
}

// OverlayFromScript extracts drawable highlights from an edit script applied
// to the snapshot being rendered.
func OverlayFromScript(script domain.Script) *Overlay {
	o := &Overlay{}
	for _, op := range script {
		switch op.Kind {
		case domain.OpInsertSections:
			o.InsertedSections = append(o.InsertedSections, op.Sections...)
		case domain.OpReplaceSections:
			o.ReplacedSections = append(o.ReplacedSections, op.Sections...)
		case domain.OpInsertRows:
			o.InsertedRows = append(o.InsertedRows, op.Positions...)
		case domain.OpReplaceRows:
			o.ReplacedRows = append(o.ReplacedRows, op.Positions...)
		}
	}
	return o
}

// GenerateMermaid produces Mermaid flowchart syntax for a snapshot: one
// subgraph per section, rows chained in order inside it. Overlay positions
// are styled as inserted (green) or replaced (amber).
func GenerateMermaid(snap *domain.Snapshot, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, section := range snap.Sections {
		secID := sanitizeMermaidID(section.ID)
		title := section.Title
		if title == "" {
			title = section.ID
		}
		sb.WriteString(fmt.Sprintf("    subgraph %s [\"%s\"]\n", secID, escapeMermaidLabel(title)))

		var prev string
		for _, row := range section.Items {
			rowID := secID + "__" + sanitizeMermaidID(row.ID)
			sb.WriteString(fmt.Sprintf("        %s[\"%s\"]\n", rowID, escapeMermaidLabel(row.ID)))
			if prev != "" {
				sb.WriteString(fmt.Sprintf("        %s --> %s\n", prev, rowID))
			}
			prev = rowID
		}
		sb.WriteString("    end\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force dark text for contrast on both light and dark themes.
		sb.WriteString("    classDef inserted fill:#dcfce7,stroke:#15803d,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef replaced fill:#fef9c3,stroke:#ca8a04,stroke-width:2px,color:#000;\n")

		writeClass := func(target, class string) {
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", target, class))
		}
		for _, idx := range overlay.InsertedSections {
			if idx >= 0 && idx < len(snap.Sections) {
				writeClass(sanitizeMermaidID(snap.Sections[idx].ID), "inserted")
			}
		}
		for _, idx := range overlay.ReplacedSections {
			if idx >= 0 && idx < len(snap.Sections) {
				writeClass(sanitizeMermaidID(snap.Sections[idx].ID), "replaced")
			}
		}
		for _, p := range overlay.InsertedRows {
			if id, ok := rowNodeID(snap, p); ok {
				writeClass(id, "inserted")
			}
		}
		for _, p := range overlay.ReplacedRows {
			if id, ok := rowNodeID(snap, p); ok {
				writeClass(id, "replaced")
			}
		}
	}

	return sb.String()
}

func rowNodeID(snap *domain.Snapshot, p domain.Position) (string, bool) {
	if p.Section < 0 || p.Section >= len(snap.Sections) {
		return "", false
	}
	section := snap.Sections[p.Section]
	if p.Row < 0 || p.Row >= len(section.Items) {
		return "", false
	}
	return sanitizeMermaidID(section.ID) + "__" + sanitizeMermaidID(section.Items[p.Row].ID), true
}

func escapeMermaidLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
