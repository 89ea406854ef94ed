package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aretw0/espalier/pkg/domain"
)

// SectionView is one rendered section of the board.
type SectionView struct {
	ID    string
	Title string
	Rows  []RowView
}

// RowView is one rendered row.
type RowView struct {
	ID    string
	Label string
}

type batchMsg struct {
	ops   []domain.Op
	board []SectionView
}

type clearHighlightsMsg struct{ gen int }

// highlight marks what the latest batch touched. Indexes and positions are
// post-batch numbering, so they can be looked up directly against the board
// that arrived in the same message.
type highlight struct {
	insSections map[int]struct{}
	repSections map[int]struct{}
	insRows     map[domain.Position]struct{}
	repRows     map[domain.Position]struct{}
	reload      bool
}

func highlightFromOps(ops []domain.Op) highlight {
	h := highlight{
		insSections: make(map[int]struct{}),
		repSections: make(map[int]struct{}),
		insRows:     make(map[domain.Position]struct{}),
		repRows:     make(map[domain.Position]struct{}),
	}
	for _, op := range ops {
		switch op.Kind {
		case domain.OpReload:
			h.reload = true
		case domain.OpInsertSections:
			for _, i := range op.Sections {
				h.insSections[i] = struct{}{}
			}
		case domain.OpReplaceSections:
			for _, i := range op.Sections {
				h.repSections[i] = struct{}{}
			}
		case domain.OpInsertRows:
			for _, p := range op.Positions {
				h.insRows[p] = struct{}{}
			}
		case domain.OpReplaceRows:
			for _, p := range op.Positions {
				h.repRows[p] = struct{}{}
			}
		case domain.OpMoveRow:
			if op.To != nil {
				h.insRows[*op.To] = struct{}{}
			}
		}
	}
	return h
}

// Model renders a two-level collection as a navigable board and applies the
// op batches a Bridge sends. Removed indexes never need resolving here: every
// batch message carries the post-batch board, and the ops only drive the
// change highlights.
type Model struct {
	board    []SectionView
	hl       highlight
	batches  int
	lastOps  int
	section  int
	row      int
	quitting bool
}

// NewModel creates a board showing the given initial content.
func NewModel(initial []SectionView) Model {
	return Model{board: initial}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case batchMsg:
		m.board = msg.board
		m.hl = highlightFromOps(msg.ops)
		m.batches++
		m.lastOps = len(msg.ops)
		m.clampCursor()
		return m, cmdClearHighlights(m.batches)

	case clearHighlightsMsg:
		// Ignore ticks from superseded batches.
		if msg.gen == m.batches {
			m.hl = highlight{}
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.up):
			m.moveUp()
		case key.Matches(msg, keys.down):
			m.moveDown()
		case key.Matches(msg, keys.left):
			m.moveSection(-1)
		case key.Matches(msg, keys.right):
			m.moveSection(1)
		}

	case tea.WindowSizeMsg:
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	for i, section := range m.board {
		title := section.Title
		if title == "" {
			title = section.ID
		}
		header := titleStyle.Render(title)
		if _, ok := m.hl.insSections[i]; ok {
			header = insertedStyle.Render(title)
		} else if _, ok := m.hl.repSections[i]; ok {
			header = replacedStyle.Render(title)
		}
		b.WriteString(header)
		b.WriteString("\n")

		if len(section.Rows) == 0 {
			b.WriteString("  " + emptyStyle.Render("(empty)") + "\n")
		}
		for j, row := range section.Rows {
			pos := domain.Position{Section: i, Row: j}
			label := row.Label
			if label == "" {
				label = row.ID
			}
			if _, ok := m.hl.insRows[pos]; ok {
				label = insertedStyle.Render(label)
			} else if _, ok := m.hl.repRows[pos]; ok {
				label = replacedStyle.Render(label)
			}
			if i == m.section && j == m.row {
				b.WriteString(cursorStyle.Render("▸ ") + label + "\n")
			} else {
				b.WriteString("  " + label + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(m.board) == 0 {
		b.WriteString(emptyStyle.Render("(no sections)") + "\n\n")
	}

	b.WriteString(helpStyle.Render(fmt.Sprintf(
		"%d batches · last %d ops · ↑/↓ row · ←/→ section · q quit",
		m.batches, m.lastOps,
	)))

	return appStyle.Render(b.String())
}

// Board returns the currently displayed content.
func (m Model) Board() []SectionView {
	return m.board
}

// Batches reports how many op batches have been applied.
func (m Model) Batches() int {
	return m.batches
}

// Cursor returns the selected section and row index.
func (m Model) Cursor() (section, row int) {
	return m.section, m.row
}

func (m *Model) clampCursor() {
	if len(m.board) == 0 {
		m.section, m.row = 0, 0
		return
	}
	if m.section >= len(m.board) {
		m.section = len(m.board) - 1
	}
	if m.section < 0 {
		m.section = 0
	}
	rows := len(m.board[m.section].Rows)
	if m.row >= rows {
		m.row = rows - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m *Model) moveUp() {
	if m.row > 0 {
		m.row--
		return
	}
	// Jump to the previous section's last row.
	for s := m.section - 1; s >= 0; s-- {
		if len(m.board[s].Rows) > 0 {
			m.section = s
			m.row = len(m.board[s].Rows) - 1
			return
		}
	}
}

func (m *Model) moveDown() {
	if len(m.board) == 0 {
		return
	}
	if m.row < len(m.board[m.section].Rows)-1 {
		m.row++
		return
	}
	// Jump to the next section's first row.
	for s := m.section + 1; s < len(m.board); s++ {
		if len(m.board[s].Rows) > 0 {
			m.section = s
			m.row = 0
			return
		}
	}
}

func (m *Model) moveSection(delta int) {
	next := m.section + delta
	if next < 0 || next >= len(m.board) {
		return
	}
	m.section = next
	m.row = 0
	m.clampCursor()
}

func cmdClearHighlights(gen int) tea.Cmd {
	return tea.Tick(1200*time.Millisecond, func(time.Time) tea.Msg {
		return clearHighlightsMsg{gen: gen}
	})
}

// BoardFromSnapshot converts a stored snapshot into view content, labeling
// each row from its "label", "title" or "text" field when present.
func BoardFromSnapshot(snap *domain.Snapshot) []SectionView {
	if snap == nil {
		return nil
	}
	board := make([]SectionView, 0, len(snap.Sections))
	for _, section := range snap.Sections {
		view := SectionView{ID: section.ID, Title: section.Title}
		for _, row := range section.Items {
			view.Rows = append(view.Rows, RowView{ID: row.ID, Label: rowLabel(row)})
		}
		board = append(board, view)
	}
	return board
}

func rowLabel(row domain.RowSnapshot) string {
	for _, field := range []string{"label", "title", "text"} {
		if v, ok := row.Fields[field].(string); ok && v != "" {
			return v
		}
	}
	return row.ID
}
