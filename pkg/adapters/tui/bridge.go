package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Bridge adapts a bubbletea program into a ports.BatchTarget. The collection
// calls it on whatever goroutine drives the mutation; the bridge buffers the
// ops of one batch and hands them to the program as a single message,
// together with a board snapshot taken at the batch boundary. That snapshot
// is what keeps the rendered content consistent with the batch's final
// index numbering.
type Bridge struct {
	send     func(tea.Msg)
	snapshot func() []SectionView

	mu    sync.Mutex
	depth int
	ops   []domain.Op
}

var _ ports.BatchTarget = (*Bridge)(nil)

// NewBridge wires a send function (usually (*tea.Program).Send) to a
// snapshot function that reads the collection's current view content.
func NewBridge(send func(tea.Msg), snapshot func() []SectionView) *Bridge {
	return &Bridge{send: send, snapshot: snapshot}
}

func (b *Bridge) BeginUpdates() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.depth++
}

func (b *Bridge) EndUpdates() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.depth > 0 {
		b.depth--
	}
	if b.depth == 0 {
		b.flushLocked()
	}
}

func (b *Bridge) Reload() {
	b.record(domain.Op{Kind: domain.OpReload})
}

func (b *Bridge) InsertSections(indexes []int) {
	b.record(domain.Op{Kind: domain.OpInsertSections, Sections: copyInts(indexes)})
}

func (b *Bridge) RemoveSections(indexes []int) {
	b.record(domain.Op{Kind: domain.OpRemoveSections, Sections: copyInts(indexes)})
}

func (b *Bridge) ReplaceSections(indexes []int) {
	b.record(domain.Op{Kind: domain.OpReplaceSections, Sections: copyInts(indexes)})
}

func (b *Bridge) InsertRows(positions []domain.Position) {
	b.record(domain.Op{Kind: domain.OpInsertRows, Positions: copyPositions(positions)})
}

func (b *Bridge) RemoveRows(positions []domain.Position) {
	b.record(domain.Op{Kind: domain.OpRemoveRows, Positions: copyPositions(positions)})
}

func (b *Bridge) ReplaceRows(positions []domain.Position) {
	b.record(domain.Op{Kind: domain.OpReplaceRows, Positions: copyPositions(positions)})
}

func (b *Bridge) MoveRow(from, to domain.Position) {
	b.record(domain.Op{Kind: domain.OpMoveRow, From: &from, To: &to})
}

func (b *Bridge) record(op domain.Op) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, op)
	if b.depth == 0 {
		b.flushLocked()
	}
}

func (b *Bridge) flushLocked() {
	if len(b.ops) == 0 {
		return
	}
	ops := b.ops
	b.ops = nil
	b.send(batchMsg{ops: ops, board: b.snapshot()})
}

// The op slices belong to the caller only until the callback returns.
func copyInts(v []int) []int {
	return append([]int(nil), v...)
}

func copyPositions(v []domain.Position) []domain.Position {
	return append([]domain.Position(nil), v...)
}
