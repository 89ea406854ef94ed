package memory

import "github.com/aretw0/espalier/pkg/domain"

// Recorder implements ports.BatchTarget by recording everything it is told,
// in order. It is the reference test double for asserting what a widget
// would have received: each op lands in Ops, and Batches counts completed
// BeginUpdates/EndUpdates pairs.
type Recorder struct {
	Ops     domain.Script
	Batches int

	open bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Reset clears everything recorded so far.
func (r *Recorder) Reset() {
	r.Ops = nil
	r.Batches = 0
	r.open = false
}

// InBatch reports whether a batch scope is currently open.
func (r *Recorder) InBatch() bool { return r.open }

func (r *Recorder) BeginUpdates() { r.open = true }

func (r *Recorder) EndUpdates() {
	r.open = false
	r.Batches++
}

func (r *Recorder) Reload() {
	r.record(domain.Op{Kind: domain.OpReload})
}

func (r *Recorder) InsertSections(indexes []int) {
	r.record(domain.Op{Kind: domain.OpInsertSections, Sections: indexes})
}

func (r *Recorder) RemoveSections(indexes []int) {
	r.record(domain.Op{Kind: domain.OpRemoveSections, Sections: indexes})
}

func (r *Recorder) ReplaceSections(indexes []int) {
	r.record(domain.Op{Kind: domain.OpReplaceSections, Sections: indexes})
}

func (r *Recorder) InsertRows(positions []domain.Position) {
	r.record(domain.Op{Kind: domain.OpInsertRows, Positions: positions})
}

func (r *Recorder) RemoveRows(positions []domain.Position) {
	r.record(domain.Op{Kind: domain.OpRemoveRows, Positions: positions})
}

func (r *Recorder) ReplaceRows(positions []domain.Position) {
	r.record(domain.Op{Kind: domain.OpReplaceRows, Positions: positions})
}

func (r *Recorder) MoveRow(from, to domain.Position) {
	r.record(domain.Op{Kind: domain.OpMoveRow, From: &from, To: &to})
}

func (r *Recorder) record(op domain.Op) {
	r.Ops = append(r.Ops, op)
}
