package espalier

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Controller is the high-level entry point for driving a rendering widget
// from a keyed collection. It owns the collection exclusively, holds a
// non-owning handle to the widget target, and forwards every applied op to
// the target inside a batch scope, in the exact order and with the exact
// index sets the mutations produced.
//
// The target handle is plain and non-owning: the caller must keep the
// target alive for as long as it stays registered. Like the collection, a
// Controller is confined to one logical thread of control.
type Controller[S domain.KeyedSection[S, R, K], R domain.Keyed[K], K comparable] struct {
	list      *KeyedList[S, R, K]
	target    ports.Target
	hooks     domain.UpdateHooks
	logger    *slog.Logger
	sectionEq func(S, S) bool
	rowEq     func(R, R) bool

	depth    int // batch nesting; only the outermost scope reaches the target
	batchOps int
}

// ControllerOption defines a functional option for configuring a Controller.
type ControllerOption[S, R any] func(*controllerConfig[S, R])

type controllerConfig[S, R any] struct {
	target    ports.Target
	hooks     domain.UpdateHooks
	logger    *slog.Logger
	sectionEq func(S, S) bool
	rowEq     func(R, R) bool
}

// WithTarget registers the rendering widget adapter receiving update batches.
func WithTarget[S, R any](t ports.Target) ControllerOption[S, R] {
	return func(c *controllerConfig[S, R]) {
		c.target = t
	}
}

// WithHooks registers observability hooks.
func WithHooks[S, R any](hooks domain.UpdateHooks) ControllerOption[S, R] {
	return func(c *controllerConfig[S, R]) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the controller.
func WithLogger[S, R any](logger *slog.Logger) ControllerOption[S, R] {
	return func(c *controllerConfig[S, R]) {
		c.logger = logger
	}
}

// WithSectionContentSync makes Ensure overwrite retained sections whose
// content changed, judged by eq. See WithSectionSync.
func WithSectionContentSync[S, R any](eq func(current, desired S) bool) ControllerOption[S, R] {
	return func(c *controllerConfig[S, R]) {
		c.sectionEq = eq
	}
}

// WithRowContentSync makes Ensure overwrite retained rows whose content
// changed, judged by eq. See WithRowSync.
func WithRowContentSync[S, R any](eq func(current, desired R) bool) ControllerOption[S, R] {
	return func(c *controllerConfig[S, R]) {
		c.rowEq = eq
	}
}

// NewController initializes a Controller around the given initial sections.
// With no options it drives nothing and logs nowhere, which is fine for
// plain diff computation.
func NewController[S domain.KeyedSection[S, R, K], R domain.Keyed[K], K comparable](initial []S, opts ...ControllerOption[S, R]) *Controller[S, R, K] {
	var cfg controllerConfig[S, R]
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller[S, R, K]{
		list:      NewKeyedList[S, R, K](initial...),
		target:    cfg.target,
		hooks:     cfg.hooks,
		logger:    cfg.logger,
		sectionEq: cfg.sectionEq,
		rowEq:     cfg.rowEq,
	}
}

// List exposes the underlying collection for read-only queries. Mutating it
// directly bypasses the target forwarding and desynchronizes the widget.
func (c *Controller[S, R, K]) List() *KeyedList[S, R, K] {
	return c.list
}

// Batch runs fn inside one widget batch scope, so that several mutation
// calls settle as a single atomic visual update. Scopes nest; only the
// outermost one opens and closes the target batch.
func (c *Controller[S, R, K]) Batch(fn func() error) error {
	c.begin()
	defer c.end()
	return fn()
}

func (c *Controller[S, R, K]) begin() {
	c.depth++
	if c.depth > 1 {
		return
	}
	c.batchOps = 0
	if h := c.hooks.OnBatchBegin; h != nil {
		h(&domain.BatchEvent{EventBase: eventBase(domain.EventBatchBegin)})
	}
	if bt, ok := c.target.(ports.BatchTarget); ok {
		bt.BeginUpdates()
	}
}

func (c *Controller[S, R, K]) end() {
	c.depth--
	if c.depth > 0 {
		return
	}
	if bt, ok := c.target.(ports.BatchTarget); ok {
		bt.EndUpdates()
	}
	if h := c.hooks.OnBatchEnd; h != nil {
		h(&domain.BatchEvent{EventBase: eventBase(domain.EventBatchEnd), Ops: c.batchOps})
	}
}

// forward relays one applied op to the target and the hooks, inside the
// currently open batch scope.
func (c *Controller[S, R, K]) forward(op domain.Op) {
	c.batchOps++
	if h := c.hooks.OnOp; h != nil {
		h(&domain.OpEvent{EventBase: eventBase(domain.EventOpApplied), Op: op})
	}
	c.logger.Debug("op applied", "op", op.String())
	if c.target == nil {
		return
	}
	switch op.Kind {
	case domain.OpReload:
		c.target.Reload()
	case domain.OpInsertSections:
		c.target.InsertSections(op.Sections)
	case domain.OpRemoveSections:
		c.target.RemoveSections(op.Sections)
	case domain.OpReplaceSections:
		c.target.ReplaceSections(op.Sections)
	case domain.OpInsertRows:
		c.target.InsertRows(op.Positions)
	case domain.OpRemoveRows:
		c.target.RemoveRows(op.Positions)
	case domain.OpReplaceRows:
		c.target.ReplaceRows(op.Positions)
	case domain.OpMoveRow:
		c.target.MoveRow(*op.From, *op.To)
	}
}

// Ensure reconciles the collection against desired and forwards the whole
// script to the target as one batch. See KeyedList.Ensure for the algorithm
// and failure semantics.
func (c *Controller[S, R, K]) Ensure(desired []S) (domain.Script, error) {
	start := time.Now()
	opts := []EnsureOption[S, R]{withObserver[S, R](c.forward)}
	if c.sectionEq != nil {
		opts = append(opts, WithSectionSync[S, R](c.sectionEq))
	}
	if c.rowEq != nil {
		opts = append(opts, WithRowSync[S, R](c.rowEq))
	}

	c.begin()
	script, err := c.list.Ensure(desired, opts...)
	c.end()
	if err != nil {
		return nil, err
	}

	if h := c.hooks.OnReconcile; h != nil {
		rows := 0
		for _, s := range desired {
			rows += len(s.Rows())
		}
		h(&domain.ReconcileEvent{
			EventBase: eventBase(domain.EventReconciled),
			Script:    script,
			Sections:  len(desired),
			Rows:      rows,
			Duration:  time.Since(start),
		})
	}
	c.logger.Debug("reconciled", "ops", len(script), "sections", len(desired))
	return script, nil
}

// Set replaces the whole collection and tells the target to reload.
func (c *Controller[S, R, K]) Set(sections []S) {
	c.list.Set(sections)
	c.begin()
	defer c.end()
	c.forward(domain.Op{Kind: domain.OpReload})
}

// InsertSections inserts a run of sections and forwards the new indexes.
func (c *Controller[S, R, K]) InsertSections(sections []S, at int) ([]int, error) {
	indexes, err := c.list.InsertSections(sections, at)
	if err != nil {
		return nil, err
	}
	if len(indexes) > 0 {
		c.begin()
		defer c.end()
		c.forward(domain.Op{Kind: domain.OpInsertSections, Sections: indexes})
	}
	return indexes, nil
}

// ReplaceSection overwrites one section in place and forwards its index.
func (c *Controller[S, R, K]) ReplaceSection(section S, at int) error {
	if err := c.list.ReplaceSection(section, at); err != nil {
		return err
	}
	c.begin()
	defer c.end()
	c.forward(domain.Op{Kind: domain.OpReplaceSections, Sections: []int{at}})
	return nil
}

// ReplaceSectionsFunc overwrites matching sections and forwards the indexes.
func (c *Controller[S, R, K]) ReplaceSectionsFunc(fn func(index int, section S) (S, bool)) []int {
	touched := c.list.ReplaceSectionsFunc(fn)
	if len(touched) > 0 {
		c.begin()
		defer c.end()
		c.forward(domain.Op{Kind: domain.OpReplaceSections, Sections: touched})
	}
	return touched
}

// RemoveSection removes one section and forwards its pre-edit index.
func (c *Controller[S, R, K]) RemoveSection(at int) error {
	if err := c.list.RemoveSection(at); err != nil {
		return err
	}
	c.begin()
	defer c.end()
	c.forward(domain.Op{Kind: domain.OpRemoveSections, Sections: []int{at}})
	return nil
}

// RemoveSections removes the given indexes and forwards the removed set.
func (c *Controller[S, R, K]) RemoveSections(indexes []int) ([]int, error) {
	removed, err := c.list.RemoveSections(indexes)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		c.begin()
		defer c.end()
		c.forward(domain.Op{Kind: domain.OpRemoveSections, Sections: removed})
	}
	return removed, nil
}

// RemoveSectionsFunc removes matching sections and forwards the removed set.
func (c *Controller[S, R, K]) RemoveSectionsFunc(fn func(index int, section S) bool) []int {
	removed := c.list.RemoveSectionsFunc(fn)
	if len(removed) > 0 {
		c.begin()
		defer c.end()
		c.forward(domain.Op{Kind: domain.OpRemoveSections, Sections: removed})
	}
	return removed
}

// InsertRows inserts a run of rows and forwards the new positions.
func (c *Controller[S, R, K]) InsertRows(rows []R, at domain.Position) ([]domain.Position, error) {
	positions, err := c.list.InsertRows(rows, at)
	if err != nil {
		return nil, err
	}
	if len(positions) > 0 {
		c.begin()
		defer c.end()
		c.forward(domain.Op{Kind: domain.OpInsertRows, Positions: positions})
	}
	return positions, nil
}

// AppendRows inserts rows at the end of a section and forwards the positions.
func (c *Controller[S, R, K]) AppendRows(rows []R, section int) ([]domain.Position, error) {
	positions, err := c.list.AppendRows(rows, section)
	if err != nil {
		return nil, err
	}
	if len(positions) > 0 {
		c.begin()
		defer c.end()
		c.forward(domain.Op{Kind: domain.OpInsertRows, Positions: positions})
	}
	return positions, nil
}

// ReplaceRow overwrites one row in place and forwards its position.
func (c *Controller[S, R, K]) ReplaceRow(row R, at domain.Position) error {
	if err := c.list.ReplaceRow(row, at); err != nil {
		return err
	}
	c.begin()
	defer c.end()
	c.forward(domain.Op{Kind: domain.OpReplaceRows, Positions: []domain.Position{at}})
	return nil
}

// ReplaceRowsFunc overwrites matching rows and forwards the positions.
func (c *Controller[S, R, K]) ReplaceRowsFunc(fn func(p domain.Position, section S, row R) (R, bool)) []domain.Position {
	touched := c.list.ReplaceRowsFunc(fn)
	if len(touched) > 0 {
		c.begin()
		defer c.end()
		c.forward(domain.Op{Kind: domain.OpReplaceRows, Positions: touched})
	}
	return touched
}

// RemoveRow removes one row and forwards its pre-edit position.
func (c *Controller[S, R, K]) RemoveRow(at domain.Position) error {
	if err := c.list.RemoveRow(at); err != nil {
		return err
	}
	c.begin()
	defer c.end()
	c.forward(domain.Op{Kind: domain.OpRemoveRows, Positions: []domain.Position{at}})
	return nil
}

// RemoveRows removes the given positions and forwards the removed set.
func (c *Controller[S, R, K]) RemoveRows(positions []domain.Position) ([]domain.Position, error) {
	removed, err := c.list.RemoveRows(positions)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		c.begin()
		defer c.end()
		c.forward(domain.Op{Kind: domain.OpRemoveRows, Positions: removed})
	}
	return removed, nil
}

// RemoveRowsFunc removes matching rows and forwards the removed set.
func (c *Controller[S, R, K]) RemoveRowsFunc(fn func(p domain.Position, section S, row R) bool) []domain.Position {
	removed := c.list.RemoveRowsFunc(fn)
	if len(removed) > 0 {
		c.begin()
		defer c.end()
		c.forward(domain.Op{Kind: domain.OpRemoveRows, Positions: removed})
	}
	return removed
}

// MoveRow moves one row and forwards the source and destination.
func (c *Controller[S, R, K]) MoveRow(from, to domain.Position) error {
	if err := c.list.MoveRow(from, to); err != nil {
		return err
	}
	c.begin()
	defer c.end()
	c.forward(domain.Op{Kind: domain.OpMoveRow, From: &from, To: &to})
	return nil
}

func eventBase(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t}
}
