package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventBatchBegin EventType = "batch_begin"
	EventOpApplied  EventType = "op_applied"
	EventBatchEnd   EventType = "batch_end"
	EventReconciled EventType = "reconciled"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// BatchEvent marks the opening or closing of one widget batch scope.
type BatchEvent struct {
	EventBase
	Ops int `json:"ops"` // total ops applied; zero on batch_begin
}

// OpEvent carries one applied op, in application order.
type OpEvent struct {
	EventBase
	Op Op `json:"op"`
}

// ReconcileEvent summarizes one completed Ensure call.
type ReconcileEvent struct {
	EventBase
	Script   Script        `json:"script"`
	Sections int           `json:"sections"` // section count after reconciliation
	Rows     int           `json:"rows"`     // row count after reconciliation
	Duration time.Duration `json:"duration_ns"`
}

// UpdateHooks defines callbacks for update observability. All fields are
// optional; hooks run synchronously on the calling goroutine, so they must
// not mutate the collection they observe.
type UpdateHooks struct {
	OnBatchBegin func(*BatchEvent)
	OnOp         func(*OpEvent)
	OnBatchEnd   func(*BatchEvent)
	OnReconcile  func(*ReconcileEvent)
}
