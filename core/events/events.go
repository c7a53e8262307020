// Package events defines the allocation related events emitted on the event
// bus.
//
// Available event types:
//   - CountsEvent: a stop reported a new passenger count
//   - AllocationEvent: an allocation run completed
package events

import (
	"time"

	"github.com/transitflow/busalloc/core/model"
)

// CountsEvent is published when the counting collaborator reports a new
// count for a stop.
type CountsEvent struct {
	StopID string
	Count  int
	Time   time.Time
}

// AllocationEvent is published after an allocation run completes.
type AllocationEvent struct {
	RunID    string
	Request  model.FleetRequest
	Result   model.AllocationResult
	Duration time.Duration
	Time     time.Time
}
