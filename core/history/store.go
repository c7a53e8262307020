// Package history persists completed allocation runs so operators can audit
// past dispatch cycles. The engine itself stays stateless; the store sits
// behind the transport layer.
package history

import (
	"context"
	"time"

	"github.com/transitflow/busalloc/core/model"
)

// Record captures one completed allocation run.
type Record struct {
	RunID        string              `json:"run_id"`
	Timestamp    time.Time           `json:"timestamp"`
	TotalBuses   int                 `json:"total_buses"`
	CycleSeconds int                 `json:"cycle_seconds"`
	SavedBuses   int                 `json:"saved_buses"`
	Routes       []model.RouteResult `json:"routes"`
	StopCounts   map[string]int      `json:"stop_counts"`
}

// Query filters records. Zero values mean no constraint.
type Query struct {
	Start   time.Time
	End     time.Time
	RouteID int
}

// Matches reports whether the record satisfies the query.
func (q Query) Matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RouteID != 0 {
		for _, rt := range r.Routes {
			if rt.RouteID == q.RouteID {
				return true
			}
		}
		return false
	}
	return true
}

// Store persists and retrieves allocation records.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
