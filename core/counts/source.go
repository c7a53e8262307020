// Package counts defines the boundary to the external passenger-counting
// collaborator. The engine never cares how a count was produced; it only
// consumes the most recent per-stop snapshot.
package counts

import "github.com/transitflow/busalloc/core/model"

// Source exposes the latest observed passenger counts. Implementations must
// be safe for concurrent use; the returned map is a private copy the caller
// may mutate.
type Source interface {
	Snapshot() model.StopCounts
}

// StaticSource serves a fixed counts table. Useful for tests and one-shot
// CLI runs.
type StaticSource map[string]int

// Snapshot returns a copy of the static table.
func (s StaticSource) Snapshot() model.StopCounts {
	out := make(model.StopCounts, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
