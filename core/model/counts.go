package model

// StopCounts maps a stop identifier to the passenger count observed at that
// stop. How the count is produced (camera, manual tally, turnstile) is the
// counting collaborator's concern; a stop absent from the map means zero
// passengers, never an error.
type StopCounts map[string]int

// Get returns the count for the stop, defaulting to zero for unknown stops.
func (c StopCounts) Get(stop string) int {
	return c[stop]
}

// Clone returns a copy of the counts map. A nil receiver yields an empty,
// non-nil map.
func (c StopCounts) Clone() StopCounts {
	out := make(StopCounts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
