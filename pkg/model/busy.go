package model

import "time"

const (
	BusySourceLocal    = "local"
	BusySourceExternal = "external"
)

// BusyInterval is a half-open [Start, End) range during which the provider
// is already committed. Derived per query from local appointments and the
// external calendar; never persisted.
type BusyInterval struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Source string    `json:"source"`
}

// Overlaps reports whether two half-open intervals intersect.
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && b.Start.Before(end)
}
