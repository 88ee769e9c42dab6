package availability

import (
	"time"

	"agendo/pkg/civil"
	"agendo/pkg/model"
)

// Overlaps is the half-open interval intersection test used everywhere a
// conflict decision is made. [aStart, aEnd) and [bStart, bEnd) intersect iff
// each starts before the other ends.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ConflictsAny reports whether [start, end) intersects any busy interval.
func ConflictsAny(start, end time.Time, busy []model.BusyInterval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// MeetsLeadTime reports whether a start satisfies the minimum lead time.
// The boundary is inclusive: a start exactly at now+lead is bookable.
func MeetsLeadTime(start, now time.Time, lead time.Duration) bool {
	return !start.Before(now.Add(lead))
}

// InWindow reports whether a start instant lands on the provider's candidate
// grid for the session kind: inside some window for that local day-of-week,
// aligned at block-length stride from the window start, with the full block
// fitting before the window end. This is the predicate the booking path runs
// on client-submitted times that never went through the enumerator.
func InWindow(p *model.Provider, kind string, start time.Time) bool {
	offset, err := civil.ParseOffset(p.Policy.UTCOffset)
	if err != nil {
		return false
	}
	blockMin := int(p.Policy.BlockLength() / time.Minute)
	if blockMin <= 0 {
		return false
	}

	local := offset.Local(start)
	if local.Second() != 0 || local.Nanosecond() != 0 {
		return false
	}
	startMin := local.Hour()*60 + local.Minute()

	for _, w := range p.WindowsFor(int(local.Weekday()), kind) {
		winStart, err := civil.ClockMinutes(w.Start)
		if err != nil {
			continue
		}
		winEnd, err := civil.ClockMinutes(w.End)
		if err != nil {
			continue
		}
		if startMin < winStart || startMin+blockMin > winEnd {
			continue
		}
		if (startMin-winStart)%blockMin == 0 {
			return true
		}
	}
	return false
}

// Filter applies the full conflict-resolution pass to a candidate set: lead
// time, window membership recheck, and busy-interval overlap. Output is
// ascending and duplicate-free.
func Filter(p *model.Provider, kind string, candidates []time.Time, busy []model.BusyInterval, now time.Time) []time.Time {
	lead := p.Policy.MinLeadTime()
	block := p.Policy.BlockLength()

	out := make([]time.Time, 0, len(candidates))
	for _, c := range candidates {
		if !MeetsLeadTime(c, now, lead) {
			continue
		}
		if !InWindow(p, kind, c) {
			continue
		}
		if ConflictsAny(c, c.Add(block), busy) {
			continue
		}
		out = append(out, c)
	}
	return dedupeSorted(out)
}
