// Package availability holds the slot arithmetic: candidate enumeration over
// the booking horizon and the single conflict-resolution pass shared by the
// listing and booking paths.
package availability

import (
	"fmt"
	"sort"
	"time"

	"agendo/pkg/civil"
	"agendo/pkg/model"
)

// Candidates enumerates the candidate session start instants for a provider
// and session kind within the UTC range [from, to). Starts are placed at
// block-length stride from each window's start; a start is emitted only when
// the full block fits inside the window. Output is ascending and
// duplicate-free.
func Candidates(p *model.Provider, kind string, from, to time.Time) ([]time.Time, error) {
	offset, err := civil.ParseOffset(p.Policy.UTCOffset)
	if err != nil {
		return nil, fmt.Errorf("provider %s has invalid utc_offset: %w", p.ID, err)
	}

	blockMin := int(p.Policy.BlockLength() / time.Minute)
	if blockMin <= 0 {
		return nil, fmt.Errorf("provider %s has no usable policy (block length %d min)", p.ID, blockMin)
	}

	var out []time.Time

	// Walk civil days in the provider's zone. The range ends are UTC, so the
	// walk covers one extra day on each side and the per-candidate range
	// check below does the trimming.
	localFrom := offset.Local(from)
	localTo := offset.Local(to)
	day := time.Date(localFrom.Year(), localFrom.Month(), localFrom.Day(), 0, 0, 0, 0, offset.Location())
	lastDay := time.Date(localTo.Year(), localTo.Month(), localTo.Day(), 0, 0, 0, 0, offset.Location())

	for ; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		windows := p.WindowsFor(int(day.Weekday()), kind)
		if len(windows) == 0 {
			continue
		}

		for _, w := range windows {
			startMin, err := civil.ClockMinutes(w.Start)
			if err != nil {
				return nil, fmt.Errorf("provider %s window has invalid start: %w", p.ID, err)
			}
			endMin, err := civil.ClockMinutes(w.End)
			if err != nil {
				return nil, fmt.Errorf("provider %s window has invalid end: %w", p.ID, err)
			}

			// Last valid start leaves room for the whole block.
			for m := startMin; m+blockMin <= endMin; m += blockMin {
				start := offset.ToUTC(day.Year(), day.Month(), day.Day(), m/60, m%60)
				if start.Before(from) || !start.Before(to) {
					continue
				}
				out = append(out, start)
			}
		}
	}

	return dedupeSorted(out), nil
}

// DefaultHorizon computes the default query range for a provider: from now
// until the end of the N-th business day (Monday through Friday), counting
// today when it qualifies. Both bounds are UTC.
func DefaultHorizon(p *model.Provider, now time.Time) (time.Time, time.Time, error) {
	offset, err := civil.ParseOffset(p.Policy.UTCOffset)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("provider %s has invalid utc_offset: %w", p.ID, err)
	}

	remaining := p.Policy.HorizonBusinessDays
	if remaining <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("provider %s has no booking horizon configured", p.ID)
	}

	local := offset.Local(now)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, offset.Location())
	for {
		if isBusinessDay(day.Weekday()) {
			remaining--
			if remaining == 0 {
				break
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	// End of the last qualifying day, exclusive.
	end := day.AddDate(0, 0, 1).UTC()
	return now, end, nil
}

func isBusinessDay(d time.Weekday) bool {
	return d != time.Saturday && d != time.Sunday
}

func dedupeSorted(ts []time.Time) []time.Time {
	if len(ts) == 0 {
		return ts
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
	out := ts[:1]
	for _, t := range ts[1:] {
		if !t.Equal(out[len(out)-1]) {
			out = append(out, t)
		}
	}
	return out
}
