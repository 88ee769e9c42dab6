// Package busy gathers the committed intervals a slot query must avoid:
// active local appointments plus the external calendar's busy blocks.
package busy

import (
	"context"
	"sync"
	"time"

	"agendo/internal/calendar"
	"agendo/pkg/config"
	apperrors "agendo/pkg/errors"
	"agendo/pkg/model"
)

// AppointmentReader is the read-side view of the appointment store the
// collector needs.
type AppointmentReader interface {
	FindActiveBetween(ctx context.Context, providerID string, timeMin, timeMax time.Time) ([]*model.Appointment, error)
}

type Collector struct {
	cfg      *config.Config
	local    AppointmentReader
	external calendar.BusySource
}

func NewCollector(cfg *config.Config, local AppointmentReader, external calendar.BusySource) *Collector {
	return &Collector{
		cfg:      cfg,
		local:    local,
		external: external,
	}
}

// Collect returns the union of local and external busy intervals over
// [timeMin, timeMax). Both sources are queried concurrently. A local failure
// fails the whole call since skipping local conflicts could double-book; an
// external failure only degrades the result to local data.
func (c *Collector) Collect(ctx context.Context, providerID string, timeMin, timeMax time.Time) ([]model.BusyInterval, error) {
	var (
		wg          sync.WaitGroup
		localBusy   []model.BusyInterval
		externBusy  []model.BusyInterval
		errLocal    error
		errExternal error
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		appointments, err := c.local.FindActiveBetween(ctx, providerID, timeMin, timeMax)
		if err != nil {
			c.cfg.Log.Error("Failed to load local busy intervals",
				"provider_id", providerID,
				"error", err,
			)
			errLocal = apperrors.Storage("Failed to load existing appointments", err)
			return
		}
		localBusy = make([]model.BusyInterval, 0, len(appointments))
		for _, a := range appointments {
			localBusy = append(localBusy, model.BusyInterval{
				Start:  a.StartTime,
				End:    a.EndTime,
				Source: model.BusySourceLocal,
			})
		}
	}()

	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.ExternalFetchTimeout)
		defer cancel()

		intervals, err := c.external.GetBusyIntervals(fetchCtx, providerID, timeMin, timeMax)
		if err != nil {
			if calendar.IsNotConnected(err) {
				c.cfg.Log.Debug("No external calendar connection", "provider_id", providerID)
			} else {
				c.cfg.Log.Warn("External calendar fetch failed, degrading to local busy data",
					"provider_id", providerID,
					"error", err,
				)
			}
			errExternal = err
			return
		}
		externBusy = intervals
	}()

	wg.Wait()

	if errLocal != nil {
		return nil, errLocal
	}

	out := localBusy
	if errExternal == nil {
		out = append(out, externBusy...)
	}
	return out, nil
}
