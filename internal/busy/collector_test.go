package busy

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	appterrors "agendo/internal/appointments/errors"
	"agendo/pkg/config"
	apperrors "agendo/pkg/errors"
	"agendo/pkg/logger"
	"agendo/pkg/model"
)

type stubReader struct {
	appointments []*model.Appointment
	err          error
}

func (s *stubReader) FindActiveBetween(ctx context.Context, providerID string, timeMin, timeMax time.Time) ([]*model.Appointment, error) {
	return s.appointments, s.err
}

type stubExternal struct {
	intervals []model.BusyInterval
	err       error
	delay     time.Duration
}

func (s *stubExternal) GetBusyIntervals(ctx context.Context, providerID string, timeMin, timeMax time.Time) ([]model.BusyInterval, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.intervals, s.err
}

func collectorConfig() *config.Config {
	return &config.Config{
		ExternalFetchTimeout: 100 * time.Millisecond,
		Log:                  logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard}),
	}
}

func TestCollectMergesBothSources(t *testing.T) {
	base := time.Date(2025, time.August, 11, 14, 0, 0, 0, time.UTC)

	local := &stubReader{appointments: []*model.Appointment{
		{ProviderID: "p1", StartTime: base, EndTime: base.Add(time.Hour), Status: model.StatusConfirmed},
	}}
	external := &stubExternal{intervals: []model.BusyInterval{
		{Start: base.Add(3 * time.Hour), End: base.Add(4 * time.Hour), Source: model.BusySourceExternal},
	}}

	c := NewCollector(collectorConfig(), local, external)
	got, err := c.Collect(context.Background(), "p1", base.Add(-time.Hour), base.Add(6*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(got))
	}
	if got[0].Source != model.BusySourceLocal {
		t.Errorf("expected local interval first, got %q", got[0].Source)
	}
	if got[1].Source != model.BusySourceExternal {
		t.Errorf("expected external interval second, got %q", got[1].Source)
	}
}

func TestCollectLocalFailureFailsClosed(t *testing.T) {
	local := &stubReader{err: errors.New("mongo down")}
	external := &stubExternal{}

	c := NewCollector(collectorConfig(), local, external)
	_, err := c.Collect(context.Background(), "p1", time.Now(), time.Now().Add(time.Hour))
	if err == nil {
		t.Fatal("expected error when local source fails")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeStorage {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestCollectExternalFailureDegrades(t *testing.T) {
	base := time.Date(2025, time.August, 11, 14, 0, 0, 0, time.UTC)

	local := &stubReader{appointments: []*model.Appointment{
		{ProviderID: "p1", StartTime: base, EndTime: base.Add(time.Hour), Status: model.StatusHold},
	}}
	external := &stubExternal{err: errors.New("network unreachable")}

	c := NewCollector(collectorConfig(), local, external)
	got, err := c.Collect(context.Background(), "p1", base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("expected graceful degrade, got %v", err)
	}
	if len(got) != 1 || got[0].Source != model.BusySourceLocal {
		t.Fatalf("expected only the local interval, got %v", got)
	}
}

func TestCollectNotConnectedIsQuietDegrade(t *testing.T) {
	local := &stubReader{}
	external := &stubExternal{err: appterrors.ErrCalendarNotConnected}

	c := NewCollector(collectorConfig(), local, external)
	got, err := c.Collect(context.Background(), "p1", time.Now(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("expected no error when calendar is not connected, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no intervals, got %v", got)
	}
}

func TestCollectExternalTimeoutDegrades(t *testing.T) {
	base := time.Date(2025, time.August, 11, 14, 0, 0, 0, time.UTC)

	local := &stubReader{appointments: []*model.Appointment{
		{ProviderID: "p1", StartTime: base, EndTime: base.Add(time.Hour), Status: model.StatusConfirmed},
	}}
	external := &stubExternal{delay: time.Second}

	c := NewCollector(collectorConfig(), local, external)

	start := time.Now()
	got, err := c.Collect(context.Background(), "p1", base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("expected degrade on timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("collect took %v, external timeout not enforced", elapsed)
	}
	if len(got) != 1 {
		t.Fatalf("expected only local interval after timeout, got %v", got)
	}
}
