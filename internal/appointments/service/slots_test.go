package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"agendo/internal/busy"
	"agendo/pkg/civil"
	apperrors "agendo/pkg/errors"
	"agendo/pkg/model"
)

type stubBusySource struct {
	intervals []model.BusyInterval
	err       error
}

func (s *stubBusySource) GetBusyIntervals(ctx context.Context, providerID string, timeMin, timeMax time.Time) ([]model.BusyInterval, error) {
	return s.intervals, s.err
}

func newTestSlotService(repo *stubAppointmentRepo, providers *stubProviderRepo, external *stubBusySource, now time.Time) *slotService {
	cfg := serviceConfig()
	collector := busy.NewCollector(cfg, repo, external)
	svc := NewSlotService(providers, collector, cfg).(*slotService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestListSlotsDefaultHorizon(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	// Sunday 10:00 local; the provider only opens Mondays 13:00-17:00.
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	svc := newTestSlotService(&stubAppointmentRepo{}, &stubProviderRepo{provider: serviceProvider()}, &stubBusySource{}, now)

	got, err := svc.ListSlots(context.Background(), "507f1f77bcf86cd799439011", "online", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) == 0 {
		t.Fatal("expected slots over the default horizon")
	}
	if got[0] != "2025-08-11T13:00:00-03:00" {
		t.Errorf("expected first slot Monday 13:00 local, got %q", got[0])
	}
	for _, s := range got {
		if !strings.HasSuffix(s, "-03:00") {
			t.Errorf("slot %q not rendered in the provider's fixed offset", s)
		}
	}
}

func TestListSlotsExcludesLocalBusy(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	booked := offset.ToUTC(2025, time.August, 11, 14, 0)

	repo := &stubAppointmentRepo{appointments: []*model.Appointment{
		{
			ID:         stubObjectID(3),
			ProviderID: "507f1f77bcf86cd799439011",
			StartTime:  booked,
			EndTime:    booked.Add(time.Hour),
			Status:     model.StatusHold,
		},
	}}
	svc := newTestSlotService(repo, &stubProviderRepo{provider: serviceProvider()}, &stubBusySource{}, now)

	got, err := svc.ListSlots(context.Background(), "507f1f77bcf86cd799439011", "online", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range got {
		if s == "2025-08-11T14:00:00-03:00" {
			t.Error("held slot leaked into the listing")
		}
	}
}

func TestListSlotsExcludesExternalBusy(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	busyStart := offset.ToUTC(2025, time.August, 11, 15, 0)

	external := &stubBusySource{intervals: []model.BusyInterval{
		{Start: busyStart, End: busyStart.Add(30 * time.Minute), Source: model.BusySourceExternal},
	}}
	svc := newTestSlotService(&stubAppointmentRepo{}, &stubProviderRepo{provider: serviceProvider()}, external, now)

	got, err := svc.ListSlots(context.Background(), "507f1f77bcf86cd799439011", "online", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range got {
		if s == "2025-08-11T15:00:00-03:00" {
			t.Error("externally busy slot leaked into the listing")
		}
	}
}

func TestListSlotsDegradesWhenExternalFails(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	booked := offset.ToUTC(2025, time.August, 11, 13, 0)

	repo := &stubAppointmentRepo{appointments: []*model.Appointment{
		{
			ID:         stubObjectID(4),
			ProviderID: "507f1f77bcf86cd799439011",
			StartTime:  booked,
			EndTime:    booked.Add(time.Hour),
			Status:     model.StatusConfirmed,
		},
	}}
	external := &stubBusySource{err: errors.New("calendar api unreachable")}
	svc := newTestSlotService(repo, &stubProviderRepo{provider: serviceProvider()}, external, now)

	got, err := svc.ListSlots(context.Background(), "507f1f77bcf86cd799439011", "online", nil, nil)
	if err != nil {
		t.Fatalf("expected graceful degrade, got %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected a non-empty listing despite external failure")
	}
	for _, s := range got {
		if s == "2025-08-11T13:00:00-03:00" {
			t.Error("local conflict ignored while external source was down")
		}
	}
}

func TestListSlotsIdempotent(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	svc := newTestSlotService(&stubAppointmentRepo{}, &stubProviderRepo{provider: serviceProvider()}, &stubBusySource{}, now)

	first, err := svc.ListSlots(context.Background(), "507f1f77bcf86cd799439011", "online", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.ListSlots(context.Background(), "507f1f77bcf86cd799439011", "online", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("listings differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("listing differs at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestListSlotsExplicitWindow(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	svc := newTestSlotService(&stubAppointmentRepo{}, &stubProviderRepo{provider: serviceProvider()}, &stubBusySource{}, now)

	from := offset.ToUTC(2025, time.August, 11, 0, 0)
	to := offset.ToUTC(2025, time.August, 12, 0, 0)

	got, err := svc.ListSlots(context.Background(), "507f1f77bcf86cd799439011", "online", &from, &to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"2025-08-11T13:00:00-03:00",
		"2025-08-11T14:00:00-03:00",
		"2025-08-11T15:00:00-03:00",
		"2025-08-11T16:00:00-03:00",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestListSlotsUnusablePolicyMeansNoAvailability(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)

	provider := serviceProvider()
	provider.Policy.UTCOffset = "not-an-offset"
	svc := newTestSlotService(&stubAppointmentRepo{}, &stubProviderRepo{provider: provider}, &stubBusySource{}, now)

	got, err := svc.ListSlots(context.Background(), "507f1f77bcf86cd799439011", "online", nil, nil)
	if err != nil {
		t.Fatalf("unusable policy must read as no availability, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no slots, got %v", got)
	}
}

func TestListSlotsRejectsBadInput(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	svc := newTestSlotService(&stubAppointmentRepo{}, &stubProviderRepo{provider: serviceProvider()}, &stubBusySource{}, now)

	if _, err := svc.ListSlots(context.Background(), "", "online", nil, nil); err == nil {
		t.Error("expected error for empty provider ID")
	}
	_, err := svc.ListSlots(context.Background(), "507f1f77bcf86cd799439011", "hybrid", nil, nil)
	if err == nil {
		t.Fatal("expected error for unknown session kind")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid-input code, got %v", err)
	}

	from := offset.ToUTC(2025, time.August, 12, 0, 0)
	to := offset.ToUTC(2025, time.August, 11, 0, 0)
	if _, err := svc.ListSlots(context.Background(), "507f1f77bcf86cd799439011", "online", &from, &to); err == nil {
		t.Error("expected error for inverted query window")
	}
}
