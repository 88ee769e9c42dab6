package service

import (
	"testing"
	"time"

	"agendo/pkg/model"
)

func TestSweepCancelsExpiredHolds(t *testing.T) {
	now := time.Date(2025, time.August, 11, 12, 0, 0, 0, time.UTC)
	repo := &stubAppointmentRepo{appointments: []*model.Appointment{
		{
			ID:        stubObjectID(1),
			Status:    model.StatusHold,
			CreatedAt: now.Add(-time.Hour), // stale
		},
		{
			ID:        stubObjectID(2),
			Status:    model.StatusHold,
			CreatedAt: now.Add(-time.Minute), // fresh
		},
		{
			ID:        stubObjectID(3),
			Status:    model.StatusConfirmed,
			CreatedAt: now.Add(-2 * time.Hour),
		},
	}}

	pub := &stubPublisher{}
	sweeper := NewHoldSweeper(repo, pub, serviceConfig())
	sweeper.now = func() time.Time { return now }
	sweeper.sweep()

	if repo.appointments[0].Status != model.StatusCancelled {
		t.Errorf("stale hold not cancelled, status %q", repo.appointments[0].Status)
	}
	if repo.appointments[1].Status != model.StatusHold {
		t.Errorf("fresh hold must stay held, status %q", repo.appointments[1].Status)
	}
	if repo.appointments[2].Status != model.StatusConfirmed {
		t.Errorf("confirmed appointment must never be swept, status %q", repo.appointments[2].Status)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected 1 expiry event, got %d", len(pub.messages))
	}
	if pub.messages[0].GetEventType() != EventAppointmentExpired {
		t.Errorf("unexpected event type %q", pub.messages[0].GetEventType())
	}
}

func TestSweeperStartStop(t *testing.T) {
	cfg := serviceConfig()
	cfg.SweepInterval = 10 * time.Millisecond

	sweeper := NewHoldSweeper(&stubAppointmentRepo{}, nil, cfg)
	sweeper.Start()
	time.Sleep(30 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop within a second")
	}
}
