package service

import (
	"context"
	"time"

	"agendo/internal/appointments/repository"
	"agendo/pkg/config"
	"agendo/pkg/kafka"
	"agendo/pkg/model"
)

const sweepBatchSize = 100

// HoldSweeper cancels holds that were never confirmed within the hold TTL,
// releasing their slots for other clients.
type HoldSweeper struct {
	repo     repository.AppointmentRepository
	producer EventPublisher
	cfg      *config.Config
	stop     chan struct{}
	done     chan struct{}
	now      func() time.Time
}

func NewHoldSweeper(repo repository.AppointmentRepository, producer EventPublisher, cfg *config.Config) *HoldSweeper {
	return &HoldSweeper{
		repo:     repo,
		producer: producer,
		cfg:      cfg,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		now:      time.Now,
	}
}

// Start runs the sweep loop until Stop is called.
func (s *HoldSweeper) Start() {
	go s.run()
	s.cfg.Log.Info("Hold sweeper started",
		"hold_ttl", s.cfg.HoldTTL,
		"sweep_interval", s.cfg.SweepInterval,
	)
}

func (s *HoldSweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *HoldSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SweepInterval)
	defer cancel()

	cutoff := s.now().UTC().Add(-s.cfg.HoldTTL)
	expired, err := s.repo.FindExpiredHolds(ctx, cutoff, sweepBatchSize)
	if err != nil {
		s.cfg.Log.Error("Hold sweep query failed", "error", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	cancelled := 0
	for _, a := range expired {
		if err := s.repo.UpdateStatus(ctx, a.ID, model.StatusCancelled); err != nil {
			s.cfg.Log.Error("Failed to cancel expired hold", "id", a.ID, "error", err)
			continue
		}
		a.Status = model.StatusCancelled
		s.publish(ctx, a)
		cancelled++
	}

	s.cfg.Log.Info("Hold sweep completed",
		"expired", len(expired),
		"cancelled", cancelled,
		"cutoff", cutoff,
	)
}

func (s *HoldSweeper) publish(ctx context.Context, a *model.Appointment) {
	if s.producer == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(a.ProviderID).
		WithValue(newAppointmentEvent(a)).
		WithEventType(EventAppointmentExpired).
		WithSource("agendo").
		Build()

	if err := s.producer.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish expiry event", "appointment_id", a.ID, "error", err)
	}
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (s *HoldSweeper) Stop() {
	close(s.stop)
	<-s.done
}
