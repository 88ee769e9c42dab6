package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	appterrors "agendo/internal/appointments/errors"
	"agendo/internal/appointments/repository"
	"agendo/internal/appointments/validator"
	"agendo/internal/availability"
	providersrepo "agendo/internal/providers/repository"
	"agendo/pkg/config"
	apperrors "agendo/pkg/errors"
	"agendo/pkg/kafka"
	"agendo/pkg/model"
	"agendo/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Book(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	Cancel(ctx context.Context, id string) error
}

type bookingService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.AppointmentLockRepository
	providers providersrepo.ProviderRepository
	validator *validator.BookingValidator
	producer  EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.AppointmentRepository,
	lockRepo repository.AppointmentLockRepository,
	providers providersrepo.ProviderRepository,
	validator *validator.BookingValidator,
	producer EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		providers: providers,
		validator: validator,
		producer:  producer,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Book validates a requested start against the provider's policy and windows,
// then creates a hold inside a transaction whose overlap check and insert are
// atomic. The advisory slot lock on top keeps two requests for the same start
// from even entering the transaction concurrently.
func (s *bookingService) Book(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Request body cannot be empty")
	}
	s.sanitize(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	provider, err := s.loadProvider(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return nil, apperrors.InvalidInput("Start must be an ISO 8601 instant with offset")
	}
	start = start.UTC()
	now := s.now().UTC()

	if !availability.MeetsLeadTime(start, now, provider.Policy.MinLeadTime()) {
		return nil, apperrors.LeadTime(
			fmt.Sprintf("Start must be at least %s from now", provider.Policy.MinLeadTime()),
		)
	}
	if !availability.InWindow(provider, req.SessionKind, start) {
		return nil, apperrors.OutOfWindow("Start does not match any availability window")
	}

	end := start.Add(provider.Policy.BlockLength())
	appointment := &model.Appointment{
		ProviderID:  req.ProviderID,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		SessionKind: req.SessionKind,
		StartTime:   start,
		EndTime:     end,
		Status:      model.StatusHold,
	}
	if err := s.validator.Validate(appointment); err != nil {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	lockID, err := s.acquireSlotLock(ctx, req.ProviderID, start)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		taken, err := s.repo.HasActiveOverlap(sessCtx, req.ProviderID, start, end)
		if err != nil {
			return apperrors.Storage("Failed to check slot availability", err)
		}
		if taken {
			return apperrors.Conflict("Requested slot is already booked")
		}
		if err := s.repo.Create(sessCtx, appointment); err != nil {
			return apperrors.Storage("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		if appErr := apperrors.AsAppError(err); appErr.Code == apperrors.CodeConflict {
			s.cfg.Log.Info("Booking rejected on conflict",
				"provider_id", req.ProviderID,
				"start_time", start,
			)
		} else {
			s.cfg.Log.Error("Failed to create appointment", "error", err)
		}
		return nil, err
	}

	s.cfg.Log.Info("Appointment created successfully",
		"id", appointment.ID,
		"provider_id", appointment.ProviderID,
		"session_kind", appointment.SessionKind,
		"start_time", appointment.StartTime,
	)
	s.publish(ctx, EventAppointmentCreated, appointment)
	return appointment, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		return nil, apperrors.Storage("Failed to retrieve appointment", err)
	}

	return appointment, nil
}

// Cancel releases a slot. Cancelling an already-cancelled appointment is a
// no-op so clients can retry safely.
func (s *bookingService) Cancel(ctx context.Context, id string) error {
	appointment, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if appointment.Status == model.StatusCancelled {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled); err != nil {
		if errors.Is(err, appterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Appointment", id)
		}
		return apperrors.Storage("Failed to cancel appointment", err)
	}

	appointment.Status = model.StatusCancelled
	s.cfg.Log.Info("Appointment cancelled", "id", id, "provider_id", appointment.ProviderID)
	s.publish(ctx, EventAppointmentCancelled, appointment)
	return nil
}

// --- Helpers ---

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.ProviderID = sanitizer.TrimAndNormalize(req.ProviderID)
	req.ClientName = sanitizer.NormalizeName(req.ClientName)
	req.ClientEmail = sanitizer.NormalizeEmail(req.ClientEmail)
	req.SessionKind = sanitizer.NormalizeKind(req.SessionKind)
	req.Start = sanitizer.TrimAndNormalize(req.Start)
}

func (s *bookingService) loadProvider(ctx context.Context, providerID string) (*model.Provider, error) {
	provider, err := s.providers.FindByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, appterrors.ErrProviderNotFound) {
			return nil, apperrors.NotFoundWithID("Provider", providerID)
		}
		if errors.Is(err, appterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid provider ID format")
		}
		return nil, apperrors.Storage("Failed to load provider", err)
	}
	return provider, nil
}

func (s *bookingService) acquireSlotLock(ctx context.Context, providerID string, start time.Time) (string, error) {
	lock := &model.AppointmentLock{
		ID:        fmt.Sprintf("%s:%s", providerID, start.UTC().Format(time.RFC3339)),
		ExpiresAt: s.now().Add(s.cfg.SlotLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("Requested slot is being booked by another request")
		}
		return "", apperrors.Storage("Failed to acquire slot lock", err)
	}
	return lock.ID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *bookingService) publish(ctx context.Context, eventType string, appointment *model.Appointment) {
	if s.producer == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(appointment.ProviderID).
		WithValue(newAppointmentEvent(appointment)).
		WithEventType(eventType).
		WithSource("agendo").
		Build()

	if err := s.producer.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment event",
			"event_type", eventType,
			"appointment_id", appointment.ID,
			"error", err,
		)
	}
}
