package service

import (
	"context"
	"errors"
	"time"

	appterrors "agendo/internal/appointments/errors"
	"agendo/internal/availability"
	"agendo/internal/busy"
	providersrepo "agendo/internal/providers/repository"
	"agendo/pkg/civil"
	"agendo/pkg/config"
	apperrors "agendo/pkg/errors"
	"agendo/pkg/model"
)

type SlotService interface {
	// ListSlots returns the bookable start instants for a provider and
	// session kind as fixed-offset ISO 8601 strings, ascending. A nil from/to
	// selects the provider's default booking horizon.
	ListSlots(ctx context.Context, providerID, sessionKind string, from, to *time.Time) ([]string, error)
}

type slotService struct {
	providers providersrepo.ProviderRepository
	collector *busy.Collector
	cfg       *config.Config
	now       func() time.Time
}

func NewSlotService(
	providers providersrepo.ProviderRepository,
	collector *busy.Collector,
	cfg *config.Config,
) SlotService {
	return &slotService{
		providers: providers,
		collector: collector,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *slotService) ListSlots(ctx context.Context, providerID, sessionKind string, from, to *time.Time) ([]string, error) {
	if providerID == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}
	if sessionKind != model.KindOnline && sessionKind != model.KindInPerson {
		return nil, apperrors.InvalidInput("Session kind must be 'online' or 'in_person'")
	}

	provider, err := s.loadProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	var timeMin, timeMax time.Time
	if from != nil && to != nil {
		timeMin, timeMax = from.UTC(), to.UTC()
		if !timeMin.Before(timeMax) {
			return nil, apperrors.InvalidInput("Query window start must be before its end")
		}
		// Never list the past.
		if timeMin.Before(now) {
			timeMin = now
		}
	} else {
		timeMin, timeMax, err = availability.DefaultHorizon(provider, now)
		if err != nil {
			// An unusable policy means "no availability", not a hard error.
			s.cfg.Log.Warn("Provider has unusable policy", "provider_id", providerID, "error", err)
			return []string{}, nil
		}
	}

	candidates, err := availability.Candidates(provider, sessionKind, timeMin, timeMax)
	if err != nil {
		s.cfg.Log.Error("Failed to enumerate candidates", "provider_id", providerID, "error", err)
		return nil, apperrors.Internal("Failed to compute availability", err)
	}

	busyIntervals, err := s.collector.Collect(ctx, providerID, timeMin, timeMax)
	if err != nil {
		return nil, err
	}

	slots := availability.Filter(provider, sessionKind, candidates, busyIntervals, now)

	offset, err := civil.ParseOffset(provider.Policy.UTCOffset)
	if err != nil {
		return nil, apperrors.Internal("Provider has invalid UTC offset", err)
	}

	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		out = append(out, offset.ISO(slot))
	}

	s.cfg.Log.Debug("Slot listing completed",
		"provider_id", providerID,
		"session_kind", sessionKind,
		"candidates", len(candidates),
		"busy_intervals", len(busyIntervals),
		"slots", len(out),
	)
	return out, nil
}

func (s *slotService) loadProvider(ctx context.Context, providerID string) (*model.Provider, error) {
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
