package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	appterrors "agendo/internal/appointments/errors"
	"agendo/internal/appointments/validator"
	"agendo/pkg/civil"
	"agendo/pkg/config"
	mongotx "agendo/pkg/db/mongo"
	apperrors "agendo/pkg/errors"
	"agendo/pkg/kafka"
	"agendo/pkg/logger"
	"agendo/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// --- Stubs ---

type stubAppointmentRepo struct {
	mu           sync.Mutex
	appointments []*model.Appointment
	nextID       int
	failCreate   error
}

func (r *stubAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.nextID++
	a.ID = stubObjectID(r.nextID)
	a.CreatedAt = time.Now().UTC()
	r.appointments = append(r.appointments, a)
	return nil
}

func (r *stubAppointmentRepo) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, appterrors.ErrNotFound
}

func (r *stubAppointmentRepo) FindActiveBetween(ctx context.Context, providerID string, timeMin, timeMax time.Time) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.ProviderID == providerID && isActive(a.Status) && a.StartTime.Before(timeMax) && a.EndTime.After(timeMin) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAppointmentRepo) HasActiveOverlap(ctx context.Context, providerID string, start, end time.Time) (bool, error) {
	for _, a := range r.appointments {
		if a.ProviderID == providerID && isActive(a.Status) && a.StartTime.Before(end) && a.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAppointmentRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return appterrors.ErrNotFound
}

func (r *stubAppointmentRepo) FindExpiredHolds(ctx context.Context, olderThan time.Time, limit int) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.Status == model.StatusHold && a.CreatedAt.Before(olderThan) {
			out = append(out, a)
		}
	}
	return out, nil
}

// ExecuteTransaction serializes callers so the overlap check and insert stay
// atomic, mirroring what the real transaction guarantees.
func (r *stubAppointmentRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(nil)
}

func isActive(status string) bool {
	return status == model.StatusHold || status == model.StatusConfirmed
}

func stubObjectID(n int) string {
	const hex = "0123456789abcdef"
	id := make([]byte, 24)
	for i := range id {
		id[i] = hex[n%16]
	}
	return string(id)
}

type stubLockRepo struct {
	mu   sync.Mutex
	held map[string]bool
}

func newStubLockRepo() *stubLockRepo {
	return &stubLockRepo{held: make(map[string]bool)}
}

func (r *stubLockRepo) Create(ctx context.Context, lock *model.AppointmentLock) (*model.AppointmentLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[lock.ID] {
		return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	}
	r.held[lock.ID] = true
	return lock, nil
}

func (r *stubLockRepo) Delete(ctx context.Context, lockID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, lockID)
	return nil
}

type stubProviderRepo struct {
	provider *model.Provider
	err      error
}

func (r *stubProviderRepo) FindByID(ctx context.Context, id string) (*model.Provider, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.provider, nil
}

type stubPublisher struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (p *stubPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

// --- Fixtures ---

func serviceConfig() *config.Config {
	return &config.Config{
		SlotLockTTL:          10 * time.Second,
		HoldTTL:              30 * time.Minute,
		SweepInterval:        time.Minute,
		ExternalFetchTimeout: 100 * time.Millisecond,
		Log:                  logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard}),
	}
}

func serviceProvider() *model.Provider {
	return &model.Provider{
		ID:   "507f1f77bcf86cd799439011",
		Name: "Dr. Ana Souza",
		Policy: model.ProviderPolicy{
			MinLeadTimeMin:      24 * 60,
			SessionDurationMin:  50,
			BufferBeforeMin:     5,
			BufferAfterMin:      5,
			HorizonBusinessDays: 15,
			UTCOffset:           "-03:00",
		},
		Windows: []model.AvailabilityWindow{
			{DayOfWeek: 1, Start: "13:00", End: "17:00", SessionKinds: []string{"online", "in_person"}},
		},
	}
}

func newTestBookingService(repo *stubAppointmentRepo, locks *stubLockRepo, providers *stubProviderRepo, pub EventPublisher, now time.Time) *bookingService {
	cfg := serviceConfig()
	svc := NewBookingService(repo, locks, providers, validator.NewBookingValidator(cfg.Log), pub, cfg).(*bookingService)
	svc.now = func() time.Time { return now }
	return svc
}

func validRequest(offset civil.Offset) *model.BookingRequest {
	return &model.BookingRequest{
		ProviderID:  "507f1f77bcf86cd799439011",
		ClientName:  "Maria Lima",
		ClientEmail: "maria@example.com",
		SessionKind: "online",
		Start:       offset.ISO(offset.ToUTC(2025, time.August, 11, 14, 0)),
	}
}

// --- Tests ---

func TestBookCreatesHold(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	repo := &stubAppointmentRepo{}
	pub := &stubPublisher{}
	svc := newTestBookingService(repo, newStubLockRepo(), &stubProviderRepo{provider: serviceProvider()}, pub, now)

	got, err := svc.Book(context.Background(), validRequest(offset))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Status != model.StatusHold {
		t.Errorf("expected hold status, got %q", got.Status)
	}
	wantStart := offset.ToUTC(2025, time.August, 11, 14, 0)
	if !got.StartTime.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, got.StartTime)
	}
	if !got.EndTime.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("expected end one block after start, got %v", got.EndTime)
	}
	if got.ID == "" {
		t.Error("expected an appointment ID after create")
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.messages))
	}
	if pub.messages[0].GetEventType() != EventAppointmentCreated {
		t.Errorf("unexpected event type %q", pub.messages[0].GetEventType())
	}
}

func TestBookLeadTimeViolation(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	// Monday 13:30 local: the 14:00 slot is only 30 minutes away.
	now := offset.ToUTC(2025, time.August, 11, 13, 30)
	svc := newTestBookingService(&stubAppointmentRepo{}, newStubLockRepo(), &stubProviderRepo{provider: serviceProvider()}, nil, now)

	_, err := svc.Book(context.Background(), validRequest(offset))
	if err == nil {
		t.Fatal("expected lead-time error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeLeadTime {
		t.Fatalf("expected lead-time code, got %v", err)
	}
}

func TestBookOutOfWindow(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	svc := newTestBookingService(&stubAppointmentRepo{}, newStubLockRepo(), &stubProviderRepo{provider: serviceProvider()}, nil, now)

	req := validRequest(offset)
	req.Start = offset.ISO(offset.ToUTC(2025, time.August, 11, 18, 0))

	_, err := svc.Book(context.Background(), req)
	if err == nil {
		t.Fatal("expected out-of-window error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeOutOfWindow {
		t.Fatalf("expected out-of-window code, got %v", err)
	}
}

func TestBookValidationFailure(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	svc := newTestBookingService(&stubAppointmentRepo{}, newStubLockRepo(), &stubProviderRepo{provider: serviceProvider()}, nil, now)

	req := validRequest(offset)
	req.ClientEmail = "not-an-email"

	_, err := svc.Book(context.Background(), req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestBookUnknownProvider(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	svc := newTestBookingService(&stubAppointmentRepo{}, newStubLockRepo(), &stubProviderRepo{err: appterrors.ErrProviderNotFound}, nil, now)

	_, err := svc.Book(context.Background(), validRequest(offset))
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Fatalf("expected not-found code, got %v", err)
	}
}

func TestBookConflictWithExistingAppointment(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	start := offset.ToUTC(2025, time.August, 11, 14, 0)

	repo := &stubAppointmentRepo{appointments: []*model.Appointment{
		{
			ID:         stubObjectID(9),
			ProviderID: "507f1f77bcf86cd799439011",
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
			Status:     model.StatusConfirmed,
		},
	}}
	svc := newTestBookingService(repo, newStubLockRepo(), &stubProviderRepo{provider: serviceProvider()}, nil, now)

	_, err := svc.Book(context.Background(), validRequest(offset))
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestBookConcurrentSameSlot(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	repo := &stubAppointmentRepo{}
	svc := newTestBookingService(repo, newStubLockRepo(), &stubProviderRepo{provider: serviceProvider()}, nil, now)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), validRequest(offset))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		if apperrors.AsAppError(err).Code == apperrors.CodeConflict {
			conflicts++
			continue
		}
		t.Errorf("unexpected error kind: %v", err)
	}

	if successes != 1 {
		t.Errorf("expected exactly 1 successful booking, got %d", successes)
	}
	if conflicts != attempts-1 {
		t.Errorf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
	if len(repo.appointments) != 1 {
		t.Errorf("expected exactly 1 stored appointment, got %d", len(repo.appointments))
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	repo := &stubAppointmentRepo{}
	pub := &stubPublisher{}
	svc := newTestBookingService(repo, newStubLockRepo(), &stubProviderRepo{provider: serviceProvider()}, pub, now)

	created, err := svc.Book(context.Background(), validRequest(offset))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Cancel(context.Background(), created.ID); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if err := svc.Cancel(context.Background(), created.ID); err != nil {
		t.Fatalf("second cancel must be a no-op, got %v", err)
	}

	stored, err := repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != model.StatusCancelled {
		t.Errorf("expected cancelled status, got %q", stored.Status)
	}
	// created + exactly one cancelled event
	if len(pub.messages) != 2 {
		t.Errorf("expected 2 events, got %d", len(pub.messages))
	}
}

func TestCancelledSlotIsBookableAgain(t *testing.T) {
	offset := civil.MustOffset("-03:00")
	now := offset.ToUTC(2025, time.August, 10, 10, 0)
	repo := &stubAppointmentRepo{}
	svc := newTestBookingService(repo, newStubLockRepo(), &stubProviderRepo{provider: serviceProvider()}, nil, now)

	created, err := svc.Book(context.Background(), validRequest(offset))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Cancel(context.Background(), created.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := svc.Book(context.Background(), validRequest(offset)); err != nil {
		t.Fatalf("expected rebooking a cancelled slot to succeed, got %v", err)
	}
}
