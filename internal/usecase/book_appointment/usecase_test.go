package book_appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	directoryClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var bookingDate = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeDirectory struct {
	customers     map[uuid.UUID]*directoryClient.Customer
	professionals map[uuid.UUID]*directoryClient.Professional
	services      map[uuid.UUID]*directoryClient.Service
	profiles      map[uuid.UUID]*directoryClient.AvailabilityProfile
	err           error
}

func (d *fakeDirectory) GetCustomer(_ context.Context, id uuid.UUID) (*directoryClient.Customer, error) {
	if d.err != nil {
		return nil, d.err
	}
	if c, ok := d.customers[id]; ok {
		return c, nil
	}
	return nil, directoryClient.ErrCustomerNotFound
}

func (d *fakeDirectory) GetProfessional(_ context.Context, id uuid.UUID) (*directoryClient.Professional, error) {
	if p, ok := d.professionals[id]; ok {
		return p, nil
	}
	return nil, directoryClient.ErrProfessionalNotFound
}

func (d *fakeDirectory) GetService(_ context.Context, id uuid.UUID) (*directoryClient.Service, error) {
	if s, ok := d.services[id]; ok {
		return s, nil
	}
	return nil, directoryClient.ErrServiceNotFound
}

func (d *fakeDirectory) GetAvailabilityProfile(_ context.Context, id uuid.UUID) (*directoryClient.AvailabilityProfile, error) {
	if p, ok := d.profiles[id]; ok {
		return p, nil
	}
	return nil, directoryClient.ErrProfileNotFound
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) Invalidate(_ context.Context, professionalID uuid.UUID, date time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, professionalID.String()+"/"+date.Format(types.DateFormat))
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type recordingMetrics struct {
	mu      sync.Mutex
	results []string
}

func (m *recordingMetrics) RecordBooking(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
}

type fixture struct {
	store        *memory.Store
	directory    *fakeDirectory
	cache        *recordingCache
	publisher    *recordingPublisher
	metrics      *recordingMetrics
	uc           *UseCase
	customerID   uuid.UUID
	professional uuid.UUID
	serviceID    uuid.UUID
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	f := &fixture{
		store:        memory.NewStore(),
		cache:        &recordingCache{},
		publisher:    &recordingPublisher{},
		metrics:      &recordingMetrics{},
		customerID:   uuid.New(),
		professional: uuid.New(),
		serviceID:    uuid.New(),
	}
	price := 1500.0
	f.directory = &fakeDirectory{
		customers: map[uuid.UUID]*directoryClient.Customer{
			f.customerID: {ID: f.customerID, Name: "Anna", Email: "anna@example.com"},
		},
		professionals: map[uuid.UUID]*directoryClient.Professional{
			f.professional: {ID: f.professional, Name: "Dr. Petrov", Specialty: "therapist"},
		},
		services: map[uuid.UUID]*directoryClient.Service{
			f.serviceID: {ID: f.serviceID, Name: "Consultation", Price: &price},
		},
		profiles: map[uuid.UUID]*directoryClient.AvailabilityProfile{
			f.professional: {ProfessionalID: f.professional, WorkStartTime: "09:00", WorkEndTime: "12:00", BreakDuration: 60},
		},
	}

	f.uc = NewUseCase(
		f.store.Slots(),
		f.store.Appointments(),
		f.directory,
		f.store.TxManager(),
		f.cache,
		f.publisher,
		f.metrics,
		logger.NewNop(),
		opts,
	)
	f.uc.timeProvider = fixedTime{now: time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)}
	return f
}

func (f *fixture) request(start, end string) *Request {
	return &Request{
		CustomerID:     f.customerID,
		ProfessionalID: f.professional,
		ServiceID:      f.serviceID,
		Date:           bookingDate,
		StartTime:      types.MustTimeString(start),
		EndTime:        types.MustTimeString(end),
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t, Options{})

	resp, err := f.uc.Execute(context.Background(), f.request("10:00", "11:00"))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, "Anna", resp.Customer.Name)
	assert.Equal(t, "Dr. Petrov", resp.Professional.Name)
	assert.Equal(t, "Consultation", resp.Service.Name)
	assert.Equal(t, 1500.0, resp.Service.Price)
	assert.Equal(t, "10:00", resp.Slot.StartTime.String())
	assert.Equal(t, "11:00", resp.Slot.EndTime.String())
	assert.NotEqual(t, uuid.Nil, resp.Slot.ID)

	slot, err := f.store.Slots().GetByStart(context.Background(), f.professional, bookingDate, resp.Slot.StartTime)
	require.NoError(t, err)
	assert.False(t, slot.IsAvailable)

	appointment, err := f.store.Appointments().GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Slot.ID, appointment.SlotID)

	assert.Equal(t, []string{f.professional.String() + "/2025-07-01"}, f.cache.invalidated)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.TypeCreated, f.publisher.events[0].Type)
	assert.Equal(t, resp.ID, f.publisher.events[0].AppointmentID)
	assert.Equal(t, []string{metrics.ResultSuccess}, f.metrics.results)
}

func TestExecute_SlotTakenTwice(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.uc.Execute(context.Background(), f.request("10:00", "11:00"))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), f.request("10:00", "11:00"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.Equal(t, []string{metrics.ResultSuccess, metrics.ResultConflict}, f.metrics.results)
}

func TestExecute_ConcurrentDoubleBooking(t *testing.T) {
	f := newFixture(t, Options{})

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), f.request("11:00", "12:00"))
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotUnavailable)
	}
	assert.Equal(t, 1, succeeded)

	list, err := f.store.Appointments().List(context.Background(), domain.AppointmentFilter{ProfessionalID: &f.professional})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestExecute_ClaimsMaterializedSlot(t *testing.T) {
	f := newFixture(t, Options{})
	free := domain.Slot{
		ProfessionalID: f.professional,
		Date:           bookingDate,
		StartTime:      types.MustTimeString("09:00"),
		EndTime:        types.MustTimeString("10:00"),
	}
	_, err := f.store.Slots().CreateFree(context.Background(), []domain.Slot{free})
	require.NoError(t, err)
	stored, err := f.store.Slots().GetByStart(context.Background(), f.professional, bookingDate, free.StartTime)
	require.NoError(t, err)

	resp, err := f.uc.Execute(context.Background(), f.request("09:00", "10:00"))
	require.NoError(t, err)

	assert.Equal(t, stored.ID, resp.Slot.ID)
	slot, err := f.store.Slots().GetByStart(context.Background(), f.professional, bookingDate, stored.StartTime)
	require.NoError(t, err)
	assert.False(t, slot.IsAvailable)
}

func TestExecute_StoredSlotOffGrid(t *testing.T) {
	f := newFixture(t, Options{})
	// слот сохранен, когда сеанс длился 30 минут
	stale := domain.Slot{
		ProfessionalID: f.professional,
		Date:           bookingDate,
		StartTime:      types.MustTimeString("10:00"),
		EndTime:        types.MustTimeString("10:30"),
	}
	_, err := f.store.Slots().CreateFree(context.Background(), []domain.Slot{stale})
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), f.request("10:00", "11:00"))

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	slot, err := f.store.Slots().GetByStart(context.Background(), f.professional, bookingDate, stale.StartTime)
	require.NoError(t, err)
	assert.True(t, slot.IsAvailable)
	assert.Equal(t, "10:30", slot.EndTime.String())

	list, err := f.store.Appointments().List(context.Background(), domain.AppointmentFilter{ProfessionalID: &f.professional})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExecute_ConflictModes(t *testing.T) {
	tests := []struct {
		name    string
		mode    domain.ConflictMode
		wantErr error
	}{
		{name: "exact start ignores overlapping booking", mode: domain.ConflictExactStart},
		{name: "overlap rejects overlapping booking", mode: domain.ConflictOverlap, wantErr: ErrSlotUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{ConflictMode: tt.mode})
			// занятый слот со старой сеткой, пересекающий 10:00-11:00
			legacy := &domain.Slot{
				ProfessionalID: f.professional,
				Date:           bookingDate,
				StartTime:      types.MustTimeString("10:30"),
				EndTime:        types.MustTimeString("11:30"),
			}
			require.NoError(t, f.store.Slots().Create(context.Background(), legacy))

			_, err := f.uc.Execute(context.Background(), f.request("10:00", "11:00"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, req *Request)
		wantErr error
	}{
		{
			name:    "unknown customer",
			mutate:  func(_ *fixture, req *Request) { req.CustomerID = uuid.New() },
			wantErr: ErrCustomerNotFound,
		},
		{
			name:    "unknown professional",
			mutate:  func(_ *fixture, req *Request) { req.ProfessionalID = uuid.New() },
			wantErr: ErrProfessionalNotFound,
		},
		{
			name:    "unknown service",
			mutate:  func(_ *fixture, req *Request) { req.ServiceID = uuid.New() },
			wantErr: ErrServiceNotFound,
		},
		{
			name:    "no availability profile",
			mutate:  func(f *fixture, _ *Request) { delete(f.directory.profiles, f.professional) },
			wantErr: ErrAvailabilityNotFound,
		},
		{
			name: "off grid start",
			mutate: func(_ *fixture, req *Request) {
				req.StartTime = types.MustTimeString("10:30")
				req.EndTime = types.MustTimeString("11:30")
			},
			wantErr: ErrInvalidTimeSlot,
		},
		{
			name:    "wrong length",
			mutate:  func(_ *fixture, req *Request) { req.EndTime = types.MustTimeString("12:00") },
			wantErr: ErrInvalidTimeSlot,
		},
		{
			name:    "outside working hours",
			mutate:  func(_ *fixture, req *Request) { req.StartTime, req.EndTime = types.MustTimeString("12:00"), types.MustTimeString("13:00") },
			wantErr: ErrInvalidTimeSlot,
		},
		{
			name: "inverted availability window",
			mutate: func(f *fixture, _ *Request) {
				f.directory.profiles[f.professional].WorkStartTime = "13:00"
			},
			wantErr: ErrInvalidAvailabilityWindow,
		},
		{
			name:    "start after end",
			mutate:  func(_ *fixture, req *Request) { req.StartTime, req.EndTime = req.EndTime, req.StartTime },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing customer id",
			mutate:  func(_ *fixture, req *Request) { req.CustomerID = uuid.Nil },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing date",
			mutate:  func(_ *fixture, req *Request) { req.Date = time.Time{} },
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			req := f.request("10:00", "11:00")
			tt.mutate(f, req)

			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.publisher.events)
			assert.Equal(t, []string{metrics.ResultRejected}, f.metrics.results)
		})
	}
}

func TestExecute_NotFoundKinds(t *testing.T) {
	f := newFixture(t, Options{})
	req := f.request("10:00", "11:00")
	req.CustomerID = uuid.New()

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExecute_DirectoryFailure(t *testing.T) {
	f := newFixture(t, Options{})
	f.directory.err = directoryClient.ErrInternal

	_, err := f.uc.Execute(context.Background(), f.request("10:00", "11:00"))

	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, []string{metrics.ResultError}, f.metrics.results)
}

func TestExecute_PublishFailureKeepsAppointment(t *testing.T) {
	f := newFixture(t, Options{})
	f.publisher.err = errors.New("broker unavailable")

	resp, err := f.uc.Execute(context.Background(), f.request("10:00", "11:00"))
	require.NoError(t, err)

	_, err = f.store.Appointments().GetByID(context.Background(), resp.ID)
	assert.NoError(t, err)
}
