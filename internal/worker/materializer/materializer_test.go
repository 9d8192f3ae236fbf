package materializer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var today = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fakeDirectory struct {
	ids      []uuid.UUID
	listErr  error
	profiles map[uuid.UUID]*directory.AvailabilityProfile
}

func (d *fakeDirectory) ListProfessionalIDs(context.Context) ([]uuid.UUID, error) {
	return d.ids, d.listErr
}

func (d *fakeDirectory) GetAvailabilityProfile(_ context.Context, id uuid.UUID) (*directory.AvailabilityProfile, error) {
	if p, ok := d.profiles[id]; ok {
		return p, nil
	}
	return nil, directory.ErrProfileNotFound
}

type countingCache struct {
	invalidated int
}

func (c *countingCache) Invalidate(context.Context, uuid.UUID, time.Time) error {
	c.invalidated++
	return nil
}

func morning(id uuid.UUID) *directory.AvailabilityProfile {
	return &directory.AvailabilityProfile{
		ProfessionalID: id,
		WorkStartTime:  "09:00",
		WorkEndTime:    "11:00",
		BreakDuration:  60,
	}
}

func newMaterializer(dir *fakeDirectory, store *memory.Store, cache *countingCache, horizon int) *Materializer {
	m := NewMaterializer(dir, store.Slots(), cache, logger.NewNop(), Options{
		Schedule:     "0 3 * * *",
		HorizonDays:  horizon,
		ConflictMode: domain.ConflictExactStart,
	})
	m.timeProvider = fixedTime{t: today.Add(15 * time.Hour)}
	return m
}

func TestRunOnce_FillsHorizon(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	dir := &fakeDirectory{
		ids:      []uuid.UUID{first, second},
		profiles: map[uuid.UUID]*directory.AvailabilityProfile{first: morning(first), second: morning(second)},
	}
	store := memory.NewStore()
	cache := &countingCache{}

	result := newMaterializer(dir, store, cache, 3).RunOnce(context.Background())

	assert.Equal(t, Result{Professionals: 2, Inserted: 12, Failed: 0}, result)
	assert.Equal(t, 6, cache.invalidated)

	slots, err := store.Slots().ListByDate(context.Background(), first, today.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, slots, 2)
	for _, s := range slots {
		assert.True(t, s.IsAvailable)
	}
}

func TestRunOnce_Idempotent(t *testing.T) {
	id := uuid.New()
	dir := &fakeDirectory{
		ids:      []uuid.UUID{id},
		profiles: map[uuid.UUID]*directory.AvailabilityProfile{id: morning(id)},
	}
	store := memory.NewStore()
	cache := &countingCache{}
	m := newMaterializer(dir, store, cache, 2)

	require.Equal(t, 4, m.RunOnce(context.Background()).Inserted)

	again := m.RunOnce(context.Background())

	assert.Equal(t, 0, again.Inserted)
	assert.Equal(t, 2, cache.invalidated)
}

func TestRunOnce_SkipsBookedSlot(t *testing.T) {
	id := uuid.New()
	dir := &fakeDirectory{
		ids:      []uuid.UUID{id},
		profiles: map[uuid.UUID]*directory.AvailabilityProfile{id: morning(id)},
	}
	store := memory.NewStore()
	booked := &domain.Slot{
		ProfessionalID: id,
		Date:           today,
		StartTime:      types.MustTimeString("09:00"),
		EndTime:        types.MustTimeString("10:00"),
		IsAvailable:    false,
	}
	require.NoError(t, store.Slots().Create(context.Background(), booked))

	result := newMaterializer(dir, store, &countingCache{}, 1).RunOnce(context.Background())

	assert.Equal(t, 1, result.Inserted)

	slots, err := store.Slots().ListByDate(context.Background(), id, today)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func TestRunOnce_ProfessionalFailureDoesNotStopRun(t *testing.T) {
	good, missing, broken := uuid.New(), uuid.New(), uuid.New()
	dir := &fakeDirectory{
		ids: []uuid.UUID{missing, broken, good},
		profiles: map[uuid.UUID]*directory.AvailabilityProfile{
			good: morning(good),
			broken: {
				ProfessionalID: broken,
				WorkStartTime:  "18:00",
				WorkEndTime:    "09:00",
				BreakDuration:  60,
			},
		},
	}

	result := newMaterializer(dir, memory.NewStore(), &countingCache{}, 1).RunOnce(context.Background())

	assert.Equal(t, Result{Professionals: 3, Inserted: 2, Failed: 2}, result)
}

func TestRunOnce_ListFailure(t *testing.T) {
	dir := &fakeDirectory{listErr: errors.New("directory down")}

	result := newMaterializer(dir, memory.NewStore(), &countingCache{}, 1).RunOnce(context.Background())

	assert.Equal(t, Result{}, result)
}

func TestStart_InvalidSchedule(t *testing.T) {
	m := NewMaterializer(&fakeDirectory{}, memory.NewStore().Slots(), &countingCache{}, logger.NewNop(), Options{
		Schedule:    "every tuesday",
		HorizonDays: 1,
	})

	err := m.Start()

	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestStartStop(t *testing.T) {
	m := NewMaterializer(&fakeDirectory{}, memory.NewStore().Slots(), &countingCache{}, logger.NewNop(), Options{
		Schedule:    "0 3 * * *",
		HorizonDays: 1,
	})

	require.NoError(t, m.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m.Stop(ctx)
}
