package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	slotRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var day = time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

func newSlot(professionalID uuid.UUID, start, end string) *domain.Slot {
	return &domain.Slot{
		ProfessionalID: professionalID,
		Date:           day,
		StartTime:      types.MustTimeString(start),
		EndTime:        types.MustTimeString(end),
	}
}

func TestSlotRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Slots()
	professionalID := uuid.New()

	first := newSlot(professionalID, "10:00", "11:00")
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)

	err := repo.Create(ctx, newSlot(professionalID, "10:00", "11:00"))
	assert.ErrorIs(t, err, slotRepo.ErrSlotAlreadyExists)

	// другой профессионал может иметь слот с тем же временем
	require.NoError(t, repo.Create(ctx, newSlot(uuid.New(), "10:00", "11:00")))

	got, err := repo.GetByStart(ctx, professionalID, day, types.MustTimeString("10:00"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = repo.GetByStart(ctx, professionalID, day, types.MustTimeString("11:00"))
	assert.ErrorIs(t, err, slotRepo.ErrSlotNotFound)
}

func TestSlotRepository_CreateFreeAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Slots()
	professionalID := uuid.New()

	taken := newSlot(professionalID, "10:00", "11:00")
	require.NoError(t, repo.Create(ctx, taken))

	inserted, err := repo.CreateFree(ctx, []domain.Slot{
		*newSlot(professionalID, "11:00", "12:00"),
		*newSlot(professionalID, "10:00", "11:00"),
		*newSlot(professionalID, "09:00", "10:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	list, err := repo.ListByDate(ctx, professionalID, day)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "09:00", list[0].StartTime.String())
	assert.Equal(t, "10:00", list[1].StartTime.String())
	assert.Equal(t, taken.ID, list[1].ID)
	assert.Equal(t, "11:00", list[2].StartTime.String())

	require.NoError(t, repo.SetAvailability(ctx, list[0].ID, false))
	got, err := repo.GetByStart(ctx, professionalID, day, list[0].StartTime)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)

	assert.ErrorIs(t, repo.SetAvailability(ctx, uuid.New(), true), slotRepo.ErrSlotNotFound)
}

func TestAppointmentRepository_ActiveSlotClaim(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Appointments()
	slot := newSlot(uuid.New(), "10:00", "11:00")
	slot.ID = uuid.New()
	now := time.Now()

	first := domain.NewAppointment(uuid.New(), slot.ProfessionalID, uuid.New(), slot, now)
	require.NoError(t, repo.Create(ctx, first))

	second := domain.NewAppointment(uuid.New(), slot.ProfessionalID, uuid.New(), slot, now)
	assert.ErrorIs(t, repo.Create(ctx, second), appointmentRepo.ErrSlotAlreadyClaimed)

	active, err := repo.HasActiveForSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, active)

	// после отмены слот больше не удерживается
	require.NoError(t, repo.UpdateStatus(ctx, first.ID, domain.StatusCancelled, now))
	active, err = repo.HasActiveForSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, repo.Create(ctx, second))

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), appointmentRepo.ErrAppointmentNotFound)
	require.NoError(t, repo.Delete(ctx, second.ID))
	_, err = repo.GetByID(ctx, second.ID)
	assert.ErrorIs(t, err, appointmentRepo.ErrAppointmentNotFound)
}

func TestAppointmentRepository_ListFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Appointments()
	professionalID := uuid.New()
	customerID := uuid.New()
	now := time.Now()

	early := newSlot(professionalID, "09:00", "10:00")
	early.ID = uuid.New()
	late := newSlot(professionalID, "15:00", "16:00")
	late.ID = uuid.New()
	nextDay := newSlot(professionalID, "09:00", "10:00")
	nextDay.ID = uuid.New()
	nextDay.Date = day.AddDate(0, 0, 1)

	a1 := domain.NewAppointment(customerID, professionalID, uuid.New(), early, now)
	a2 := domain.NewAppointment(uuid.New(), professionalID, uuid.New(), late, now)
	a3 := domain.NewAppointment(customerID, professionalID, uuid.New(), nextDay, now)
	for _, a := range []*domain.Appointment{a1, a2, a3} {
		require.NoError(t, repo.Create(ctx, a))
	}
	require.NoError(t, repo.UpdateStatus(ctx, a2.ID, domain.StatusApproved, now))

	all, err := repo.List(ctx, domain.AppointmentFilter{ProfessionalID: &professionalID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{a3.ID, a2.ID, a1.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	byCustomer, err := repo.List(ctx, domain.AppointmentFilter{CustomerID: &customerID})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 2)

	approved := domain.StatusApproved
	filtered, err := repo.List(ctx, domain.AppointmentFilter{ProfessionalID: &professionalID, Status: &approved})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, a2.ID, filtered[0].ID)
}

func TestTxManager_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	slots := store.Slots()
	professionalID := uuid.New()
	boom := errors.New("boom")

	err := store.TxManager().DoSerializable(ctx, func(txCtx context.Context) error {
		require.NoError(t, slots.Create(txCtx, newSlot(professionalID, "10:00", "11:00")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := slots.ListByDate(ctx, professionalID, day)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = store.TxManager().Do(ctx, func(txCtx context.Context) error {
		return slots.Create(txCtx, newSlot(professionalID, "10:00", "11:00"))
	})
	require.NoError(t, err)

	list, err = slots.ListByDate(ctx, professionalID, day)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTxManager_RollbackOnPanic(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	slots := store.Slots()
	professionalID := uuid.New()

	assert.Panics(t, func() {
		_ = store.TxManager().Do(ctx, func(txCtx context.Context) error {
			_ = slots.Create(txCtx, newSlot(professionalID, "10:00", "11:00"))
			panic("unexpected")
		})
	})

	// мьютекс освобожден, изменения откатились
	list, err := slots.ListByDate(ctx, professionalID, day)
	require.NoError(t, err)
	assert.Empty(t, list)
}
