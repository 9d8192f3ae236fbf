package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentRepository записи в памяти, возвращает ошибки пакета appointment
type AppointmentRepository struct {
	store *Store
}

func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	defer r.store.lock(ctx)()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status.IsActive() {
		if _, claimed := r.store.activeBySlot[a.SlotID]; claimed {
			return fmt.Errorf("%w: slot=%s", appointmentRepo.ErrSlotAlreadyClaimed, a.SlotID)
		}
		r.store.activeBySlot[a.SlotID] = a.ID
	}

	a.Date = types.DateOnly(a.Date)
	r.store.appointments[a.ID] = *a
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	defer r.store.lock(ctx)()

	a, ok := r.store.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *AppointmentRepository) HasActiveForSlot(ctx context.Context, slotID uuid.UUID) (bool, error) {
	defer r.store.lock(ctx)()

	_, claimed := r.store.activeBySlot[slotID]
	return claimed, nil
}

func (r *AppointmentRepository) List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	defer r.store.lock(ctx)()

	out := make([]*domain.Appointment, 0)
	for _, a := range r.store.appointments {
		if filter.ProfessionalID != nil && a.ProfessionalID != *filter.ProfessionalID {
			continue
		}
		if filter.CustomerID != nil && a.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		out = append(out, &a)
	}

	// сначала новые: дата, время начала, время создания по убыванию
	slices.SortFunc(out, func(x, y *domain.Appointment) int {
		return cmp.Or(
			y.Date.Compare(x.Date),
			cmp.Compare(y.StartTime.Minutes(), x.StartTime.Minutes()),
			y.CreatedAt.Compare(x.CreatedAt),
		)
	})
	return out, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, changedAt time.Time) error {
	defer r.store.lock(ctx)()

	a, ok := r.store.appointments[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}

	if status.IsActive() && !a.Status.IsActive() {
		if holder, claimed := r.store.activeBySlot[a.SlotID]; claimed && holder != id {
			return fmt.Errorf("%w: slot=%s", appointmentRepo.ErrSlotAlreadyClaimed, a.SlotID)
		}
		r.store.activeBySlot[a.SlotID] = id
	}
	if !status.IsActive() && r.store.activeBySlot[a.SlotID] == id {
		delete(r.store.activeBySlot, a.SlotID)
	}

	a.Status = status
	a.UpdatedAt = changedAt
	a.StatusChangedAt = changedAt
	r.store.appointments[id] = a
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.store.lock(ctx)()

	a, ok := r.store.appointments[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	if r.store.activeBySlot[a.SlotID] == id {
		delete(r.store.activeBySlot, a.SlotID)
	}
	delete(r.store.appointments, id)
	return nil
}
