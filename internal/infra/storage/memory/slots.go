package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	slotRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// SlotRepository слоты в памяти, возвращает ошибки пакета slot
type SlotRepository struct {
	store *Store
}

func (r *SlotRepository) Create(ctx context.Context, slot *domain.Slot) error {
	defer r.store.lock(ctx)()

	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	key := keyOf(slot)
	if _, exists := r.store.slotsByStart[key]; exists {
		return fmt.Errorf("%w: professional=%s date=%s start=%s",
			slotRepo.ErrSlotAlreadyExists, slot.ProfessionalID, key.date, slot.StartTime)
	}

	now := r.store.now()
	slot.Date = types.DateOnly(slot.Date)
	slot.CreatedAt = now
	slot.UpdatedAt = now

	r.store.slots[slot.ID] = *slot
	r.store.slotsByStart[key] = slot.ID
	return nil
}

func (r *SlotRepository) CreateFree(ctx context.Context, slots []domain.Slot) (int, error) {
	defer r.store.lock(ctx)()

	now := r.store.now()
	inserted := 0
	for _, s := range slots {
		key := keyOf(&s)
		if _, exists := r.store.slotsByStart[key]; exists {
			continue
		}
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.Date = types.DateOnly(s.Date)
		s.IsAvailable = true
		s.CreatedAt = now
		s.UpdatedAt = now
		r.store.slots[s.ID] = s
		r.store.slotsByStart[key] = s.ID
		inserted++
	}
	return inserted, nil
}

func (r *SlotRepository) GetByStart(
	ctx context.Context,
	professionalID uuid.UUID,
	date time.Time,
	start types.TimeString,
) (*domain.Slot, error) {
	defer r.store.lock(ctx)()

	id, ok := r.store.slotsByStart[slotKey{
		professionalID: professionalID,
		date:           date.Format(types.DateFormat),
		start:          start.Minutes(),
	}]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	slot := r.store.slots[id]
	return &slot, nil
}

func (r *SlotRepository) ListByDate(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]domain.Slot, error) {
	defer r.store.lock(ctx)()

	out := make([]domain.Slot, 0)
	for _, s := range r.store.slots {
		if s.ProfessionalID == professionalID && types.IsSameDay(s.Date, date) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b domain.Slot) int {
		return a.StartTime.Minutes() - b.StartTime.Minutes()
	})
	return out, nil
}

func (r *SlotRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	defer r.store.lock(ctx)()

	slot, ok := r.store.slots[id]
	if !ok {
		return slotRepo.ErrSlotNotFound
	}
	slot.IsAvailable = available
	slot.UpdatedAt = r.store.now()
	r.store.slots[id] = slot
	return nil
}
