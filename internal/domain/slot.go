package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Slot интервал фиксированной длины [StartTime, EndTime) у профессионала на дату
// Сгенерированный, но не сохраненный слот имеет ID == uuid.Nil
type Slot struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	Date           time.Time
	StartTime      types.TimeString
	EndTime        types.TimeString
	IsAvailable    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsPersisted true, если слот сохранен в хранилище
func (s *Slot) IsPersisted() bool {
	return s.ID != uuid.Nil
}

// Overlaps проверяет пересечение полуоткрытых интервалов
func (s *Slot) Overlaps(other *Slot) bool {
	return s.StartTime.IsBefore(other.EndTime) && other.StartTime.IsBefore(s.EndTime)
}

// ConflictsWith проверяет конфликт со слотом в заданном режиме
func (s *Slot) ConflictsWith(other *Slot, mode ConflictMode) bool {
	if mode == ConflictOverlap {
		return s.Overlaps(other)
	}
	return s.StartTime.Equal(other.StartTime)
}

// Booked возвращает копию слота, помеченную занятой
func (s Slot) Booked(now time.Time) Slot {
	s.IsAvailable = false
	s.UpdatedAt = now
	return s
}
