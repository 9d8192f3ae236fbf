package get_available_slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на получение свободных слотов
type Request struct {
	ProfessionalID uuid.UUID // ID профессионала
	Date           time.Time // Дата (без времени)
}

// Options настройки генерации
type Options struct {
	Strategy     domain.Strategy
	ConflictMode domain.ConflictMode
}

// Response модель ответа со списком свободных слотов
type Response struct {
	ProfessionalID uuid.UUID
	Date           time.Time
	Slots          []Slot // по возрастанию времени начала
}

// Slot свободный слот
type Slot struct {
	ID              *uuid.UUID       // nil, если слот еще не сохранен (стратегия on_demand)
	StartTime       types.TimeString // Начало слота, например "10:00"
	EndTime         types.TimeString // Конец слота
	DurationMinutes int              // Длительность в минутах
}

func fromDomainSlots(slots []domain.Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	for i := range slots {
		s := &slots[i]
		slot := Slot{
			StartTime:       s.StartTime,
			EndTime:         s.EndTime,
			DurationMinutes: int(s.EndTime.Sub(s.StartTime) / time.Minute),
		}
		if s.IsPersisted() {
			id := s.ID
			slot.ID = &id
		}
		out = append(out, slot)
	}
	return out
}
