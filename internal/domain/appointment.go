package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Appointment запись клиента к профессионалу на услугу
// Связи хранятся только идентификаторами. Дата и время денормализованы из слота
// для списков без join.
type Appointment struct {
	ID             uuid.UUID
	CustomerID     uuid.UUID
	ProfessionalID uuid.UUID
	ServiceID      uuid.UUID
	SlotID         uuid.UUID

	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString

	Status Status

	CreatedAt       time.Time
	UpdatedAt       time.Time
	StatusChangedAt time.Time
}

// NewAppointment создает запись в статусе PENDING на указанный слот
func NewAppointment(customerID, professionalID, serviceID uuid.UUID, slot *Slot, now time.Time) *Appointment {
	return &Appointment{
		ID:              uuid.New(),
		CustomerID:      customerID,
		ProfessionalID:  professionalID,
		ServiceID:       serviceID,
		SlotID:          slot.ID,
		Date:            slot.Date,
		StartTime:       slot.StartTime,
		EndTime:         slot.EndTime,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		StatusChangedAt: now,
	}
}

// Apply применяет операцию жизненного цикла
// При недопустимом переходе запись не изменяется
func (a *Appointment) Apply(op Operation, now time.Time) error {
	next, err := NextStatus(a.Status, op)
	if err != nil {
		return err
	}
	a.Status = next
	a.UpdatedAt = now
	a.StatusChangedAt = now
	return nil
}

// IsActive true, если запись удерживает слот
func (a *Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// AppointmentFilter фильтр списков записей
type AppointmentFilter struct {
	ProfessionalID *uuid.UUID
	CustomerID     *uuid.UUID
	Status         *Status // nil - все статусы
}
