package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ListRequest запрос на получение списка записей профессионала или клиента
type ListRequest struct {
	OwnerID uuid.UUID `json:"ownerId"`          // ID профессионала или клиента
	Status  *string   `json:"status,omitempty"` // Фильтр по статусу (опционально)
}

// ListAllRequest запрос на получение всех записей
type ListAllRequest struct {
	Status *string `json:"status,omitempty"` // Фильтр по статусу (опционально)
}

// AppointmentResponse запись с отображаемыми данными участников
type AppointmentResponse struct {
	ID             uuid.UUID `json:"id"`
	CustomerID     uuid.UUID `json:"customerId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
	ServiceID      uuid.UUID `json:"serviceId"`
	SlotID         uuid.UUID `json:"slotId"`
	Date           string    `json:"date"`      // "2025-10-15"
	StartTime      string    `json:"startTime"` // "10:00"
	EndTime        string    `json:"endTime"`   // "11:00"
	Status         string    `json:"status"`

	// Данные справочника, пустые если справочник недоступен
	CustomerName     string   `json:"customerName,omitempty"`
	ProfessionalName string   `json:"professionalName,omitempty"`
	ServiceName      string   `json:"serviceName,omitempty"`
	ServicePrice     *float64 `json:"servicePrice,omitempty"`

	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	StatusChangedAt time.Time `json:"statusChangedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}
	return &AppointmentResponse{
		ID:              a.ID,
		CustomerID:      a.CustomerID,
		ProfessionalID:  a.ProfessionalID,
		ServiceID:       a.ServiceID,
		SlotID:          a.SlotID,
		Date:            a.Date.Format(domain.DateFormat),
		StartTime:       a.StartTime.String(),
		EndTime:         a.EndTime.String(),
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
		StatusChangedAt: a.StatusChangedAt,
	}
}

// ToDomainStatus конвертирует строку статуса в domain.Status
func ToDomainStatus(status string) (domain.Status, error) {
	return domain.ParseStatus(status)
}
