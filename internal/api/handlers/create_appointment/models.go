package create_appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/book_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// CreateAppointmentRequest HTTP request model
// Клиент записи берется из X-User-ID
type CreateAppointmentRequest struct {
	ProfessionalID string `json:"professionalId" validate:"required,uuid"`
	ServiceID      string `json:"serviceId" validate:"required,uuid"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"` // "2025-10-15"
	StartTime      string `json:"startTime" validate:"required"`                // "10:00"
	EndTime        string `json:"endTime" validate:"required"`                  // "11:00"
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID               string  `json:"id"`
	Status           string  `json:"status"`
	CustomerID       string  `json:"customerId"`
	CustomerName     string  `json:"customerName"`
	ProfessionalID   string  `json:"professionalId"`
	ProfessionalName string  `json:"professionalName"`
	ServiceID        string  `json:"serviceId"`
	ServiceName      string  `json:"serviceName"`
	ServicePrice     float64 `json:"servicePrice"`
	SlotID           string  `json:"slotId"`
	Date             string  `json:"date"`
	StartTime        string  `json:"startTime"`
	EndTime          string  `json:"endTime"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(customerID uuid.UUID) (*bookAppointment.Request, error) {
	professionalID, err := uuid.Parse(r.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("professional id: %w", err)
	}
	serviceID, err := uuid.Parse(r.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("service id: %w", err)
	}
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	start, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}
	end, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, fmt.Errorf("end time: %w", err)
	}

	return &bookAppointment.Request{
		CustomerID:     customerID,
		ProfessionalID: professionalID,
		ServiceID:      serviceID,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *bookAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:               resp.ID.String(),
		Status:           resp.Status,
		CustomerID:       resp.Customer.ID.String(),
		CustomerName:     resp.Customer.Name,
		ProfessionalID:   resp.Professional.ID.String(),
		ProfessionalName: resp.Professional.Name,
		ServiceID:        resp.Service.ID.String(),
		ServiceName:      resp.Service.Name,
		ServicePrice:     resp.Service.Price,
		SlotID:           resp.Slot.ID.String(),
		Date:             resp.Slot.Date.Format(domain.DateFormat),
		StartTime:        resp.Slot.StartTime.String(),
		EndTime:          resp.Slot.EndTime.String(),
		CreatedAt:        resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        resp.UpdatedAt.Format(time.RFC3339),
	}
}
