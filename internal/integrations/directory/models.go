package directory

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Customer клиент из справочника
type Customer struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
}

// Professional профессионал из справочника
type Professional struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Specialty string    `json:"specialty,omitempty"`
}

// Service услуга из справочника
type Service struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty"`
}

// AvailabilityProfile рабочее окно профессионала
// breakDuration задается в минутах и используется как длина сеанса
type AvailabilityProfile struct {
	ProfessionalID uuid.UUID `json:"professionalId"`
	WorkStartTime  string    `json:"workStartTime"` // "09:00"
	WorkEndTime    string    `json:"workEndTime"`   // "18:00"
	BreakDuration  int       `json:"breakDuration"` // минуты
}

// ToDomain конвертирует профиль в доменную модель
func (p *AvailabilityProfile) ToDomain() (domain.AvailabilityProfile, error) {
	start, err := types.NewTimeStringFromString(p.WorkStartTime)
	if err != nil {
		return domain.AvailabilityProfile{}, fmt.Errorf("%w: work start: %v", domain.ErrInvalidAvailabilityWindow, err)
	}
	end, err := types.NewTimeStringFromString(p.WorkEndTime)
	if err != nil {
		return domain.AvailabilityProfile{}, fmt.Errorf("%w: work end: %v", domain.ErrInvalidAvailabilityWindow, err)
	}

	profile := domain.AvailabilityProfile{
		ProfessionalID:  p.ProfessionalID,
		WorkStartTime:   start,
		WorkEndTime:     end,
		SessionDuration: time.Duration(p.BreakDuration) * time.Minute,
	}
	if err := profile.Validate(); err != nil {
		return domain.AvailabilityProfile{}, err
	}
	return profile, nil
}

// professionalList ответ со списком профессионалов
type professionalList struct {
	IDs []uuid.UUID `json:"ids"`
}

// ErrorResponse модель ошибки от справочника
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
