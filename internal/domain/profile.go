package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AvailabilityProfile рабочее окно и длительность сеанса профессионала
// SessionDuration во внешнем справочнике называется breakDuration,
// здесь она используется как длина одного слота.
type AvailabilityProfile struct {
	ProfessionalID  uuid.UUID
	WorkStartTime   types.TimeString
	WorkEndTime     types.TimeString
	SessionDuration time.Duration
}

// Validate проверяет окно; совпадающие начало и конец допустимы (пустой день)
func (p AvailabilityProfile) Validate() error {
	if err := p.WorkStartTime.Validate(); err != nil {
		return fmt.Errorf("%w: work start: %v", ErrInvalidAvailabilityWindow, err)
	}
	if err := p.WorkEndTime.Validate(); err != nil {
		return fmt.Errorf("%w: work end: %v", ErrInvalidAvailabilityWindow, err)
	}
	if p.WorkStartTime.IsAfter(p.WorkEndTime) {
		return fmt.Errorf("%w: work start %s is after work end %s",
			ErrInvalidAvailabilityWindow, p.WorkStartTime, p.WorkEndTime)
	}
	if p.SessionDuration <= 0 {
		return fmt.Errorf("%w: session duration must be positive, got %s",
			ErrInvalidAvailabilityWindow, p.SessionDuration)
	}
	if p.SessionDuration%time.Minute != 0 {
		return fmt.Errorf("%w: session duration %s is not a whole number of minutes",
			ErrInvalidAvailabilityWindow, p.SessionDuration)
	}
	return nil
}
