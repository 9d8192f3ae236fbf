package materializer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
)

type DirectoryClient interface {
	ListProfessionalIDs(ctx context.Context) ([]uuid.UUID, error)
	GetAvailabilityProfile(ctx context.Context, professionalID uuid.UUID) (*directory.AvailabilityProfile, error)
}

type SlotRepository interface {
	ListByDate(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]domain.Slot, error)
	CreateFree(ctx context.Context, slots []domain.Slot) (int, error)
}

type SlotCache interface {
	Invalidate(ctx context.Context, professionalID uuid.UUID, date time.Time) error
}

type TimeProvider interface {
	Now() time.Time
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}
