package get_available_slots

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	// ListByDate сохраненные слоты профессионала на дату
	ListByDate(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]domain.Slot, error)
	// CreateFree сохраняет свободные слоты, пропуская существующие
	CreateFree(ctx context.Context, slots []domain.Slot) (int, error)
}

// DirectoryClient интерфейс клиента справочника
type DirectoryClient interface {
	GetAvailabilityProfile(ctx context.Context, professionalID uuid.UUID) (*directory.AvailabilityProfile, error)
}

// SlotCache кэш списка свободных слотов
type SlotCache interface {
	Get(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]domain.Slot, bool, error)
	Set(ctx context.Context, professionalID uuid.UUID, date time.Time, slots []domain.Slot) error
}

// Metrics метрики кэша
type Metrics interface {
	RecordSlotCache(hit bool)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
