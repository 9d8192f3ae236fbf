package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, changedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
}

// DirectoryClient интерфейс клиента справочника
type DirectoryClient interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*directory.Customer, error)
	GetProfessional(ctx context.Context, id uuid.UUID) (*directory.Professional, error)
	GetService(ctx context.Context, id uuid.UUID) (*directory.Service, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotCache кэш списка свободных слотов
type SlotCache interface {
	Invalidate(ctx context.Context, professionalID uuid.UUID, date time.Time) error
}

// EventPublisher публикатор событий жизненного цикла
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Metrics метрики переходов статуса
type Metrics interface {
	RecordTransition(operation, result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}
