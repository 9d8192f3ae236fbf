package book_appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByStart(ctx context.Context, professionalID uuid.UUID, date time.Time, start types.TimeString) (*domain.Slot, error)
	ListByDate(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]domain.Slot, error)
	Create(ctx context.Context, slot *domain.Slot) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) error
	HasActiveForSlot(ctx context.Context, slotID uuid.UUID) (bool, error)
}

// DirectoryClient интерфейс клиента справочника
type DirectoryClient interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*directory.Customer, error)
	GetProfessional(ctx context.Context, id uuid.UUID) (*directory.Professional, error)
	GetService(ctx context.Context, id uuid.UUID) (*directory.Service, error)
	GetAvailabilityProfile(ctx context.Context, professionalID uuid.UUID) (*directory.AvailabilityProfile, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotCache кэш списка свободных слотов
type SlotCache interface {
	Invalidate(ctx context.Context, professionalID uuid.UUID, date time.Time) error
}

// EventPublisher публикатор событий жизненного цикла
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Metrics бизнес-метрики бронирования
type Metrics interface {
	RecordBooking(result string)
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

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
