package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	slotRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// slotStore объединение методов слотов, нужных use cases, сервису и материализатору
type slotStore interface {
	Create(ctx context.Context, slot *domain.Slot) error
	CreateFree(ctx context.Context, slots []domain.Slot) (int, error)
	GetByStart(ctx context.Context, professionalID uuid.UUID, date time.Time, start types.TimeString) (*domain.Slot, error)
	ListByDate(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]domain.Slot, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
}

type appointmentStore interface {
	Create(ctx context.Context, a *domain.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	HasActiveForSlot(ctx context.Context, slotID uuid.UUID) (bool, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, changedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// storage репозитории и менеджер транзакций выбранного драйвера
type storage struct {
	slots        slotStore
	appointments appointmentStore
	tx           txManager
	close        func() error
}

// openStorage подключает хранилище по database.driver
// collector может быть nil, тогда запросы к БД не измеряются
func openStorage(cfg config.DatabaseConfig, collector dbmetrics.Collector, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	if cfg.Driver == config.DriverMemory {
		store := memory.NewStore()
		log.Warn("Using in-memory storage, data will be lost on restart")
		return &storage{
			slots:        store.Slots(),
			appointments: store.Appointments(),
			tx:           store.TxManager(),
			close:        func() error { return nil },
		}, nil
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)", cfg.Host, cfg.Port, cfg.DBName)

	wrapped := dbmetrics.WrapWithDefault(db, collector, stopCh)
	if collector != nil {
		log.Info("Database metrics collection started")
	}

	return &storage{
		slots:        slotRepo.NewRepository(wrapped),
		appointments: appointmentRepo.NewRepository(wrapped),
		tx:           txmanager.NewTransactionManager(wrapped),
		close:        db.Close,
	}, nil
}
