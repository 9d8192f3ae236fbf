package book_appointment

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	slotRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// sqlTx транзакция без соединения: use case работает через репозитории
type sqlTx struct {
	commitErr error
}

func (t *sqlTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *sqlTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *sqlTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (t *sqlTx) Commit() error   { return t.commitErr }
func (t *sqlTx) Rollback() error { return nil }

type sqlBeginner struct {
	tx *sqlTx
}

func (b *sqlBeginner) BeginTx(context.Context, *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	return b.tx, nil
}

// conflictingSlots отдает ошибки в том виде, в каком их возвращает postgres репозиторий
type conflictingSlots struct {
	*memory.SlotRepository
	lockErr   error
	insertErr error
}

func (r *conflictingSlots) GetByStart(
	ctx context.Context,
	professionalID uuid.UUID,
	date time.Time,
	start types.TimeString,
) (*domain.Slot, error) {
	if r.lockErr != nil {
		return nil, fmt.Errorf("%w: GetByStart - scan slot: %w", slotRepo.ErrScanRow, r.lockErr)
	}
	return r.SlotRepository.GetByStart(ctx, professionalID, date, start)
}

func (r *conflictingSlots) Create(ctx context.Context, slot *domain.Slot) error {
	if r.insertErr != nil {
		return fmt.Errorf("%w: Create - execute insert: %w", slotRepo.ErrExecQuery, r.insertErr)
	}
	return r.SlotRepository.Create(ctx, slot)
}

func TestExecute_SerializationFailureIsSlotUnavailable(t *testing.T) {
	serialization := &pq.Error{Code: "40001", Message: "could not serialize access due to concurrent update"}

	tests := []struct {
		name      string
		lockErr   error
		insertErr error
		commitErr error
	}{
		{name: "slot row lock", lockErr: serialization},
		{name: "slot insert", insertErr: serialization},
		{name: "commit", commitErr: serialization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			slots := &conflictingSlots{
				SlotRepository: f.store.Slots(),
				lockErr:        tt.lockErr,
				insertErr:      tt.insertErr,
			}
			f.uc = NewUseCase(
				slots,
				f.store.Appointments(),
				f.directory,
				txmanager.NewTransactionManager(&sqlBeginner{tx: &sqlTx{commitErr: tt.commitErr}}),
				f.cache,
				f.publisher,
				f.metrics,
				logger.NewNop(),
				Options{},
			)
			f.uc.timeProvider = fixedTime{now: time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)}

			_, err := f.uc.Execute(context.Background(), f.request("10:00", "11:00"))

			assert.ErrorIs(t, err, ErrSlotUnavailable)
			assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
			assert.NotErrorIs(t, err, ErrInternal)
			assert.Equal(t, []string{metrics.ResultConflict}, f.metrics.results)
			assert.Empty(t, f.publisher.events)
			assert.Empty(t, f.cache.invalidated)
		})
	}
}

func TestExecute_DriverErrorStaysInternal(t *testing.T) {
	f := newFixture(t, Options{})
	slots := &conflictingSlots{
		SlotRepository: f.store.Slots(),
		insertErr:      &pq.Error{Code: "08006", Message: "connection failure"},
	}
	f.uc = NewUseCase(
		slots,
		f.store.Appointments(),
		f.directory,
		txmanager.NewTransactionManager(&sqlBeginner{tx: &sqlTx{}}),
		f.cache,
		f.publisher,
		f.metrics,
		logger.NewNop(),
		Options{},
	)
	f.uc.timeProvider = fixedTime{now: time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)}

	_, err := f.uc.Execute(context.Background(), f.request("10:00", "11:00"))

	assert.ErrorIs(t, err, ErrInternal)
	assert.NotErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, []string{metrics.ResultError}, f.metrics.results)
}
