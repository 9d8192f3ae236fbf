package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/pgerrors"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const table = "slots"

var columns = []string{
	"id",
	"professional_id",
	"slot_date",
	"start_time",
	"end_time",
	"is_available",
	"created_at",
	"updated_at",
}

// Repository репозиторий слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет слот
// Второй слот с тем же (professional_id, slot_date, start_time) отклоняется
// ограничением уникальности и возвращает ErrSlotAlreadyExists.
func (r *Repository) Create(ctx context.Context, slot *domain.Slot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns("id", "professional_id", "slot_date", "start_time", "end_time", "is_available").
		Values(
			slot.ID,
			slot.ProfessionalID,
			slot.Date.Format(types.DateFormat),
			slot.StartTime,
			slot.EndTime,
			slot.IsAvailable,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		if pgerrors.IsUniqueViolation(err) {
			return fmt.Errorf("%w: professional=%s date=%s start=%s",
				ErrSlotAlreadyExists, slot.ProfessionalID, slot.Date.Format(types.DateFormat), slot.StartTime)
		}
		return fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// CreateFree сохраняет свободные слоты, пропуская уже существующие
// Возвращает количество реально вставленных строк
func (r *Repository) CreateFree(ctx context.Context, slots []domain.Slot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert(table).
		Columns("id", "professional_id", "slot_date", "start_time", "end_time", "is_available")
	for _, s := range slots {
		id := s.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		builder = builder.Values(id, s.ProfessionalID, s.Date.Format(types.DateFormat), s.StartTime, s.EndTime, true)
	}

	query, args, err := builder.
		Suffix("ON CONFLICT (professional_id, slot_date, start_time) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CreateFree - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CreateFree - execute insert: %w", ErrExecQuery, err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CreateFree - get rows affected: %v", ErrExecQuery, err)
	}

	return int(inserted), nil
}

// GetByStart получает слот профессионала по дате и времени начала
// Внутри транзакции строка блокируется (FOR UPDATE) до её завершения
func (r *Repository) GetByStart(
	ctx context.Context,
	professionalID uuid.UUID,
	date time.Time,
	start types.TimeString,
) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{
			"professional_id": professionalID,
			"slot_date":       date.Format(types.DateFormat),
			"start_time":      start,
		})

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStart - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStart - scan slot: %w", ErrScanRow, err)
	}

	return slot, nil
}

// ListByDate получает все слоты профессионала на дату, по возрастанию времени начала
// Внутри транзакции строки блокируются, что сериализует бронирования одного дня
func (r *Repository) ListByDate(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{
			"professional_id": professionalID,
			"slot_date":       date.Format(types.DateFormat),
		}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]domain.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByDate - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, *slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByDate - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

// SetAvailability переключает флаг доступности слота
func (r *Repository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("is_available", available).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetAvailability - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetAvailability - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetAvailability - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var slot domain.Slot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.ProfessionalID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsAvailable,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.Date = types.DateOnly(slot.Date)
	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}
