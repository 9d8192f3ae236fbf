// Package materializer по расписанию сохраняет свободные слоты на горизонт вперед.
package materializer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/slotgen"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// ErrInvalidSchedule возвращается, если cron выражение не разбирается
var ErrInvalidSchedule = errors.New("materializer: invalid cron schedule")

// runTimeout ограничивает один проход по всем профессионалам
const runTimeout = 10 * time.Minute

// Options параметры материализации
type Options struct {
	Schedule     string // стандартное cron выражение из 5 полей
	HorizonDays  int
	ConflictMode domain.ConflictMode
}

// Result итог одного прохода
type Result struct {
	Professionals int
	Inserted      int
	Failed        int
}

// Materializer фоновая задача материализованной стратегии
type Materializer struct {
	directory    DirectoryClient
	slotRepo     SlotRepository
	cache        SlotCache
	timeProvider TimeProvider
	logger       Logger
	opts         Options
	cron         *cron.Cron
}

func NewMaterializer(
	directory DirectoryClient,
	slotRepo SlotRepository,
	cache SlotCache,
	logger Logger,
	opts Options,
) *Materializer {
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = 1
	}
	return &Materializer{
		directory:    directory,
		slotRepo:     slotRepo,
		cache:        cache,
		timeProvider: realTimeProvider{},
		logger:       logger,
		opts:         opts,
		cron:         cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start регистрирует задачу и запускает планировщик в фоне
func (m *Materializer) Start() error {
	_, err := m.cron.AddFunc(m.opts.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		m.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, m.opts.Schedule, err)
	}

	m.cron.Start()
	m.logger.Info("Materializer: scheduled %q, horizon=%d days", m.opts.Schedule, m.opts.HorizonDays)
	return nil
}

// Stop останавливает планировщик и ждет завершения текущего прохода
func (m *Materializer) Stop(ctx context.Context) {
	done := m.cron.Stop()
	select {
	case <-done.Done():
		m.logger.Info("Materializer: stopped")
	case <-ctx.Done():
		m.logger.Warn("Materializer: stop timed out, run still in progress")
	}
}

// RunOnce сохраняет свободные слоты всех профессионалов с сегодняшнего дня на HorizonDays дней
// Ошибка по одному профессионалу не прерывает проход по остальным.
func (m *Materializer) RunOnce(ctx context.Context) Result {
	var result Result

	ids, err := m.directory.ListProfessionalIDs(ctx)
	if err != nil {
		m.logger.Error("Materializer: failed to list professionals: %v", err)
		return result
	}

	today := types.DateOnly(m.timeProvider.Now().UTC())
	for _, id := range ids {
		if ctx.Err() != nil {
			m.logger.Warn("Materializer: run interrupted: %v", ctx.Err())
			break
		}

		result.Professionals++
		inserted, err := m.materializeProfessional(ctx, id, today)
		result.Inserted += inserted
		if err != nil {
			result.Failed++
			m.logger.Warn("Materializer: professional_id=%s skipped: %v", id, err)
		}
	}

	m.logger.Info("Materializer: run finished: professionals=%d, inserted=%d, failed=%d",
		result.Professionals, result.Inserted, result.Failed)
	return result
}

func (m *Materializer) materializeProfessional(ctx context.Context, professionalID uuid.UUID, from time.Time) (int, error) {
	raw, err := m.directory.GetAvailabilityProfile(ctx, professionalID)
	if err != nil {
		return 0, fmt.Errorf("get availability profile: %w", err)
	}
	profile, err := raw.ToDomain()
	if err != nil {
		return 0, err
	}

	grid, err := slotgen.Count(profile)
	if err != nil {
		return 0, err
	}

	total := 0
	for day := range m.opts.HorizonDays {
		date := from.AddDate(0, 0, day)

		inserted, err := m.materializeDay(ctx, profile, date, grid)
		if err != nil {
			return total, fmt.Errorf("date %s: %w", date.Format(types.DateFormat), err)
		}
		total += inserted
	}
	return total, nil
}

func (m *Materializer) materializeDay(ctx context.Context, profile domain.AvailabilityProfile, date time.Time, grid int) (int, error) {
	existing, err := m.slotRepo.ListByDate(ctx, profile.ProfessionalID, date)
	if err != nil {
		return 0, fmt.Errorf("list slots: %w", err)
	}

	seq, err := slotgen.Generate(profile, date, existing, m.opts.ConflictMode)
	if err != nil {
		return 0, err
	}

	missing := make([]domain.Slot, 0, grid)
	for slot := range slotgen.Available(seq) {
		if slot.ID == uuid.Nil {
			missing = append(missing, slot)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	inserted, err := m.slotRepo.CreateFree(ctx, missing)
	if err != nil {
		return 0, fmt.Errorf("create free slots: %w", err)
	}

	if inserted > 0 {
		if err := m.cache.Invalidate(ctx, profile.ProfessionalID, date); err != nil {
			m.logger.Warn("Materializer: failed to invalidate cache: professional_id=%s, error=%v", profile.ProfessionalID, err)
		}
	}
	return inserted, nil
}
