package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	directoryClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/slotgen"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// UseCase use case для получения свободных слотов профессионала на дату
type UseCase struct {
	slotRepo  SlotRepository
	directory DirectoryClient
	cache     SlotCache
	metrics   Metrics
	logger    Logger
	opts      Options
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	directory DirectoryClient,
	cache SlotCache,
	metrics Metrics,
	logger Logger,
	opts Options,
) *UseCase {
	if opts.Strategy == "" {
		opts.Strategy = domain.StrategyOnDemand
	}
	if opts.ConflictMode == "" {
		opts.ConflictMode = domain.ConflictExactStart
	}
	return &UseCase{
		slotRepo:  slotRepo,
		directory: directory,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
	}
}

// Execute выполняет use case получения свободных слотов
// Без промежуточных бронирований повторный вызов возвращает тот же список.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	date := types.DateOnly(req.Date)
	uc.logger.Info("GetAvailableSlots: professional=%s, date=%s", req.ProfessionalID, date.Format(domain.DateFormat))

	// 2. Пробуем кэш
	cached, hit, err := uc.cache.Get(ctx, req.ProfessionalID, date)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: slot cache read failed: %v", err)
	}
	uc.metrics.RecordSlotCache(hit)
	if hit {
		uc.logger.Info("GetAvailableSlots: cache hit, %d slots", len(cached))
		return uc.response(req, date, cached), nil
	}

	// 3. Получаем профиль доступности
	profile, err := uc.profile(ctx, req)
	if err != nil {
		return nil, err
	}

	// 4. Генерируем слоты с учетом сохраненных
	available, err := uc.generate(ctx, profile, date)
	if err != nil {
		return nil, err
	}

	// 5. В стратегии materialized сохраняем свободные слоты и перечитываем их с ID
	if uc.opts.Strategy == domain.StrategyMaterialized {
		available, err = uc.materialize(ctx, profile, date, available)
		if err != nil {
			return nil, err
		}
	}

	// 6. Кладем результат в кэш
	if err := uc.cache.Set(ctx, req.ProfessionalID, date, available); err != nil {
		uc.logger.Warn("GetAvailableSlots: slot cache write failed: %v", err)
	}

	uc.logger.Info("GetAvailableSlots: found %d available slots for professional=%s",
		len(available), req.ProfessionalID)

	return uc.response(req, date, available), nil
}

func (uc *UseCase) profile(ctx context.Context, req *Request) (domain.AvailabilityProfile, error) {
	raw, err := uc.directory.GetAvailabilityProfile(ctx, req.ProfessionalID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrProfileNotFound) || errors.Is(err, directoryClient.ErrProfessionalNotFound) {
			uc.logger.Warn("GetAvailableSlots: no availability profile for professional id=%s", req.ProfessionalID)
			return domain.AvailabilityProfile{}, ErrAvailabilityNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get availability profile: %v", err)
		return domain.AvailabilityProfile{}, fmt.Errorf("%w: failed to get availability profile: %w", ErrInternal, err)
	}

	profile, err := raw.ToDomain()
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: invalid availability profile for professional id=%s: %v", req.ProfessionalID, err)
		return domain.AvailabilityProfile{}, fmt.Errorf("%w: %v", ErrInvalidAvailabilityWindow, err)
	}
	profile.ProfessionalID = req.ProfessionalID
	return profile, nil
}

func (uc *UseCase) generate(ctx context.Context, profile domain.AvailabilityProfile, date time.Time) ([]domain.Slot, error) {
	existing, err := uc.slotRepo.ListByDate(ctx, profile.ProfessionalID, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list slots: %v", err)
		return nil, fmt.Errorf("%w: failed to list slots: %w", ErrInternal, err)
	}

	seq, err := slotgen.Generate(profile, date, existing, uc.opts.ConflictMode)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: generation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidAvailabilityWindow, err)
	}

	return slices.Collect(slotgen.Available(seq)), nil
}

func (uc *UseCase) materialize(
	ctx context.Context,
	profile domain.AvailabilityProfile,
	date time.Time,
	available []domain.Slot,
) ([]domain.Slot, error) {
	pending := slices.DeleteFunc(slices.Clone(available), func(s domain.Slot) bool {
		return s.IsPersisted()
	})
	if len(pending) == 0 {
		return available, nil
	}

	inserted, err := uc.slotRepo.CreateFree(ctx, pending)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to materialize slots: %v", err)
		return nil, fmt.Errorf("%w: failed to materialize slots: %w", ErrInternal, err)
	}
	uc.logger.Info("GetAvailableSlots: materialized %d slots for professional=%s", inserted, profile.ProfessionalID)

	return uc.generate(ctx, profile, date)
}

func (uc *UseCase) response(req *Request, date time.Time, slots []domain.Slot) *Response {
	return &Response{
		ProfessionalID: req.ProfessionalID,
		Date:           date,
		Slots:          fromDomainSlots(slots),
	}
}
