package book_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	slotRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/slot"
	directoryClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/slotgen"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// UseCase use case для создания записи на слот
type UseCase struct {
	slotRepo        SlotRepository
	appointmentRepo AppointmentRepository
	directory       DirectoryClient
	txManager       TransactionManager
	cache           SlotCache
	publisher       EventPublisher
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
	opts            Options
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	appointmentRepo AppointmentRepository,
	directory DirectoryClient,
	txManager TransactionManager,
	cache SlotCache,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
	opts Options,
) *UseCase {
	if opts.ConflictMode == "" {
		opts.ConflictMode = domain.ConflictExactStart
	}
	return &UseCase{
		slotRepo:        slotRepo,
		appointmentRepo: appointmentRepo,
		directory:       directory,
		txManager:       txManager,
		cache:           cache,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
		opts:            opts,
	}
}

// Execute выполняет use case создания записи
// Резервирование слота и создание записи выполняются в одной сериализуемой транзакции;
// проигравшая конкурентная транзакция получает ErrSlotUnavailable.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookAppointment: validation failed: %v", err)
		uc.metrics.RecordBooking(metrics.ResultRejected)
		return nil, err
	}

	uc.logger.Info("BookAppointment: customer=%s, professional=%s, service=%s, date=%s, time=%s-%s",
		req.CustomerID, req.ProfessionalID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Проверяем участников записи в справочнике
	customer, professional, service, err := uc.resolveParticipants(ctx, req)
	if err != nil {
		uc.recordFailure(err)
		return nil, err
	}

	// 4. Получаем профиль доступности и находим слот сетки
	target, err := uc.locateSlot(ctx, req)
	if err != nil {
		uc.recordFailure(err)
		return nil, err
	}

	var appointment *domain.Appointment
	var booked domain.Slot

	// 5. Резервируем слот и создаем запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Блокируем строку слота (FOR UPDATE), если она уже есть
		existing, err := uc.slotRepo.GetByStart(txCtx, req.ProfessionalID, target.Date, target.StartTime)
		if err != nil && !errors.Is(err, slotRepo.ErrSlotNotFound) {
			uc.logger.Error("BookAppointment: failed to get slot: %v", err)
			return fmt.Errorf("%w: failed to get slot: %w", ErrInternal, err)
		}

		// 5.2. В режиме overlap проверяем пересечение с занятыми слотами дня
		if uc.opts.ConflictMode == domain.ConflictOverlap {
			if err := uc.checkOverlap(txCtx, &target); err != nil {
				return err
			}
		}

		// 5.3. Занимаем существующий слот или создаем новый занятым
		if existing != nil {
			if err := uc.claimExisting(txCtx, existing, &target); err != nil {
				return err
			}
			booked = existing.Booked(now)
		} else {
			booked = target.Booked(now)
			if err := uc.slotRepo.Create(txCtx, &booked); err != nil {
				if errors.Is(err, slotRepo.ErrSlotAlreadyExists) {
					uc.logger.Warn("BookAppointment: slot %s %s was created concurrently",
						target.Date.Format(domain.DateFormat), target.StartTime)
					return ErrSlotUnavailable
				}
				uc.logger.Error("BookAppointment: failed to create slot: %v", err)
				return fmt.Errorf("%w: failed to create slot: %w", ErrInternal, err)
			}
		}

		// 5.4. Создаем запись PENDING
		appointment = domain.NewAppointment(req.CustomerID, req.ProfessionalID, req.ServiceID, &booked, now)
		if err := uc.appointmentRepo.Create(txCtx, appointment); err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotAlreadyClaimed) {
				uc.logger.Warn("BookAppointment: slot id=%s already claimed", booked.ID)
				return ErrSlotUnavailable
			}
			uc.logger.Error("BookAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("BookAppointment: lost concurrent booking for %s %s: %v",
				target.Date.Format(domain.DateFormat), target.StartTime, err)
			err = ErrSlotUnavailable
		}
		uc.recordFailure(err)
		return nil, err
	}

	// 6. Сбрасываем кэш слотов и публикуем событие
	uc.afterCommit(ctx, appointment, now)
	uc.metrics.RecordBooking(metrics.ResultSuccess)

	uc.logger.Info("BookAppointment: successfully created appointment id=%s on slot id=%s", appointment.ID, booked.ID)

	return &Response{
		ID:              appointment.ID,
		Status:          string(appointment.Status),
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
		StatusChangedAt: appointment.StatusChangedAt,
		Customer: Customer{
			ID:    customer.ID,
			Name:  customer.Name,
			Email: customer.Email,
			Phone: customer.Phone,
		},
		Professional: Professional{
			ID:        professional.ID,
			Name:      professional.Name,
			Email:     professional.Email,
			Specialty: professional.Specialty,
		},
		Service: Service{
			ID:    service.ID,
			Name:  service.Name,
			Price: getServicePrice(service),
		},
		Slot: Slot{
			ID:        booked.ID,
			Date:      booked.Date,
			StartTime: booked.StartTime,
			EndTime:   booked.EndTime,
		},
	}, nil
}

func (uc *UseCase) resolveParticipants(
	ctx context.Context,
	req *Request,
) (*directoryClient.Customer, *directoryClient.Professional, *directoryClient.Service, error) {
	customer, err := uc.directory.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrCustomerNotFound) {
			uc.logger.Warn("BookAppointment: customer id=%s not found", req.CustomerID)
			return nil, nil, nil, ErrCustomerNotFound
		}
		uc.logger.Error("BookAppointment: failed to get customer id=%s: %v", req.CustomerID, err)
		return nil, nil, nil, fmt.Errorf("%w: failed to get customer: %w", ErrInternal, err)
	}

	professional, err := uc.directory.GetProfessional(ctx, req.ProfessionalID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrProfessionalNotFound) {
			uc.logger.Warn("BookAppointment: professional id=%s not found", req.ProfessionalID)
			return nil, nil, nil, ErrProfessionalNotFound
		}
		uc.logger.Error("BookAppointment: failed to get professional id=%s: %v", req.ProfessionalID, err)
		return nil, nil, nil, fmt.Errorf("%w: failed to get professional: %w", ErrInternal, err)
	}

	service, err := uc.directory.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrServiceNotFound) {
			uc.logger.Warn("BookAppointment: service id=%s not found", req.ServiceID)
			return nil, nil, nil, ErrServiceNotFound
		}
		uc.logger.Error("BookAppointment: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, nil, nil, fmt.Errorf("%w: failed to get service: %w", ErrInternal, err)
	}

	return customer, professional, service, nil
}

// locateSlot проверяет, что запрошенный интервал является слотом сетки профессионала
func (uc *UseCase) locateSlot(ctx context.Context, req *Request) (domain.Slot, error) {
	raw, err := uc.directory.GetAvailabilityProfile(ctx, req.ProfessionalID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrProfileNotFound) {
			uc.logger.Warn("BookAppointment: professional id=%s has no availability profile", req.ProfessionalID)
			return domain.Slot{}, ErrAvailabilityNotFound
		}
		uc.logger.Error("BookAppointment: failed to get availability profile: %v", err)
		return domain.Slot{}, fmt.Errorf("%w: failed to get availability profile: %w", ErrInternal, err)
	}

	profile, err := raw.ToDomain()
	if err != nil {
		uc.logger.Warn("BookAppointment: invalid availability profile for professional id=%s: %v", req.ProfessionalID, err)
		return domain.Slot{}, fmt.Errorf("%w: %v", ErrInvalidAvailabilityWindow, err)
	}
	profile.ProfessionalID = req.ProfessionalID

	target, err := slotgen.Locate(profile, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		if errors.Is(err, slotgen.ErrNotOnGrid) {
			uc.logger.Warn("BookAppointment: %v", err)
			return domain.Slot{}, fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
		}
		return domain.Slot{}, fmt.Errorf("%w: %v", ErrInvalidAvailabilityWindow, err)
	}
	return target, nil
}

// claimExisting занимает уже сохраненный слот
// Слот, сохраненный под прежнюю длину сеанса, не совпадает с сеткой и не занимается.
func (uc *UseCase) claimExisting(ctx context.Context, existing, target *domain.Slot) error {
	if existing.EndTime != target.EndTime {
		uc.logger.Warn("BookAppointment: stored slot id=%s ends at %s, grid slot ends at %s",
			existing.ID, existing.EndTime, target.EndTime)
		return ErrSlotUnavailable
	}

	if !existing.IsAvailable {
		uc.logger.Warn("BookAppointment: slot id=%s is not available", existing.ID)
		return ErrSlotUnavailable
	}

	claimed, err := uc.appointmentRepo.HasActiveForSlot(ctx, existing.ID)
	if err != nil {
		uc.logger.Error("BookAppointment: failed to check slot claims: %v", err)
		return fmt.Errorf("%w: failed to check slot claims: %w", ErrInternal, err)
	}
	if claimed {
		uc.logger.Warn("BookAppointment: slot id=%s has an active appointment", existing.ID)
		return ErrSlotUnavailable
	}

	if err := uc.slotRepo.SetAvailability(ctx, existing.ID, false); err != nil {
		uc.logger.Error("BookAppointment: failed to mark slot id=%s booked: %v", existing.ID, err)
		return fmt.Errorf("%w: failed to mark slot booked: %w", ErrInternal, err)
	}
	return nil
}

// checkOverlap отклоняет слот, пересекающийся с любым занятым слотом того же дня
func (uc *UseCase) checkOverlap(ctx context.Context, target *domain.Slot) error {
	daySlots, err := uc.slotRepo.ListByDate(ctx, target.ProfessionalID, target.Date)
	if err != nil {
		uc.logger.Error("BookAppointment: failed to list slots: %v", err)
		return fmt.Errorf("%w: failed to list slots: %w", ErrInternal, err)
	}
	for i := range daySlots {
		if !daySlots[i].IsAvailable && target.Overlaps(&daySlots[i]) {
			uc.logger.Warn("BookAppointment: slot %s-%s overlaps booked slot id=%s",
				target.StartTime, target.EndTime, daySlots[i].ID)
			return ErrSlotUnavailable
		}
	}
	return nil
}

// afterCommit побочные эффекты после фиксации; их ошибки не отменяют запись
func (uc *UseCase) afterCommit(ctx context.Context, appointment *domain.Appointment, now time.Time) {
	if err := uc.cache.Invalidate(ctx, appointment.ProfessionalID, appointment.Date); err != nil {
		uc.logger.Warn("BookAppointment: failed to invalidate slot cache for professional=%s date=%s: %v",
			appointment.ProfessionalID, appointment.Date.Format(types.DateFormat), err)
	}
	if err := uc.publisher.Publish(ctx, events.NewEvent(events.TypeCreated, appointment, now)); err != nil {
		uc.logger.Warn("BookAppointment: failed to publish event for appointment id=%s: %v", appointment.ID, err)
	}
}

func (uc *UseCase) recordFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrSlotUnavailable):
		uc.metrics.RecordBooking(metrics.ResultConflict)
	case errors.Is(err, ErrInternal):
		uc.metrics.RecordBooking(metrics.ResultError)
	default:
		uc.metrics.RecordBooking(metrics.ResultRejected)
	}
}

// getServicePrice извлекает цену из услуги
// Если цена не указана (nil), возвращает 0.0
func getServicePrice(service *directoryClient.Service) float64 {
	if service.Price == nil {
		return 0.0
	}
	return *service.Price
}
