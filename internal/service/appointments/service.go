package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

// Options настройки жизненного цикла
type Options struct {
	// ReleaseSlotOnCancel освобождает слот при cancel/reject в той же транзакции
	ReleaseSlotOnCancel bool
}

// Service сервис жизненного цикла и чтения записей
type Service struct {
	appointmentRepo AppointmentRepository
	slotRepo        SlotRepository
	directory       DirectoryClient
	txManager       TransactionManager
	cache           SlotCache
	publisher       EventPublisher
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
	opts            Options
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	slotRepo SlotRepository,
	directory DirectoryClient,
	txManager TransactionManager,
	cache SlotCache,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
	opts Options,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		slotRepo:        slotRepo,
		directory:       directory,
		txManager:       txManager,
		cache:           cache,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    realTimeProvider{},
		logger:          logger,
		opts:            opts,
	}
}

// Approve подтверждает запись (PENDING -> APPROVED)
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*models.AppointmentResponse, error) {
	return s.Transition(ctx, id, domain.OperationApprove)
}

// Reject отклоняет запись (PENDING -> REJECTED)
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*models.AppointmentResponse, error) {
	return s.Transition(ctx, id, domain.OperationReject)
}

// Cancel отменяет запись (PENDING/APPROVED -> CANCELLED)
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*models.AppointmentResponse, error) {
	return s.Transition(ctx, id, domain.OperationCancel)
}

// Finish завершает запись (APPROVED -> FINISHED)
func (s *Service) Finish(ctx context.Context, id uuid.UUID) (*models.AppointmentResponse, error) {
	return s.Transition(ctx, id, domain.OperationFinish)
}

// Transition применяет операцию жизненного цикла к записи
// Строка записи блокируется (FOR UPDATE) на время проверки и смены статуса,
// поэтому конкурентные переходы одной записи выполняются по очереди.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, op domain.Operation) (*models.AppointmentResponse, error) {
	s.logger.Info("Transition: %s appointment id=%s", op, id)

	if id == uuid.Nil {
		s.metrics.RecordTransition(string(op), metrics.ResultRejected)
		return nil, fmt.Errorf("%w: appointment id is required", ErrInvalidInput)
	}

	now := s.timeProvider.Now()
	var appointment *domain.Appointment
	released := false

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				s.logger.Warn("Transition: appointment id=%s not found", id)
				return ErrAppointmentNotFound
			}
			s.logger.Error("Transition: repository error for appointment id=%s: %v", id, err)
			return fmt.Errorf("%w: Transition - get appointment: %w", ErrInternal, err)
		}

		if err := current.Apply(op, now); err != nil {
			s.logger.Warn("Transition: appointment id=%s: %v", id, err)
			return fmt.Errorf("%w: %v", ErrInvalidStateTransition, err)
		}

		if err := s.appointmentRepo.UpdateStatus(txCtx, id, current.Status, now); err != nil {
			s.logger.Error("Transition: failed to update status of appointment id=%s: %v", id, err)
			return fmt.Errorf("%w: Transition - update status: %w", ErrInternal, err)
		}

		if s.opts.ReleaseSlotOnCancel && op.FreesSlot() {
			if err := s.slotRepo.SetAvailability(txCtx, current.SlotID, true); err != nil {
				s.logger.Error("Transition: failed to release slot id=%s: %v", current.SlotID, err)
				return fmt.Errorf("%w: Transition - release slot: %w", ErrInternal, err)
			}
			released = true
		}

		appointment = current
		return nil
	})
	if err != nil {
		s.metrics.RecordTransition(string(op), resultOf(err))
		return nil, err
	}

	if released {
		if err := s.cache.Invalidate(ctx, appointment.ProfessionalID, appointment.Date); err != nil {
			s.logger.Warn("Transition: failed to invalidate slot cache: %v", err)
		}
	}
	s.publish(ctx, events.TypeForOperation(op), appointment, now)
	s.metrics.RecordTransition(string(op), metrics.ResultSuccess)

	s.logger.Info("Transition: appointment id=%s is now %s (slot released: %t)", id, appointment.Status, released)
	return s.hydrate(ctx, appointment, newLookup()), nil
}

// GetAppointment получает запись по ID вместе с данными участников
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*models.AppointmentResponse, error) {
	s.logger.Info("GetAppointment: fetching appointment id=%s", id)

	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetAppointment: appointment id=%s not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetAppointment: repository error for appointment id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetAppointment - repository error: %w", ErrInternal, err)
	}

	return s.hydrate(ctx, appointment, newLookup()), nil
}

// ListByProfessional получает записи профессионала, сначала новые
// Опционально фильтрует по статусу
func (s *Service) ListByProfessional(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListByProfessional: fetching appointments for professional=%s, status=%v", req.OwnerID, req.Status)

	filter, err := s.filter(req)
	if err != nil {
		s.logger.Warn("ListByProfessional: %v", err)
		return nil, err
	}
	filter.ProfessionalID = &req.OwnerID

	return s.list(ctx, "ListByProfessional", filter)
}

// ListByCustomer получает записи клиента, сначала новые
// Опционально фильтрует по статусу
func (s *Service) ListByCustomer(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListByCustomer: fetching appointments for customer=%s, status=%v", req.OwnerID, req.Status)

	filter, err := s.filter(req)
	if err != nil {
		s.logger.Warn("ListByCustomer: %v", err)
		return nil, err
	}
	filter.CustomerID = &req.OwnerID

	return s.list(ctx, "ListByCustomer", filter)
}

// ListAll получает все записи, сначала новые
// Опционально фильтрует по статусу
func (s *Service) ListAll(ctx context.Context, req *models.ListAllRequest) (*models.AppointmentListResponse, error) {
	var raw *string
	if req != nil {
		raw = req.Status
	}
	s.logger.Info("ListAll: fetching appointments, status=%v", raw)

	filter, err := statusFilter(raw)
	if err != nil {
		s.logger.Warn("ListAll: %v", err)
		return nil, err
	}

	return s.list(ctx, "ListAll", filter)
}

// Delete административно удаляет запись вне жизненного цикла
// Слот при этом не освобождается.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.logger.Info("Delete: deleting appointment id=%s", id)

	var deleted *domain.Appointment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		appointment, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				s.logger.Warn("Delete: appointment id=%s not found", id)
				return ErrAppointmentNotFound
			}
			s.logger.Error("Delete: repository error for appointment id=%s: %v", id, err)
			return fmt.Errorf("%w: Delete - get appointment: %w", ErrInternal, err)
		}

		if err := s.appointmentRepo.Delete(txCtx, id); err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			s.logger.Error("Delete: failed to delete appointment id=%s: %v", id, err)
			return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
		}

		deleted = appointment
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.TypeDeleted, deleted, s.timeProvider.Now())
	s.logger.Info("Delete: appointment id=%s deleted", id)
	return nil
}

func (s *Service) filter(req *models.ListRequest) (domain.AppointmentFilter, error) {
	if req == nil || req.OwnerID == uuid.Nil {
		return domain.AppointmentFilter{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	return statusFilter(req.Status)
}

func statusFilter(raw *string) (domain.AppointmentFilter, error) {
	var filter domain.AppointmentFilter
	if raw != nil && *raw != "" {
		status, err := models.ToDomainStatus(*raw)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.Status = &status
	}
	return filter, nil
}

func (s *Service) list(ctx context.Context, op string, filter domain.AppointmentFilter) (*models.AppointmentListResponse, error) {
	found, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("%s: repository error: %v", op, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}

	lookup := newLookup()
	resp := &models.AppointmentListResponse{
		Appointments: make([]models.AppointmentResponse, 0, len(found)),
	}
	for _, a := range found {
		resp.Appointments = append(resp.Appointments, *s.hydrate(ctx, a, lookup))
	}

	s.logger.Info("%s: successfully fetched %d appointments", op, len(found))
	return resp, nil
}

func (s *Service) publish(ctx context.Context, eventType string, appointment *domain.Appointment, now time.Time) {
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, appointment, now)); err != nil {
		s.logger.Warn("publish: %s for appointment id=%s failed: %v", eventType, appointment.ID, err)
	}
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, ErrInternal):
		return metrics.ResultError
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return metrics.ResultConflict
	default:
		return metrics.ResultRejected
	}
}
