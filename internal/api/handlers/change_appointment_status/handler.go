package change_appointment_status

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgUnknownAction        = "неизвестное действие, ожидается approve, reject, cancel или finish"
	msgNotFound             = "запись не найдена"
	msgInvalidTransition    = "действие недопустимо в текущем статусе записи"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/{action}
// action: approve | reject | cancel | finish
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	appointmentID, err := uuid.Parse(vars["appointmentId"])
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/{action} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	op, err := domain.ParseOperation(vars["action"])
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/{action} - Unknown action: %v", err)
		handlers.RespondBadRequest(w, msgUnknownAction)
		return
	}

	appointment, err := h.service.Transition(r.Context(), appointmentID, op)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/%s - Appointment not found: appointment_id=%s", op, appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrInvalidStateTransition):
			h.logger.Warn("PATCH /appointments/{id}/%s - Invalid transition: appointment_id=%s, error=%v", op, appointmentID, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("PATCH /appointments/{id}/%s - Invalid input: %v", op, err)
			handlers.RespondBadRequest(w, msgInvalidAppointmentID)

		default:
			h.logger.Error("PATCH /appointments/{id}/%s - Failed to change status: appointment_id=%s, error=%v",
				op, appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/%s - Status changed successfully: appointment_id=%s, status=%s",
		op, appointmentID, appointment.Status)
	handlers.RespondJSON(w, http.StatusOK, appointment)
}
