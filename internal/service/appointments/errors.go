package appointments

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("appointments service: appointment not found: %w", domain.ErrNotFound)

	// ErrInvalidStateTransition возвращается, когда операция недопустима в текущем статусе
	ErrInvalidStateTransition = fmt.Errorf("appointments service: %w", domain.ErrInvalidStateTransition)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("appointments service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("appointments service: internal error")
)
