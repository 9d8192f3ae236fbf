package get_available_slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrAvailabilityNotFound возвращается, когда профессионал или его профиль доступности не найдены
	ErrAvailabilityNotFound = fmt.Errorf("get_available_slots: availability profile not found: %w", domain.ErrNotFound)

	// ErrInvalidAvailabilityWindow возвращается при некорректном профиле доступности
	ErrInvalidAvailabilityWindow = fmt.Errorf("get_available_slots: %w", domain.ErrInvalidAvailabilityWindow)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
