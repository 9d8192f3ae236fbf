package book_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrCustomerNotFound возвращается, когда клиент не найден в справочнике
	ErrCustomerNotFound = fmt.Errorf("book_appointment: customer not found: %w", domain.ErrNotFound)

	// ErrProfessionalNotFound возвращается, когда профессионал не найден в справочнике
	ErrProfessionalNotFound = fmt.Errorf("book_appointment: professional not found: %w", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена в справочнике
	ErrServiceNotFound = fmt.Errorf("book_appointment: service not found: %w", domain.ErrNotFound)

	// ErrAvailabilityNotFound возвращается, когда у профессионала нет профиля доступности
	ErrAvailabilityNotFound = fmt.Errorf("book_appointment: availability profile not found: %w", domain.ErrNotFound)

	// ErrInvalidAvailabilityWindow возвращается при некорректном профиле доступности
	ErrInvalidAvailabilityWindow = fmt.Errorf("book_appointment: %w", domain.ErrInvalidAvailabilityWindow)

	// ErrSlotUnavailable возвращается, когда слот уже занят (в том числе конкурентной транзакцией)
	ErrSlotUnavailable = fmt.Errorf("book_appointment: %w", domain.ErrSlotUnavailable)

	// ErrInvalidTimeSlot возвращается, когда интервал не совпадает ни с одним слотом рабочего окна
	ErrInvalidTimeSlot = errors.New("book_appointment: invalid time slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("book_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("book_appointment: internal error")
)
