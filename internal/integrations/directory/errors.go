package directory

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrCustomerNotFound возвращается, когда клиент не найден
	ErrCustomerNotFound = fmt.Errorf("directory client: customer not found: %w", domain.ErrNotFound)

	// ErrProfessionalNotFound возвращается, когда профессионал не найден
	ErrProfessionalNotFound = fmt.Errorf("directory client: professional not found: %w", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("directory client: service not found: %w", domain.ErrNotFound)

	// ErrProfileNotFound возвращается, когда у профессионала нет профиля доступности
	ErrProfileNotFound = fmt.Errorf("directory client: availability profile not found: %w", domain.ErrNotFound)

	// ErrProfessionalListNotFound возвращается, если справочник не отдает список профессионалов
	ErrProfessionalListNotFound = errors.New("directory client: professional list not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("directory client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("directory client: invalid response")
)
