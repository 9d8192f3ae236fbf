package book_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	CustomerID     uuid.UUID        // ID клиента
	ProfessionalID uuid.UUID        // ID профессионала
	ServiceID      uuid.UUID        // ID услуги
	Date           time.Time        // Дата записи (без времени)
	StartTime      types.TimeString // Начало слота, например "10:00"
	EndTime        types.TimeString // Конец слота, например "11:00"
}

// Options настройки бронирования
type Options struct {
	ConflictMode domain.ConflictMode
}

// Response созданная запись вместе с данными справочника и слота
type Response struct {
	ID              uuid.UUID
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StatusChangedAt time.Time

	Customer     Customer
	Professional Professional
	Service      Service
	Slot         Slot
}

// Customer данные клиента
type Customer struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
}

// Professional данные профессионала
type Professional struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Specialty string
}

// Service данные услуги
type Service struct {
	ID    uuid.UUID
	Name  string
	Price float64 // 0, если цена не указана
}

// Slot занятый слот
type Slot struct {
	ID        uuid.UUID
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
}
