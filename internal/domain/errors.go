package domain

import "errors"

// Виды ошибок планировщика. Ошибки use case и сервисов оборачивают их,
// поэтому вызывающий код может проверять как точную ошибку, так и её вид.
var (
	// ErrNotFound клиент, профессионал, услуга, запись или слот отсутствуют
	ErrNotFound = errors.New("domain: not found")

	// ErrInvalidAvailabilityWindow некорректный профиль доступности профессионала
	ErrInvalidAvailabilityWindow = errors.New("domain: invalid availability window")

	// ErrSlotUnavailable слот уже занят
	ErrSlotUnavailable = errors.New("domain: slot unavailable")

	// ErrInvalidStateTransition переход статуса записи недопустим из текущего состояния
	ErrInvalidStateTransition = errors.New("domain: invalid state transition")

	// ErrInvalidStatus неизвестный статус записи
	ErrInvalidStatus = errors.New("domain: invalid appointment status")

	// ErrInvalidOperation неизвестная операция жизненного цикла
	ErrInvalidOperation = errors.New("domain: invalid lifecycle operation")
)
