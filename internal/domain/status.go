package domain

import (
	"fmt"
	"strings"
)

// Status статус записи
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
	StatusFinished  Status = "FINISHED"
)

// ActiveStatuses статусы, при которых запись удерживает слот
var ActiveStatuses = []Status{StatusPending, StatusApproved}

// ParseStatus разбирает статус без учета регистра
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusFinished:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// IsActive true для PENDING и APPROVED
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

// IsTerminal true для REJECTED, CANCELLED и FINISHED
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusFinished
}

// Operation операция жизненного цикла записи
type Operation string

const (
	OperationApprove Operation = "approve"
	OperationReject  Operation = "reject"
	OperationCancel  Operation = "cancel"
	OperationFinish  Operation = "finish"
)

// ParseOperation разбирает название операции
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := transitions[op]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperation, s)
	}
	return op, nil
}

type transition struct {
	from []Status
	to   Status
}

// transitions таблица допустимых переходов; всё, чего нет в таблице, запрещено
var transitions = map[Operation]transition{
	OperationApprove: {from: []Status{StatusPending}, to: StatusApproved},
	OperationReject:  {from: []Status{StatusPending}, to: StatusRejected},
	OperationCancel:  {from: []Status{StatusPending, StatusApproved}, to: StatusCancelled},
	OperationFinish:  {from: []Status{StatusApproved}, to: StatusFinished},
}

// NextStatus возвращает статус после применения операции
func NextStatus(from Status, op Operation) (Status, error) {
	t, ok := transitions[op]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperation, op)
	}
	for _, allowed := range t.from {
		if allowed == from {
			return t.to, nil
		}
	}
	return "", fmt.Errorf("%w: cannot %s appointment in status %s", ErrInvalidStateTransition, op, from)
}

// FreesSlot true для операций, после которых слот может быть освобожден
func (op Operation) FreesSlot() bool {
	return op == OperationCancel || op == OperationReject
}
