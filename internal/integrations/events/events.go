// Package events публикует события жизненного цикла записей в kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Типы событий
const (
	TypeCreated   = "appointment.created"
	TypeApproved  = "appointment.approved"
	TypeRejected  = "appointment.rejected"
	TypeCancelled = "appointment.cancelled"
	TypeFinished  = "appointment.finished"
	TypeDeleted   = "appointment.deleted"
)

// Заголовки сообщения
const (
	HeaderEventID   = "event_id"
	HeaderEventType = "event_type"
)

// ErrPublish возвращается, если сообщение не удалось записать в kafka
var ErrPublish = errors.New("events publisher: failed to publish")

// Event событие жизненного цикла записи
type Event struct {
	ID             uuid.UUID `json:"id"`
	Type           string    `json:"type"`
	AppointmentID  uuid.UUID `json:"appointmentId"`
	CustomerID     uuid.UUID `json:"customerId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
	ServiceID      uuid.UUID `json:"serviceId"`
	SlotID         uuid.UUID `json:"slotId"`
	Date           string    `json:"date"`
	StartTime      string    `json:"startTime"`
	EndTime        string    `json:"endTime"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// NewEvent строит событие из записи
func NewEvent(eventType string, a *domain.Appointment, occurredAt time.Time) Event {
	return Event{
		ID:             uuid.New(),
		Type:           eventType,
		AppointmentID:  a.ID,
		CustomerID:     a.CustomerID,
		ProfessionalID: a.ProfessionalID,
		ServiceID:      a.ServiceID,
		SlotID:         a.SlotID,
		Date:           a.Date.Format(types.DateFormat),
		StartTime:      a.StartTime.String(),
		EndTime:        a.EndTime.String(),
		Status:         string(a.Status),
		OccurredAt:     occurredAt.UTC(),
	}
}

// TypeForOperation тип события для операции жизненного цикла
func TypeForOperation(op domain.Operation) string {
	switch op {
	case domain.OperationApprove:
		return TypeApproved
	case domain.OperationReject:
		return TypeRejected
	case domain.OperationCancel:
		return TypeCancelled
	case domain.OperationFinish:
		return TypeFinished
	default:
		return "appointment." + string(op)
	}
}

// MessageWriter часть kafka.Writer, нужная публикатору
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher пишет события в топик; ключ сообщения - ID записи,
// поэтому события одной записи попадают в одну партицию по порядку
type Publisher struct {
	writer MessageWriter
}

// NewPublisher создает публикатор поверх kafka.Writer
func NewPublisher(brokers []string, topic string) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	})
}

// NewPublisherWithWriter создает публикатор с заданным writer (используется в тестах)
func NewPublisherWithWriter(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Publish синхронно записывает событие
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: encode event: %v", ErrPublish, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.AppointmentID.String()),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(event.ID.String())},
			{Key: HeaderEventType, Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrPublish, event.Type, event.AppointmentID, err)
	}
	return nil
}

// Close закрывает writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Noop публикатор для events.enabled = false
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }
