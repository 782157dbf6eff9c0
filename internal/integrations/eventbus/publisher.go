package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// MessageWriter интерфейс *kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Publisher публикует события записей в Kafka
// Ключ сообщения - staff_id, поэтому события одного сотрудника попадают в одну партицию и не переупорядочиваются
type Publisher struct {
	writer MessageWriter
	log    Logger
	now    func() time.Time
}

// NewPublisher создает publisher поверх kafka.Writer
func NewPublisher(brokers []string, topic string, log Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return NewPublisherWithWriter(writer, log)
}

// NewPublisherWithWriter создает publisher с произвольным writer (используется в тестах)
func NewPublisherWithWriter(writer MessageWriter, log Logger) *Publisher {
	return &Publisher{writer: writer, log: log, now: time.Now}
}

// AppointmentCreated публикует событие appointment.created
func (p *Publisher) AppointmentCreated(ctx context.Context, a *domain.Appointment) error {
	return p.publish(ctx, newEvent(EventAppointmentCreated, a, "", p.now()), a.StaffID)
}

// AppointmentStatusChanged публикует событие appointment.status_changed
func (p *Publisher) AppointmentStatusChanged(ctx context.Context, a *domain.Appointment, previous domain.AppointmentStatus) error {
	return p.publish(ctx, newEvent(EventAppointmentStatusChanged, a, previous, p.now()), a.StaffID)
}

// Close закрывает writer, дожидаясь отправки буфера
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) publish(ctx context.Context, event Event, key string) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: event=%s id=%s: %v", ErrPublish, event.EventType, event.EventID, err)
	}

	p.log.Info("Event published: type=%s, event_id=%s, appointment_id=%s",
		event.EventType, event.EventID, event.Appointment.ID)
	return nil
}

// NoopPublisher используется, когда Kafka выключена
type NoopPublisher struct{}

func (NoopPublisher) AppointmentCreated(context.Context, *domain.Appointment) error {
	return nil
}

func (NoopPublisher) AppointmentStatusChanged(context.Context, *domain.Appointment, domain.AppointmentStatus) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
