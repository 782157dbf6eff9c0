package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	LockStaffDay(ctx context.Context, staffID string, date time.Time) error
	GetActiveByStaffAndDate(ctx context.Context, staffID string, date time.Time) ([]*domain.Appointment, error)
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикует события жизненного цикла записей
type EventPublisher interface {
	AppointmentCreated(ctx context.Context, appointment *domain.Appointment) error
}

// MetricsRecorder доменные счетчики
type MetricsRecorder interface {
	AppointmentCreated()
	AppointmentConflict()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type noopMetrics struct{}

func (noopMetrics) AppointmentCreated()  {}
func (noopMetrics) AppointmentConflict() {}
