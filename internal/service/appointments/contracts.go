package appointments

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AppointmentDetails, error)
	List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.AppointmentDetails, error)
	Count(ctx context.Context, filter domain.AppointmentsFilter) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикует события жизненного цикла записей
type EventPublisher interface {
	AppointmentStatusChanged(ctx context.Context, appointment *domain.Appointment, previous domain.AppointmentStatus) error
}

// MetricsRecorder доменные счетчики
type MetricsRecorder interface {
	StatusChanged(status string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type noopMetrics struct{}

func (noopMetrics) StatusChanged(string) {}
