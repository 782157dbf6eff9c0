package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
)

var tracer = otel.Tracer("usecase/create_appointment")

// UseCase use case для создания записи без двойного бронирования
type UseCase struct {
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	publisher       EventPublisher
	metrics         MetricsRecorder
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
// metrics может быть nil, если метрики выключены
func NewUseCase(
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		publisher:       publisher,
		metrics:         metrics,
		logger:          logger,
	}
}

// Execute выполняет use case создания записи
// Проверка пересечений и вставка выполняются в одной транзакции под advisory-блокировкой
// на (сотрудник, дата), поэтому из конкурирующих запросов на одно время успешен ровно один
func (uc *UseCase) Execute(ctx context.Context, req *Request) (_ *Response, err error) {
	ctx, span := tracer.Start(ctx, "CreateAppointment")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	uc.logger.Info("CreateAppointment: client=%s, staff=%s, service=%s, date=%s, time=%s-%s",
		req.ClientID, req.StaffID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("appointment.staff_id", req.StaffID),
		attribute.String("appointment.date", req.Date.Format(domain.DateFormat)),
	)

	candidate := domain.TimeRange{Start: req.StartTime, End: req.EndTime}

	var result *domain.Appointment

	// 2. Проверка и вставка в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2.1. Сериализуем бронирования сотрудника на эту дату
		if err := uc.appointmentRepo.LockStaffDay(txCtx, req.StaffID, req.Date); err != nil {
			uc.logger.Error("CreateAppointment: failed to lock staff=%s date=%s: %v",
				req.StaffID, req.Date.Format(domain.DateFormat), err)
			return fmt.Errorf("%w: failed to lock staff day: %v", ErrInternal, err)
		}

		// 2.2. Активные записи сотрудника на эту дату
		existing, err := uc.appointmentRepo.GetActiveByStaffAndDate(txCtx, req.StaffID, req.Date)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		// 2.3. Проверяем пересечения
		if conflicts := domain.FindOverlapping(candidate, existing); len(conflicts) > 0 {
			uc.logger.Warn("CreateAppointment: slot %s-%s overlaps appointment id=%s",
				req.StartTime, req.EndTime, conflicts[0].ID)
			return ErrSlotNotAvailable
		}

		// 2.4. Создаем запись
		appointment := &domain.Appointment{
			ClientID:  req.ClientID,
			StaffID:   req.StaffID,
			ServiceID: req.ServiceID,
			Date:      req.Date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Status:    domain.StatusScheduled,
		}
		if req.Notes != nil {
			appointment.Notes = *req.Notes
		}

		created, err := uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			switch {
			case errors.Is(err, appointmentRepo.ErrOverlap):
				uc.logger.Warn("CreateAppointment: exclusion constraint rejected insert: %v", err)
				return ErrSlotNotAvailable
			case errors.Is(err, appointmentRepo.ErrReferenceNotFound):
				uc.logger.Warn("CreateAppointment: unknown client, staff or service: %v", err)
				return fmt.Errorf("%w: client, staff or service not found", ErrInvalidInput)
			default:
				uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
				return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
			}
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrSlotNotAvailable) {
			uc.metrics.AppointmentConflict()
			return nil, err
		}
		if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("CreateAppointment: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}

	uc.metrics.AppointmentCreated()
	uc.logger.Info("CreateAppointment: successfully created appointment id=%s", result.ID)

	// 3. Событие публикуется после коммита, ошибка публикации не отменяет запись
	if err := uc.publisher.AppointmentCreated(ctx, result); err != nil {
		uc.logger.Warn("CreateAppointment: failed to publish event for id=%s: %v", result.ID, err)
	}

	return &Response{
		ID:        result.ID,
		ClientID:  result.ClientID,
		StaffID:   result.StaffID,
		ServiceID: result.ServiceID,
		Date:      result.Date,
		StartTime: result.StartTime,
		EndTime:   result.EndTime,
		Status:    string(result.Status),
		Notes:     result.Notes,
		CreatedAt: result.CreatedAt,
		UpdatedAt: result.UpdatedAt,
	}, nil
}
