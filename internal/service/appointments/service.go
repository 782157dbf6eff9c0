package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Service сервис для чтения записей и смены их статуса
type Service struct {
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	publisher       EventPublisher
	metrics         MetricsRecorder
	pagination      models.Pagination
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
// metrics может быть nil, если метрики выключены
func NewService(
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics MetricsRecorder,
	pagination models.Pagination,
	logger Logger,
) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if pagination.DefaultLimit <= 0 || pagination.MaxLimit <= 0 {
		pagination = models.DefaultPagination()
	}
	return &Service{
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		publisher:       publisher,
		metrics:         metrics,
		pagination:      pagination,
		logger:          logger,
	}
}

// List возвращает страницу записей и общее количество по фильтру
// Страница и счетчик читаются из одного снимка (REPEATABLE READ, read-only)
func (s *Service) List(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	req.Normalize(s.pagination)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: page=%d, limit=%d: %v", req.Page, req.Limit, err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	s.logger.Info("List: page=%d, limit=%d", req.Page, req.Limit)

	var (
		items []*domain.AppointmentDetails
		total int
	)

	err = s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		total, err = s.appointmentRepo.Count(txCtx, filter)
		if err != nil {
			return err
		}

		items, err = s.appointmentRepo.List(txCtx, filter)
		return err
	})
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d of %d appointments", len(items), total)
	return models.FromDomainAppointmentList(items, total, req.Page, req.Limit), nil
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%s", id)

	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%s not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appointment), nil
}

// UpdateStatus меняет статус записи согласно жизненному циклу
// Строка читается FOR UPDATE, поэтому параллельные смены статуса одной записи идут по очереди
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: appointment id=%s, status=%s", id, req.Status)

	next, err := models.ToDomainAppointmentStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%q", req.Status)
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	var (
		updated  *domain.AppointmentDetails
		previous domain.AppointmentStatus
	)

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: UpdateStatus - get appointment: %v", ErrInternal, err)
		}

		previous = current.Status
		if !current.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
		}

		if err := s.appointmentRepo.UpdateStatus(txCtx, id, next); err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: UpdateStatus - update: %v", ErrInternal, err)
		}

		updated, err = s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("%w: UpdateStatus - reload appointment: %v", ErrInternal, err)
		}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			s.logger.Warn("UpdateStatus: appointment id=%s not found", id)
			return nil, err
		case errors.Is(err, ErrInvalidTransition):
			s.logger.Warn("UpdateStatus: appointment id=%s: %v", id, err)
			return nil, err
		case errors.Is(err, ErrInternal):
			s.logger.Error("UpdateStatus: appointment id=%s: %v", id, err)
			return nil, err
		default:
			s.logger.Error("UpdateStatus: transaction failed for appointment id=%s: %v", id, err)
			return nil, fmt.Errorf("%w: UpdateStatus - transaction: %v", ErrInternal, err)
		}
	}

	s.metrics.StatusChanged(string(next))
	trace.SpanFromContext(ctx).AddEvent("appointment.status_changed", trace.WithAttributes(
		attribute.String("appointment.id", id.String()),
		attribute.String("appointment.previous_status", string(previous)),
		attribute.String("appointment.status", string(next)),
	))
	s.logger.Info("UpdateStatus: appointment id=%s changed %s -> %s", id, previous, next)

	if err := s.publisher.AppointmentStatusChanged(ctx, &updated.Appointment, previous); err != nil {
		s.logger.Warn("UpdateStatus: failed to publish event for id=%s: %v", id, err)
	}

	return models.FromDomainAppointment(updated), nil
}
