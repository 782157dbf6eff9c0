package check_availability

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// UseCase use case проверки, свободен ли сотрудник в интервале
// Результат носит информационный характер: гарантию даёт только создание записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(appointmentRepo AppointmentRepository, logger Logger) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		logger:          logger,
	}
}

// Execute выполняет проверку доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckAvailability: staff=%s, date=%s, time=%s-%s",
		req.StaffID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CheckAvailability: validation failed: %v", err)
		return nil, err
	}

	appointments, err := uc.appointmentRepo.GetActiveByStaffAndDate(ctx, req.StaffID, req.Date)
	if err != nil {
		uc.logger.Error("CheckAvailability: failed to get appointments for staff=%s: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	overlapping := domain.FindOverlapping(domain.TimeRange{Start: req.StartTime, End: req.EndTime}, appointments)

	conflicts := make([]Conflict, 0, len(overlapping))
	for _, a := range overlapping {
		conflicts = append(conflicts, Conflict{
			ID:        a.ID,
			StartTime: a.StartTime,
			EndTime:   a.EndTime,
			Status:    string(a.Status),
		})
	}

	return &Response{
		StaffID:   req.StaffID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}
