package staff

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/staff/models"
)

// Service сервис статистики сотрудников
type Service struct {
	staffRepo    StaffRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(staffRepo StaffRepository, logger Logger) *Service {
	return &Service{
		staffRepo:    staffRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Workload возвращает всех сотрудников с количеством записей за последние 30 дней
func (s *Service) Workload(ctx context.Context) (*models.StaffListResponse, error) {
	now := s.timeProvider.Now().UTC()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -domain.StaffWorkloadWindowDays)

	s.logger.Info("Workload: fetching staff workload since %s", since.Format(domain.DateFormat))

	items, err := s.staffRepo.GetWorkload(ctx, since)
	if err != nil {
		s.logger.Error("Workload: repository error: %v", err)
		return nil, fmt.Errorf("%w: Workload - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Workload: fetched %d staff members", len(items))
	return models.FromDomainWorkloadList(items), nil
}
