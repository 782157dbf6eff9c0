package check_availability

import (
	"fmt"
	"net/url"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	checkAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_availability"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	StaffID   string             `json:"staffId"`
	Date      string             `json:"date"`
	StartTime string             `json:"startTime"`
	EndTime   string             `json:"endTime"`
	Available bool               `json:"available"`
	Conflicts []ConflictResponse `json:"conflicts"`
}

// ConflictResponse пересекающаяся запись
type ConflictResponse struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status"`
}

// ToUseCaseRequest собирает запрос use case из пути и query параметров
func ToUseCaseRequest(staffID string, query url.Values) (*checkAvailability.Request, error) {
	dateStr := query.Get("date")
	if dateStr == "" {
		return nil, fmt.Errorf("date is required")
	}
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	return &checkAvailability.Request{
		StaffID:   staffID,
		Date:      date,
		StartTime: types.NormalizeTimeString(query.Get("startTime")),
		EndTime:   types.NormalizeTimeString(query.Get("endTime")),
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkAvailability.Response) *AvailabilityResponse {
	result := &AvailabilityResponse{
		StaffID:   resp.StaffID,
		Date:      resp.Date.Format(domain.DateFormat),
		StartTime: resp.StartTime.String(),
		EndTime:   resp.EndTime.String(),
		Available: resp.Available,
		Conflicts: make([]ConflictResponse, 0, len(resp.Conflicts)),
	}

	for _, c := range resp.Conflicts {
		result.Conflicts = append(result.Conflicts, ConflictResponse{
			ID:        c.ID.String(),
			StartTime: c.StartTime.String(),
			EndTime:   c.EndTime.String(),
			Status:    c.Status,
		})
	}

	return result
}
