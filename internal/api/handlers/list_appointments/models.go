package list_appointments

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// ToServiceRequest собирает запрос к сервису из query параметров
// Пустой параметр означает отсутствие фильтра
func ToServiceRequest(query url.Values) (*models.ListAppointmentsRequest, error) {
	req := &models.ListAppointmentsRequest{
		Status:   optional(query.Get("status")),
		StaffID:  optional(query.Get("staffId")),
		ClientID: optional(query.Get("clientId")),
	}

	if dateStr := query.Get("date"); dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", dateStr, err)
		}
		req.Date = &date
	}

	var err error
	if req.Page, err = positiveInt(query.Get("page")); err != nil {
		return nil, fmt.Errorf("invalid page: %w", err)
	}
	if req.Limit, err = positiveInt(query.Get("limit")); err != nil {
		return nil, fmt.Errorf("invalid limit: %w", err)
	}

	return req, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// positiveInt возвращает 0 для пустой строки, сервис подставит значение по умолчанию
func positiveInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
