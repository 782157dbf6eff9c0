package models

import (
	"errors"
	"math"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrPageOutOfRange возвращается, когда смещение страницы не помещается в int
	ErrPageOutOfRange = errors.New("page out of range")
)

// Pagination ограничения размера страницы
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultPagination значения по умолчанию
func DefaultPagination() Pagination {
	return Pagination{DefaultLimit: domain.DefaultLimit, MaxLimit: domain.MaxLimit}
}

// Request модели

// ListAppointmentsRequest запрос списка записей
// Нулевые Page и Limit заменяются значениями по умолчанию
type ListAppointmentsRequest struct {
	Status   *string
	StaffID  *string
	ClientID *string
	Date     *time.Time
	Page     int
	Limit    int
}

// Normalize приводит page и limit к допустимым значениям
func (r *ListAppointmentsRequest) Normalize(p Pagination) {
	if r.Page <= 0 {
		r.Page = domain.DefaultPage
	}
	if r.Limit <= 0 {
		r.Limit = p.DefaultLimit
	}
	if r.Limit > p.MaxLimit {
		r.Limit = p.MaxLimit
	}
}

// ToDomainFilter конвертирует request в domain фильтр
// Вызывается после Normalize
func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		StaffID:  r.StaffID,
		ClientID: r.ClientID,
		Date:     r.Date,
		Limit:    r.Limit,
	}

	// (page-1)*limit не должно переполняться
	if r.Limit > 0 && r.Page-1 > math.MaxInt/r.Limit {
		return filter, ErrPageOutOfRange
	}
	filter.Offset = (r.Page - 1) * r.Limit

	if r.Status != nil {
		status, err := ToDomainAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// UpdateStatusRequest запрос на смену статуса
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Response модели

// ClientResponse данные клиента
type ClientResponse struct {
	ID        string  `json:"id"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

// StaffResponse данные сотрудника
type StaffResponse struct {
	ID        string  `json:"id"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}

// ServiceResponse данные услуги
type ServiceResponse struct {
	ID       string   `json:"id"`
	Name     *string  `json:"name"`
	Duration *int     `json:"duration"`
	Price    *float64 `json:"price"`
}

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID        string `json:"id"`
	ClientID  string `json:"clientId"`
	StaffID   string `json:"staffId"`
	ServiceID string `json:"serviceId"`
	Date      string `json:"date"`      // "2024-01-10"
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "11:00"
	Status    string `json:"status"`
	Notes     string `json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Client  ClientResponse  `json:"client"`
	Staff   StaffResponse   `json:"staff"`
	Service ServiceResponse `json:"service"`
}

// AppointmentListResponse страница записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"totalPages"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.AppointmentDetails) *AppointmentResponse {
	if a == nil {
		return nil
	}

	return &AppointmentResponse{
		ID:        a.ID.String(),
		ClientID:  a.ClientID,
		StaffID:   a.StaffID,
		ServiceID: a.ServiceID,
		Date:      a.Date.Format(domain.DateFormat),
		StartTime: a.StartTime.String(),
		EndTime:   a.EndTime.String(),
		Status:    string(a.Status),
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Client: ClientResponse{
			ID:        a.ClientID,
			FirstName: a.Client.FirstName,
			LastName:  a.Client.LastName,
			Email:     a.Client.Email,
			Phone:     a.Client.Phone,
		},
		Staff: StaffResponse{
			ID:        a.StaffID,
			FirstName: a.Staff.FirstName,
			LastName:  a.Staff.LastName,
			Email:     a.Staff.Email,
		},
		Service: ServiceResponse{
			ID:       a.ServiceID,
			Name:     a.Service.Name,
			Duration: a.Service.Duration,
			Price:    a.Service.Price,
		},
	}
}

// FromDomainAppointmentList конвертирует страницу в DTO
func FromDomainAppointmentList(items []*domain.AppointmentDetails, total, page, limit int) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(items)),
		Total:        total,
		Page:         page,
		Limit:        limit,
		TotalPages:   TotalPages(total, limit),
	}

	for _, item := range items {
		if dto := FromDomainAppointment(item); dto != nil {
			resp.Appointments = append(resp.Appointments, *dto)
		}
	}

	return resp
}

// TotalPages ceil(total / limit)
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// ToDomainAppointmentStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainAppointmentStatus(status string) (domain.AppointmentStatus, error) {
	s, ok := domain.ParseAppointmentStatus(status)
	if !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}
