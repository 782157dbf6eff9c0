package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ParseAppointmentStatus конвертирует строку в статус
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch status := AppointmentStatus(s); status {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return status, true
	default:
		return "", false
	}
}

// IsActive returns true if the status takes part in conflict checks
func (s AppointmentStatus) IsActive() bool {
	return s != StatusCancelled && s != StatusCompleted
}

// CanTransitionTo returns true if the lifecycle allows moving from s to next
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment represents a booked time range of a staff member for a client
type Appointment struct {
	ID        uuid.UUID
	ClientID  string
	StaffID   string
	ServiceID string
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	Status    AppointmentStatus
	Notes     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment blocks its time range
func (a *Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// TimeRange returns the half-open [start, end) range of the appointment
func (a *Appointment) TimeRange() TimeRange {
	return TimeRange{Start: a.StartTime, End: a.EndTime}
}

// ClientInfo данные клиента из таблицы clients (LEFT JOIN, поля могут отсутствовать)
type ClientInfo struct {
	ID        string
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
}

// StaffInfo данные сотрудника из таблицы staff
type StaffInfo struct {
	ID        string
	FirstName *string
	LastName  *string
	Email     *string
}

// ServiceInfo данные услуги из таблицы services
type ServiceInfo struct {
	ID       string
	Name     *string
	Duration *int
	Price    *float64
}

// AppointmentDetails запись вместе с клиентом, сотрудником и услугой
type AppointmentDetails struct {
	Appointment
	Client  ClientInfo
	Staff   StaffInfo
	Service ServiceInfo
}

// AppointmentsFilter фильтр списка записей
// Все условия необязательные и объединяются через AND
type AppointmentsFilter struct {
	Status   *AppointmentStatus
	StaffID  *string
	ClientID *string
	Date     *time.Time
	Limit    int
	Offset   int
}
