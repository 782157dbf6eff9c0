package eventbus

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Типы событий жизненного цикла записи
const (
	EventAppointmentCreated       = "appointment.created"
	EventAppointmentStatusChanged = "appointment.status_changed"
)

// Event конверт события, сериализуется в JSON
type Event struct {
	EventID     string             `json:"eventId"`
	EventType   string             `json:"eventType"`
	OccurredAt  time.Time          `json:"occurredAt"`
	Appointment AppointmentPayload `json:"appointment"`
}

// AppointmentPayload снимок записи на момент события
type AppointmentPayload struct {
	ID             string `json:"id"`
	ClientID       string `json:"clientId"`
	StaffID        string `json:"staffId"`
	ServiceID      string `json:"serviceId"`
	Date           string `json:"date"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previousStatus,omitempty"`
}

func newEvent(eventType string, a *domain.Appointment, previous domain.AppointmentStatus, now time.Time) Event {
	return Event{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: now.UTC(),
		Appointment: AppointmentPayload{
			ID:             a.ID.String(),
			ClientID:       a.ClientID,
			StaffID:        a.StaffID,
			ServiceID:      a.ServiceID,
			Date:           a.Date.Format(domain.DateFormat),
			StartTime:      a.StartTime.String(),
			EndTime:        a.EndTime.String(),
			Status:         string(a.Status),
			PreviousStatus: string(previous),
		},
	}
}
