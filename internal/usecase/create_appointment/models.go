package create_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	ClientID  string           // ID клиента
	StaffID   string           // ID сотрудника
	ServiceID string           // ID услуги
	Date      time.Time        // Дата записи (без времени)
	StartTime types.TimeString // Время начала, HH:MM
	EndTime   types.TimeString // Время окончания, HH:MM (не включается в интервал)
	Notes     *string          // Заметки (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	ID        uuid.UUID
	ClientID  string
	StaffID   string
	ServiceID string
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	Status    string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
