package check_availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса проверки доступности сотрудника
type Request struct {
	StaffID   string
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
}

// Response результат проверки
type Response struct {
	StaffID   string
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	Available bool
	Conflicts []Conflict // Пересекающиеся активные записи, пусто если Available
}

// Conflict активная запись, занимающая часть интервала
type Conflict struct {
	ID        uuid.UUID
	StartTime types.TimeString
	EndTime   types.TimeString
	Status    string
}
