package domain

// DateFormat формат даты YYYY-MM-DD
const DateFormat = "2006-01-02"

// Business validation constants
const (
	MaxNotesLength = 500
	MaxIDLength    = 64
)

// Pagination defaults
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// StaffWorkloadWindowDays период, за который считается загрузка сотрудников
const StaffWorkloadWindowDays = 30

// InactiveStatuses статусы, которые не участвуют в проверке пересечений
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusCompleted,
}

// allowedTransitions жизненный цикл записи
// completed и cancelled - терминальные статусы
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled: {StatusConfirmed, StatusCompleted, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}
