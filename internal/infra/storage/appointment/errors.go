package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrOverlap возвращается, когда вставка нарушила ограничение appointments_no_overlap
	ErrOverlap = errors.New("appointment.repository: overlapping active appointment exists")

	// ErrReferenceNotFound возвращается, когда клиент, сотрудник или услуга не существуют
	ErrReferenceNotFound = errors.New("appointment.repository: referenced client, staff or service not found")

	// ErrLock возвращается при ошибке получения блокировки
	ErrLock = errors.New("appointment.repository: failed to acquire lock")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
