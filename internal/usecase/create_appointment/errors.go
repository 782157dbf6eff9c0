package create_appointment

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrSlotNotAvailable возвращается, когда у сотрудника уже есть активная запись на пересекающееся время
	ErrSlotNotAvailable = errors.New("create_appointment: time slot is not available")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
