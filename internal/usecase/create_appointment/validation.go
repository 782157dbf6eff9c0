package create_appointment

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if err := validateID("clientId", req.ClientID); err != nil {
		return err
	}

	if err := validateID("staffId", req.StaffID); err != nil {
		return err
	}

	if err := validateID("serviceId", req.ServiceID); err != nil {
		return err
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := validateTime("startTime", req.StartTime); err != nil {
		return err
	}

	if err := validateTime("endTime", req.EndTime); err != nil {
		return err
	}

	// Интервал в пределах одних суток, конец строго позже начала
	if !req.StartTime.IsBefore(req.EndTime) {
		return fmt.Errorf("%w: endTime must be after startTime", ErrInvalidInput)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

func validateID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if len(value) > domain.MaxIDLength {
		return fmt.Errorf("%w: %s is too long", ErrInvalidInput, field)
	}
	return nil
}

func validateTime(field string, value types.TimeString) error {
	if value.IsZero() {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if err := value.Validate(); err != nil {
		return fmt.Errorf("%w: invalid %s format: %v", ErrInvalidInput, field, err)
	}
	return nil
}
