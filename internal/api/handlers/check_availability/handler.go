package check_availability

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	checkAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_availability"
)

const (
	msgInvalidParams = "некорректные параметры запроса: нужны date (YYYY-MM-DD), startTime и endTime (HH:MM)"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/staff/{staffId}/availability
// Query params: date, startTime, endTime (обязательные)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	staffID := mux.Vars(r)["staffId"]

	useCaseReq, err := ToUseCaseRequest(staffID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /staff/{id}/availability - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, checkAvailability.ErrInvalidInput):
			h.logger.Warn("GET /staff/{id}/availability - Validation failed: staff_id=%s, %v", staffID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /staff/{id}/availability - Failed to check availability: staff_id=%s, error=%v", staffID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /staff/{id}/availability - staff_id=%s, available=%t, conflicts=%d",
		staffID, result.Available, len(result.Conflicts))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
