package update_appointment_status

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type stubService struct {
	gotStatus string
	err       error
}

func (s *stubService) UpdateStatus(_ context.Context, id uuid.UUID, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.gotStatus = req.Status
	if s.err != nil {
		return nil, s.err
	}
	return &models.AppointmentResponse{ID: id.String(), Status: req.Status}, nil
}

func serve(svc *stubService, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/"+id+"/status", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"appointmentId": id})
	rec := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	svc := &stubService{}

	rec := serve(svc, uuid.NewString(), `{"status":"confirmed"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", svc.gotStatus)
	assert.Contains(t, rec.Body.String(), `"status":"confirmed"`)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		body   string
		err    error
		status int
	}{
		{name: "bad id", id: "42", body: `{"status":"confirmed"}`, status: http.StatusBadRequest},
		{name: "bad body", id: uuid.NewString(), body: `status=confirmed`, status: http.StatusBadRequest},
		{name: "unknown status", id: uuid.NewString(), body: `{"status":"done"}`, err: appointments.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "not found", id: uuid.NewString(), body: `{"status":"confirmed"}`, err: appointments.ErrAppointmentNotFound, status: http.StatusNotFound},
		{name: "forbidden transition", id: uuid.NewString(), body: `{"status":"scheduled"}`, err: appointments.ErrInvalidTransition, status: http.StatusConflict},
		{name: "internal", id: uuid.NewString(), body: `{"status":"confirmed"}`, err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubService{err: tt.err}, tt.id, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
