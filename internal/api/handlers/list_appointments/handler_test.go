package list_appointments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type stubService struct {
	got  *models.ListAppointmentsRequest
	resp *models.AppointmentListResponse
	err  error
}

func (s *stubService) List(_ context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.got = req
	return s.resp, s.err
}

func serve(svc *stubService, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle_PassesFilters(t *testing.T) {
	svc := &stubService{resp: &models.AppointmentListResponse{
		Appointments: []models.AppointmentResponse{{ID: "a1"}},
		Total:        21,
		Page:         3,
		Limit:        10,
		TotalPages:   3,
	}}

	rec := serve(svc, "/api/v1/appointments?status=scheduled&staffId=S1&date=2024-01-10&page=3&limit=10")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, "scheduled", *svc.got.Status)
	assert.Equal(t, "S1", *svc.got.StaffID)
	assert.Nil(t, svc.got.ClientID)
	assert.Equal(t, "2024-01-10", svc.got.Date.Format("2006-01-02"))
	assert.Equal(t, 3, svc.got.Page)
	assert.Equal(t, 10, svc.got.Limit)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 21, body["total"])
	assert.EqualValues(t, 3, body["totalPages"])
	assert.Len(t, body["appointments"], 1)
}

func TestHandle_BadRequests(t *testing.T) {
	for _, target := range []string{
		"/api/v1/appointments?date=2024-13-01",
		"/api/v1/appointments?page=0",
		"/api/v1/appointments?limit=abc",
	} {
		rec := serve(&stubService{}, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	rec := serve(&stubService{err: fmt.Errorf("%w: %w", appointments.ErrInvalidInput, models.ErrInvalidStatus)}, "/api/v1/appointments?status=done")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgInvalidStatus, errorMessage(t, rec))
}

func TestHandle_HugePageIsBadRequest(t *testing.T) {
	svc := &stubService{err: fmt.Errorf("%w: %w", appointments.ErrInvalidInput, models.ErrPageOutOfRange)}

	rec := serve(svc, "/api/v1/appointments?page=1844674407370955163&limit=10")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgPageOutOfRange, errorMessage(t, rec))
	require.NotNil(t, svc.got)
	assert.Equal(t, 10, svc.got.Limit)
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, handlers.CodeValidation, body.Code)
	return body.Message
}

func TestHandle_InternalError(t *testing.T) {
	rec := serve(&stubService{err: errors.New("db down")}, "/api/v1/appointments")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
