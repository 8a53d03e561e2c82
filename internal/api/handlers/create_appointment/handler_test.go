package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type stubUseCase struct {
	got  *createAppointment.Request
	resp *models.AppointmentResponse
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *createAppointment.Request) (*models.AppointmentResponse, error) {
	s.got = req
	return s.resp, s.err
}

const validBody = `{"clientId":1,"staffId":2,"treatmentId":3,
	"startTime":"2024-01-01T09:00:00-05:00","endTime":"2024-01-01T10:00:00-05:00","status":"confirmed"}`

func TestHandle_Created(t *testing.T) {
	uc := &stubUseCase{resp: &models.AppointmentResponse{ID: 10, StaffID: 2, Status: "confirmed"}}
	h := NewHandler(uc, logger.NewNop())

	w := httptest.NewRecorder()
	h.Handle(w, httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(validBody)))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":10`)
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(2), uc.got.StaffID)
	require.NotNil(t, uc.got.Status)
	assert.Equal(t, domain.StatusConfirmed, *uc.got.Status)
	assert.Equal(t, 9, uc.got.StartTime.Hour())
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", fmt.Errorf("%w: clientId must be positive", createAppointment.ErrInvalidInput), http.StatusBadRequest},
		{"client not found", createAppointment.ErrClientNotFound, http.StatusNotFound},
		{"staff not found", createAppointment.ErrStaffNotFound, http.StatusNotFound},
		{"treatment not found", createAppointment.ErrTreatmentNotFound, http.StatusNotFound},
		{"completed without payment", domain.ErrCompletedRequiresPayment, http.StatusUnprocessableEntity},
		{"capacity exceeded", &scheduling.RejectionError{Reason: scheduling.ErrCapacityExceeded, StaffID: 2}, http.StatusConflict},
		{"outside availability", &scheduling.RejectionError{Reason: scheduling.ErrOutsideAvailability, StaffID: 2}, http.StatusConflict},
		{"non-positive duration", &scheduling.RejectionError{Reason: scheduling.ErrNonPositiveDuration, StaffID: 2}, http.StatusBadRequest},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubUseCase{err: tt.err}, logger.NewNop())

			w := httptest.NewRecorder()
			h.Handle(w, httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(validBody)))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandle_InvalidBody(t *testing.T) {
	uc := &stubUseCase{}
	h := NewHandler(uc, logger.NewNop())

	w := httptest.NewRecorder()
	h.Handle(w, httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(`{"startTime":"tomorrow"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, uc.got)
}
