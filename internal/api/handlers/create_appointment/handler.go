package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgClientNotFound     = "клиент не найден"
	msgStaffNotFound      = "сотрудник не найден"
	msgTreatmentNotFound  = "услуга не найдена"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		var rejection *scheduling.RejectionError
		switch {
		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, createAppointment.ErrClientNotFound):
			h.logger.Warn("POST /appointments - Client not found: client_id=%d", req.ClientID)
			handlers.RespondNotFound(w, msgClientNotFound)

		case errors.Is(err, createAppointment.ErrStaffNotFound):
			h.logger.Warn("POST /appointments - Staff not found: staff_id=%d", req.StaffID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, createAppointment.ErrTreatmentNotFound):
			h.logger.Warn("POST /appointments - Treatment not found: treatment_id=%d", req.TreatmentID)
			handlers.RespondNotFound(w, msgTreatmentNotFound)

		case errors.Is(err, domain.ErrCompletedRequiresPayment):
			h.logger.Warn("POST /appointments - Completed without payment: client_id=%d", req.ClientID)
			handlers.RespondUnprocessable(w, err.Error())

		case errors.As(err, &rejection):
			h.logger.Warn("POST /appointments - Rejected: staff_id=%d, reason=%v", req.StaffID, rejection)
			if errors.Is(rejection, scheduling.ErrNonPositiveDuration) {
				handlers.RespondBadRequest(w, rejection.Error())
			} else {
				handlers.RespondConflict(w, rejection.Error())
			}

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: client_id=%d, staff_id=%d, error=%v",
				req.ClientID, req.StaffID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%d, staff_id=%d",
		result.ID, result.StaffID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
