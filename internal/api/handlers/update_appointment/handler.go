package update_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
	updateAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/update_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgNotFound             = "запись не найдена"
	msgClientNotFound       = "клиент не найден"
	msgStaffNotFound        = "сотрудник не найден"
	msgTreatmentNotFound    = "услуга не найдена"
	msgConcurrentUpdate     = "запись была изменена параллельно, повторите запрос"
)

type Handler struct {
	useCase UpdateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase UpdateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := handlers.PathID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req UpdateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(appointmentID))
	if err != nil {
		var rejection *scheduling.RejectionError
		switch {
		case errors.Is(err, updateAppointment.ErrInvalidInput):
			h.logger.Warn("PATCH /appointments/{id} - Invalid input: appointment_id=%d, %v", appointmentID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, updateAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id} - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, updateAppointment.ErrClientNotFound):
			h.logger.Warn("PATCH /appointments/{id} - Client not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgClientNotFound)

		case errors.Is(err, updateAppointment.ErrStaffNotFound):
			h.logger.Warn("PATCH /appointments/{id} - Staff not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, updateAppointment.ErrTreatmentNotFound):
			h.logger.Warn("PATCH /appointments/{id} - Treatment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgTreatmentNotFound)

		case errors.Is(err, domain.ErrCompletedRequiresPayment):
			h.logger.Warn("PATCH /appointments/{id} - Completed without payment: appointment_id=%d", appointmentID)
			handlers.RespondUnprocessable(w, err.Error())

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("PATCH /appointments/{id} - Invalid transition: appointment_id=%d, %v", appointmentID, err)
			handlers.RespondConflict(w, err.Error())

		case errors.Is(err, updateAppointment.ErrConcurrentUpdate):
			h.logger.Warn("PATCH /appointments/{id} - Concurrent update: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.As(err, &rejection):
			h.logger.Warn("PATCH /appointments/{id} - Rejected: appointment_id=%d, reason=%v", appointmentID, rejection)
			if errors.Is(rejection, scheduling.ErrNonPositiveDuration) {
				handlers.RespondBadRequest(w, rejection.Error())
			} else {
				handlers.RespondConflict(w, rejection.Error())
			}

		default:
			h.logger.Error("PATCH /appointments/{id} - Failed to update appointment: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id} - Appointment updated successfully: appointment_id=%d, status=%s",
		appointmentID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
