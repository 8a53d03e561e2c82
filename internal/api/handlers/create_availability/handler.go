package create_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability"
)

const (
	msgInvalidStaffID     = "некорректный ID сотрудника"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgStaffNotFound      = "сотрудник не найден"
	msgOverlappingBlock   = "блок пересекается с существующим блоком доступности"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/staff/{staffId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	staffID, err := handlers.PathID(r, "staffId")
	if err != nil {
		h.logger.Warn("POST /staff/{id}/availability - Invalid staff ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	var req CreateBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /staff/{id}/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), req.ToServiceRequest(staffID))
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("POST /staff/{id}/availability - Invalid input: staff_id=%d, %v", staffID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, availability.ErrStaffNotFound):
			h.logger.Warn("POST /staff/{id}/availability - Staff not found: staff_id=%d", staffID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, availability.ErrOverlappingBlock):
			h.logger.Warn("POST /staff/{id}/availability - Overlapping block: staff_id=%d, %v", staffID, err)
			handlers.RespondConflict(w, msgOverlappingBlock)

		default:
			h.logger.Error("POST /staff/{id}/availability - Failed to create block: staff_id=%d, error=%v", staffID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /staff/{id}/availability - Block created: block_id=%d, staff_id=%d", result.ID, staffID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
