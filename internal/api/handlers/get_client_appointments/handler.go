package get_client_appointments

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgInvalidClientID = "некорректный ID клиента"
	msgInvalidInclude  = "некорректный параметр include"
	msgClientNotFound  = "клиент не найден"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/clients/{clientId}/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clientID, err := handlers.PathID(r, "clientId")
	if err != nil {
		h.logger.Warn("GET /clients/{id}/appointments - Invalid client ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClientID)
		return
	}

	include, err := handlers.QueryInclude(r, domain.IncludeNone)
	if err != nil {
		h.logger.Warn("GET /clients/{id}/appointments - Invalid include: %v", err)
		handlers.RespondBadRequest(w, msgInvalidInclude)
		return
	}

	result, err := h.service.FindByClient(r.Context(), clientID, include)
	if err != nil {
		if errors.Is(err, appointments.ErrClientNotFound) {
			h.logger.Warn("GET /clients/{id}/appointments - Client not found: client_id=%d", clientID)
			handlers.RespondNotFound(w, msgClientNotFound)
			return
		}
		h.logger.Error("GET /clients/{id}/appointments - Failed to get appointments: client_id=%d, error=%v",
			clientID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /clients/{id}/appointments - Found %d appointments for client_id=%d", len(result), clientID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
