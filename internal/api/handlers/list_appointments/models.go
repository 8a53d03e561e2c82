package list_appointments

import (
	"fmt"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// parseListRequest собирает параметры списка из query string
// ?clientId=&staffId=&status=&paymentStatus=&from=&to=&search=&page=&limit=&sortBy=&sortOrder=&include=
func parseListRequest(r *http.Request) (*models.ListRequest, error) {
	var (
		req models.ListRequest
		err error
	)

	if req.ClientID, err = handlers.QueryInt64(r, "clientId"); err != nil {
		return nil, err
	}
	if req.StaffID, err = handlers.QueryInt64(r, "staffId"); err != nil {
		return nil, err
	}
	if req.From, err = handlers.QueryTime(r, "from"); err != nil {
		return nil, err
	}
	if req.To, err = handlers.QueryTime(r, "to"); err != nil {
		return nil, err
	}
	if req.Page, err = handlers.QueryInt(r, "page"); err != nil {
		return nil, err
	}
	if req.Limit, err = handlers.QueryInt(r, "limit"); err != nil {
		return nil, err
	}
	if req.Include, err = handlers.QueryInclude(r, domain.IncludeNone); err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}

	req.Status = handlers.QueryString(r, "status")
	req.PaymentStatus = handlers.QueryString(r, "paymentStatus")
	req.Search = handlers.QueryString(r, "search")
	req.SortBy = handlers.QueryString(r, "sortBy")
	req.SortOrder = handlers.QueryString(r, "sortOrder")

	return &req, nil
}
