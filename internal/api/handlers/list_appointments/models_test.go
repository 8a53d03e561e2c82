package list_appointments

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func TestParseListRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet,
		"/api/v1/appointments?staffId=3&status=confirmed&sortBy=price&sortOrder=asc&page=2&limit=20&include=all&to=2024-02-01T00:00:00Z", nil)

	req, err := parseListRequest(r)
	require.NoError(t, err)

	assert.Equal(t, int64(3), *req.StaffID)
	assert.Nil(t, req.ClientID)
	assert.Equal(t, "confirmed", *req.Status)
	assert.Equal(t, "price", *req.SortBy)
	assert.Equal(t, "asc", *req.SortOrder)
	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 20, req.Limit)
	assert.Equal(t, domain.IncludeAll, req.Include)
	assert.Nil(t, req.From)
	require.NotNil(t, req.To)
}

func TestParseListRequest_Errors(t *testing.T) {
	for _, q := range []string{"staffId=x", "page=one", "from=today", "include=invoices"} {
		_, err := parseListRequest(httptest.NewRequest(http.MethodGet, "/api/v1/appointments?"+q, nil))
		assert.Error(t, err, q)
	}
}
