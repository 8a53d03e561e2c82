package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func TestPathID(t *testing.T) {
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "42"})
	id, err := PathID(r, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "abc", "0", "-1"} {
		r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": raw})
		_, err := PathID(r, "id")
		assert.ErrorIs(t, err, ErrInvalidPathParam, raw)
	}
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "x", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	assert.Error(t, DecodeJSON(r, &v))
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondConflict(w, "capacity exceeded")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"code":409,"message":"capacity exceeded"}`, w.Body.String())
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?staffId=7&page=2&from=2024-01-01T09:00:00Z&include=client,staff&search=", nil)

	staffID, err := QueryInt64(r, "staffId")
	require.NoError(t, err)
	assert.Equal(t, int64(7), *staffID)

	clientID, err := QueryInt64(r, "clientId")
	require.NoError(t, err)
	assert.Nil(t, clientID)

	page, err := QueryInt(r, "page")
	require.NoError(t, err)
	assert.Equal(t, 2, page)

	from, err := QueryTime(r, "from")
	require.NoError(t, err)
	assert.Equal(t, 9, from.Hour())

	include, err := QueryInclude(r, domain.IncludeAll)
	require.NoError(t, err)
	assert.Equal(t, domain.IncludeClient|domain.IncludeStaff, include)

	search := QueryString(r, "search")
	require.NotNil(t, search)
	assert.Equal(t, "", *search)
	assert.Nil(t, QueryString(r, "status"))

	_, err = QueryInt(httptest.NewRequest(http.MethodGet, "/?page=x", nil), "page")
	assert.Error(t, err)
	_, err = QueryTime(httptest.NewRequest(http.MethodGet, "/?from=yesterday", nil), "from")
	assert.Error(t, err)
}

func TestQueryInclude_Default(t *testing.T) {
	include, err := QueryInclude(httptest.NewRequest(http.MethodGet, "/", nil), domain.IncludeAll)
	require.NoError(t, err)
	assert.Equal(t, domain.IncludeAll, include)
}
