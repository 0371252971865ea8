package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_WritesKind(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(rec, req, http.StatusForbidden, KindSubscriptionRequired, "an active subscription is required")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, http.StatusForbidden, body.Code)
	assert.Equal(t, KindSubscriptionRequired, body.Error)
	assert.Equal(t, "an active subscription is required", body.Message)
}

func TestJSON_OmitsErrorKind(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	JSON(rec, req, http.StatusCreated, "created", map[string]int{"id": 3})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"code":201,"message":"created","data":{"id":3}}`, rec.Body.String())
}

func TestInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	Internal(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":500,"error":"internal_error","message":"internal server error"}`, rec.Body.String())
}
