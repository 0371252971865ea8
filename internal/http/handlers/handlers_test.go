package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garoui/electricite-be/internal/models/dto"
)

func TestPagination(t *testing.T) {
	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{query: "", wantPage: 1, wantLimit: defaultPageSize},
		{query: "?page=3&limit=5", wantPage: 3, wantLimit: 5},
		{query: "?page=-1&limit=abc", wantPage: 1, wantLimit: defaultPageSize},
		{query: "?limit=5000", wantPage: 1, wantLimit: maxPageSize},
		{query: "?page=92233720368547759&limit=100", wantPage: maxPage, wantLimit: maxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, limit := pagination(httptest.NewRequest(http.MethodGet, "/users"+tt.query, nil))
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
			assert.GreaterOrEqual(t, (page-1)*limit, 0)
		})
	}
}

func TestValidationMessage(t *testing.T) {
	v := validator.New()
	err := v.Struct(&dto.RegisterRequest{Email: "nope", Password: "123", LastName: "L", Role: "admin"})
	require.Error(t, err)

	msg := validationMessage(err)
	assert.Contains(t, msg, "email must be a valid email")
	assert.Contains(t, msg, "password must be at least 6 characters")
	assert.Contains(t, msg, "firstName is required")
	assert.Contains(t, msg, "role must be one of [customer partner candidate]")
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-04-01")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))

	d, err = parseDate("2026-04-01T08:30:00+01:00")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2026, 4, 1, 7, 30, 0, 0, time.UTC)))

	_, err = parseDate("01/04/2026")
	assert.Error(t, err)
}
