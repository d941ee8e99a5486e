package errors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestValidationError_HidesDetails(t *testing.T) {
	c, rec := newTestContext(t)

	require.NoError(t, ValidationError(c, errors.New("column user_id violates constraint")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
	assert.NotContains(t, rec.Body.String(), "user_id")
}

func TestDatabaseError_HidesDetails(t *testing.T) {
	c, rec := newTestContext(t)

	require.NoError(t, DatabaseError(c, errors.New("pq: connection refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "database_error")
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		call func(c echo.Context) error
		code int
		body string
	}{
		{"unauthorized", func(c echo.Context) error { return UnauthorizedError(c, "no token") }, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", func(c echo.Context) error { return ForbiddenError(c, "low admin") }, http.StatusForbidden, "forbidden"},
		{"not found", func(c echo.Context) error { return NotFoundError(c, "lead") }, http.StatusNotFound, "not_found"},
		{"conflict", func(c echo.Context) error { return ConflictError(c, "User already exists") }, http.StatusConflict, "User already exists"},
		{"bad request", func(c echo.Context) error { return BadRequestError(c, "file too large") }, http.StatusBadRequest, "file too large"},
		{"internal", func(c echo.Context) error { return InternalError(c, errors.New("boom")) }, http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t)
			require.NoError(t, tc.call(c))
			assert.Equal(t, tc.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}
