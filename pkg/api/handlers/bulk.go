package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/callforge/callforge/pkg/api/errors"
	"github.com/callforge/callforge/pkg/bulkactions"
	"github.com/callforge/callforge/pkg/metrics"
	"github.com/callforge/callforge/pkg/models"
)

// BulkHandler handles the selection toolbar actions
type BulkHandler struct {
	bulkService *bulkactions.Service
	metrics     *metrics.Metrics
	validator   *validator.Validate
}

// NewBulkHandler creates a new bulk action handler
func NewBulkHandler(bulkService *bulkactions.Service, m *metrics.Metrics) *BulkHandler {
	return &BulkHandler{
		bulkService: bulkService,
		metrics:     m,
		validator:   validator.New(),
	}
}

// Apply runs one bulk action over the selected leads
func (h *BulkHandler) Apply(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	var req models.BulkActionRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	resp, err := h.bulkService.Apply(c.Request().Context(), userID, req)
	switch {
	case errors.Is(err, bulkactions.ErrUnknownAction),
		errors.Is(err, bulkactions.ErrNoLeads),
		errors.Is(err, bulkactions.ErrMissingParameter):
		return apierrors.BadRequestError(c, err.Error())
	case err != nil:
		return apierrors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordBulkAction(req.Action)
	}

	return c.JSON(http.StatusOK, resp)
}
