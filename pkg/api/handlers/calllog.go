package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/callforge/callforge/pkg/api/errors"
	"github.com/callforge/callforge/pkg/interactions"
	"github.com/callforge/callforge/pkg/leads"
	"github.com/callforge/callforge/pkg/metrics"
	"github.com/callforge/callforge/pkg/models"
	"github.com/callforge/callforge/pkg/telephony"
)

// CallLogHandler handles call logging and call history endpoints
type CallLogHandler struct {
	interactionService *interactions.Service
	leadService        *leads.Service
	gateway            telephony.Gateway
	metrics            *metrics.Metrics
	validator          *validator.Validate
}

// NewCallLogHandler creates a new call log handler
func NewCallLogHandler(interactionService *interactions.Service, leadService *leads.Service, gateway telephony.Gateway, m *metrics.Metrics) *CallLogHandler {
	if gateway == nil {
		gateway = telephony.NewNoopGateway()
	}
	return &CallLogHandler{
		interactionService: interactionService,
		leadService:        leadService,
		gateway:            gateway,
		metrics:            m,
		validator:          validator.New(),
	}
}

// LogCall records a completed call attempt against a lead
func (h *CallLogHandler) LogCall(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	var req models.LogCallRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	entry, err := h.interactionService.LogCall(c.Request().Context(), userID, req)
	if errors.Is(err, interactions.ErrLeadNotFound) {
		return apierrors.NotFoundError(c, "lead")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordCallLogged(req.CallStatus)
	}

	return c.JSON(http.StatusCreated, entry)
}

// InitiateCall starts a click-to-call attempt through the telephony
// gateway
func (h *CallLogHandler) InitiateCall(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	lead, err := h.leadService.GetByID(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, leads.ErrLeadNotFound) {
		return apierrors.NotFoundError(c, "lead")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	if lead.Phone == "" {
		return apierrors.BadRequestError(c, "Lead has no phone number")
	}

	result, err := h.gateway.InitiateCall(c.Request().Context(), "", lead.Phone)
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetCallLogs returns the operator's call history
func (h *CallLogHandler) GetCallLogs(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	logs, total, err := h.interactionService.GetCallLogs(c.Request().Context(), userID, page, limit)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  logs,
		"total": total,
	})
}

// GetLeadCallLogs returns the call history for one lead
func (h *CallLogHandler) GetLeadCallLogs(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	logs, err := h.interactionService.GetLeadCallLogs(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, interactions.ErrLeadNotFound) {
		return apierrors.NotFoundError(c, "lead")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// GetCallStats returns aggregate call statistics for the operator
func (h *CallLogHandler) GetCallStats(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	stats, err := h.interactionService.GetCallStats(c.Request().Context(), userID)
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
