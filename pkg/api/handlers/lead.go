package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/callforge/callforge/pkg/api/errors"
	"github.com/callforge/callforge/pkg/leads"
	"github.com/callforge/callforge/pkg/models"
)

// LeadHandler handles lead CRUD endpoints
type LeadHandler struct {
	leadService *leads.Service
	validator   *validator.Validate
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *leads.Service) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		validator:   validator.New(),
	}
}

// List returns the operator's leads with status filter, search and
// pagination
func (h *LeadHandler) List(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	var req models.LeadListRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	response, err := h.leadService.List(c.Request().Context(), userID, req)
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

// GetByID returns one lead
func (h *LeadHandler) GetByID(c echo.Context) error {
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
	return c.JSON(http.StatusOK, lead)
}

// Create adds a lead by manual form entry
func (h *LeadHandler) Create(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	var req models.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	lead, err := h.leadService.Create(c.Request().Context(), userID, req)
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusCreated, lead)
}

// Update patches lead fields from the edit form
func (h *LeadHandler) Update(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	var req models.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	lead, err := h.leadService.Update(c.Request().Context(), userID, c.Param("id"), req)
	if errors.Is(err, leads.ErrLeadNotFound) {
		return apierrors.NotFoundError(c, "lead")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Delete removes one lead
func (h *LeadHandler) Delete(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	err := h.leadService.Delete(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, leads.ErrLeadNotFound) {
		return apierrors.NotFoundError(c, "lead")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Lead deleted",
	})
}
