package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/callforge/callforge/pkg/api/errors"
	"github.com/callforge/callforge/pkg/campaigns"
	"github.com/callforge/callforge/pkg/models"
)

// CampaignHandler handles campaign endpoints
type CampaignHandler struct {
	campaignService *campaigns.Service
	validator       *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignService *campaigns.Service) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		validator:       validator.New(),
	}
}

// List returns the operator's campaigns with lead counts
func (h *CampaignHandler) List(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	list, err := h.campaignService.List(c.Request().Context(), userID)
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetByID returns one campaign with lead counts
func (h *CampaignHandler) GetByID(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	campaign, err := h.campaignService.GetByID(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, campaigns.ErrCampaignNotFound) {
		return apierrors.NotFoundError(c, "campaign")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, campaign)
}

// Create adds a campaign
func (h *CampaignHandler) Create(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	var req models.CampaignRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	campaign, err := h.campaignService.Create(c.Request().Context(), userID, req)
	if errors.Is(err, campaigns.ErrInvalidDateRange) {
		return apierrors.BadRequestError(c, err.Error())
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusCreated, campaign)
}

// Update patches a campaign
func (h *CampaignHandler) Update(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	var req models.CampaignRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	campaign, err := h.campaignService.Update(c.Request().Context(), userID, c.Param("id"), req)
	switch {
	case errors.Is(err, campaigns.ErrCampaignNotFound):
		return apierrors.NotFoundError(c, "campaign")
	case errors.Is(err, campaigns.ErrInvalidDateRange):
		return apierrors.BadRequestError(c, err.Error())
	case err != nil:
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, campaign)
}

// Delete removes a campaign and detaches its leads
func (h *CampaignHandler) Delete(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	err := h.campaignService.Delete(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, campaigns.ErrCampaignNotFound) {
		return apierrors.NotFoundError(c, "campaign")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Campaign deleted",
	})
}
