package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/callforge/callforge/pkg/api/errors"
	"github.com/callforge/callforge/pkg/email"
	"github.com/callforge/callforge/pkg/interactions"
	"github.com/callforge/callforge/pkg/leads"
	"github.com/callforge/callforge/pkg/metrics"
	"github.com/callforge/callforge/pkg/models"
)

// EmailHandler handles email sending and template management
type EmailHandler struct {
	emailService       *email.Service
	templateService    *email.TemplateService
	interactionService *interactions.Service
	leadService        *leads.Service
	metrics            *metrics.Metrics
	validator          *validator.Validate
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(emailService *email.Service, templateService *email.TemplateService, interactionService *interactions.Service, leadService *leads.Service, m *metrics.Metrics) *EmailHandler {
	return &EmailHandler{
		emailService:       emailService,
		templateService:    templateService,
		interactionService: interactionService,
		leadService:        leadService,
		metrics:            m,
		validator:          validator.New(),
	}
}

// SendEmailResponse reports how many leads were emailed
type SendEmailResponse struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
}

// Send delivers an email to every selected lead and appends the event
// to each lead's history. Leads without an address are skipped.
func (h *EmailHandler) Send(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	var req models.LogEmailRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx := c.Request().Context()

	templateName := ""
	if req.TemplateID != "" {
		tmpl, err := h.templateService.GetByID(ctx, userID, req.TemplateID)
		if errors.Is(err, email.ErrTemplateNotFound) {
			return apierrors.NotFoundError(c, "template")
		}
		if err != nil {
			return apierrors.InternalError(c, err)
		}
		templateName = tmpl.Name
	}

	// Deliver per lead; a missing address skips the lead but the
	// batch continues
	sent, skipped := 0, 0
	for _, leadID := range req.LeadIDs {
		lead, err := h.leadService.GetByID(ctx, userID, leadID)
		if errors.Is(err, leads.ErrLeadNotFound) {
			skipped++
			continue
		}
		if err != nil {
			return apierrors.InternalError(c, err)
		}
		if err := h.emailService.SendToLead(lead, req.Subject, req.Content); err != nil {
			skipped++
			continue
		}
		if _, err := h.interactionService.LogEmail(ctx, userID, models.LogEmailRequest{
			LeadIDs: []string{leadID},
			Subject: req.Subject,
			Content: req.Content,
		}, templateName); err != nil {
			return apierrors.InternalError(c, err)
		}
		sent++
	}

	if h.metrics != nil {
		for i := 0; i < sent; i++ {
			h.metrics.RecordEmailLogged()
		}
	}

	return c.JSON(http.StatusOK, SendEmailResponse{Sent: sent, Skipped: skipped})
}

// ListTemplates returns the operator's email templates
func (h *EmailHandler) ListTemplates(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	templates, err := h.templateService.List(c.Request().Context(), userID)
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, templates)
}

// CreateTemplate adds an email template
func (h *EmailHandler) CreateTemplate(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	var req models.EmailTemplateRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	tmpl, err := h.templateService.Create(c.Request().Context(), userID, req)
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusCreated, tmpl)
}

// UpdateTemplate patches an email template
func (h *EmailHandler) UpdateTemplate(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	var req models.EmailTemplateRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	tmpl, err := h.templateService.Update(c.Request().Context(), userID, c.Param("id"), req)
	if errors.Is(err, email.ErrTemplateNotFound) {
		return apierrors.NotFoundError(c, "template")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, tmpl)
}

// DeleteTemplate removes an email template
func (h *EmailHandler) DeleteTemplate(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	err := h.templateService.Delete(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, email.ErrTemplateNotFound) {
		return apierrors.NotFoundError(c, "template")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Template deleted",
	})
}
