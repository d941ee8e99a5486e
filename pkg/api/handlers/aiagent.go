package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/callforge/callforge/pkg/aiagents"
	apierrors "github.com/callforge/callforge/pkg/api/errors"
	"github.com/callforge/callforge/pkg/models"
)

// AIAgentHandler handles automated call agent configuration endpoints
type AIAgentHandler struct {
	agentService *aiagents.Service
	validator    *validator.Validate
}

// NewAIAgentHandler creates a new AI agent handler
func NewAIAgentHandler(agentService *aiagents.Service) *AIAgentHandler {
	return &AIAgentHandler{
		agentService: agentService,
		validator:    validator.New(),
	}
}

// List returns every configured agent
func (h *AIAgentHandler) List(c echo.Context) error {
	agents, err := h.agentService.List(c.Request().Context())
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, agents)
}

// GetByID returns one agent
func (h *AIAgentHandler) GetByID(c echo.Context) error {
	agent, err := h.agentService.GetByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, aiagents.ErrAgentNotFound) {
		return apierrors.NotFoundError(c, "agent")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, agent)
}

// Create adds an agent configuration. Admin only.
func (h *AIAgentHandler) Create(c echo.Context) error {
	var req models.AIAgentRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	agent, err := h.agentService.Create(c.Request().Context(), req)
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusCreated, agent)
}

// Update patches an agent configuration. Admin only.
func (h *AIAgentHandler) Update(c echo.Context) error {
	var req models.AIAgentRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	agent, err := h.agentService.Update(c.Request().Context(), c.Param("id"), req)
	if errors.Is(err, aiagents.ErrAgentNotFound) {
		return apierrors.NotFoundError(c, "agent")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, agent)
}

// Delete removes an agent configuration. Admin only.
func (h *AIAgentHandler) Delete(c echo.Context) error {
	err := h.agentService.Delete(c.Request().Context(), c.Param("id"))
	if errors.Is(err, aiagents.ErrAgentNotFound) {
		return apierrors.NotFoundError(c, "agent")
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Agent deleted",
	})
}

// ImproveScriptRequest asks the assistant to rewrite a call script
type ImproveScriptRequest struct {
	Script string `json:"script" validate:"required"`
	Goal   string `json:"goal"`
}

// ImproveScript rewrites a call script with the configured LLM
func (h *AIAgentHandler) ImproveScript(c echo.Context) error {
	var req ImproveScriptRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	improved, err := h.agentService.ImproveScript(c.Request().Context(), req.Script, req.Goal)
	if errors.Is(err, aiagents.ErrAssistantDisabled) {
		return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "assistant_disabled",
			Message: "Script assistant is not configured",
		})
	}
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"script": improved})
}
