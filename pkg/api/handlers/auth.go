package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	apierrors "github.com/callforge/callforge/pkg/api/errors"
	"github.com/callforge/callforge/pkg/auth"
	"github.com/callforge/callforge/pkg/metrics"
	"github.com/callforge/callforge/pkg/models"
	"github.com/callforge/callforge/pkg/session"
)

// AuthHandler handles registration, login and session endpoints
type AuthHandler struct {
	db             *gorm.DB
	jwtSecret      string
	jwtExpiryHours int
	blacklist      *auth.TokenBlacklist
	sessions       *session.Manager
	metrics        *metrics.Metrics
	validator      *validator.Validate
}

// NewAuthHandler creates a new auth handler. The session manager
// tracks the process-wide login state machine; nil disables it.
func NewAuthHandler(db *gorm.DB, jwtSecret string, jwtExpiryHours int, blacklist *auth.TokenBlacklist, sessions *session.Manager, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		db:             db,
		jwtSecret:      jwtSecret,
		jwtExpiryHours: jwtExpiryHours,
		blacklist:      blacklist,
		sessions:       sessions,
		metrics:        m,
		validator:      validator.New(),
	}
}

// Register creates a new operator account and returns a token
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx := c.Request().Context()

	var existing int64
	if err := h.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", req.Email).
		Count(&existing).Error; err != nil {
		return apierrors.DatabaseError(c, err)
	}
	if existing > 0 {
		return apierrors.ConflictError(c, "User already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleLowAdmin
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         role,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		return apierrors.DatabaseError(c, err)
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role, h.jwtSecret, h.jwtExpiryHours)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordUserRegistered()
	}

	return c.JSON(http.StatusCreated, models.AuthResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

// Login authenticates an operator and returns a token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx := c.Request().Context()

	if h.sessions != nil {
		// A new attempt supersedes whatever state the machine is in
		h.sessions.Logout()
		_ = h.sessions.BeginLogin()
	}

	var user models.User
	err := h.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !auth.CheckPassword(user.PasswordHash, req.Password)) {
		if h.sessions != nil {
			_ = h.sessions.FailLogin()
		}
		if h.metrics != nil {
			h.metrics.RecordLoginAttempt(false)
		}
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
		})
	}
	if err != nil {
		if h.sessions != nil {
			_ = h.sessions.FailLogin()
		}
		return apierrors.DatabaseError(c, err)
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role, h.jwtSecret, h.jwtExpiryHours)
	if err != nil {
		if h.sessions != nil {
			_ = h.sessions.FailLogin()
		}
		return apierrors.InternalError(c, err)
	}

	if h.sessions != nil {
		_ = h.sessions.CompleteLogin(&user)
	}
	if h.metrics != nil {
		h.metrics.RecordLoginAttempt(true)
	}

	return c.JSON(http.StatusOK, models.AuthResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

// Logout revokes the current token via the blacklist
func (h *AuthHandler) Logout(c echo.Context) error {
	token, ok := c.Get("token").(string)
	if !ok || token == "" {
		return apierrors.UnauthorizedError(c, "no token")
	}

	if h.blacklist != nil {
		expiry := time.Duration(h.jwtExpiryHours) * time.Hour
		if err := h.blacklist.Add(c.Request().Context(), token, expiry); err != nil {
			return apierrors.InternalError(c, err)
		}
	}

	if h.sessions != nil {
		h.sessions.Logout()
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Logged out",
	})
}

// Me returns the authenticated operator's profile
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	var user models.User
	err := h.db.WithContext(c.Request().Context()).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierrors.NotFoundError(c, "user")
	}
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateProfile patches the authenticated operator's account settings
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}

	ctx := c.Request().Context()
	if err := h.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates).Error; err != nil {
		return apierrors.DatabaseError(c, err)
	}

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func toUserResponse(u models.User) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
