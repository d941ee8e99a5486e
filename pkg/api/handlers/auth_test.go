package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callforge/callforge/pkg/models"
	"github.com/callforge/callforge/pkg/session"
)

func registerBody(email string) models.RegisterRequest {
	return models.RegisterRequest{
		Email:    email,
		Password: "s3cret-pass",
		FullName: "Test Operator",
	}
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db, testSecret, 24, nil, nil, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/auth/register", registerBody("op@example.com"), "")
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.AuthResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "op@example.com", resp.User.Email)
	// Role defaults to Low Admin
	assert.Equal(t, models.RoleLowAdmin, resp.User.Role)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/auth/register", registerBody("op@example.com"), "")
		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		body := registerBody("weak@example.com")
		body.Password = "short"
		c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/auth/register", body, "")
		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db, testSecret, 24, nil, nil, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/auth/register", registerBody("login@example.com"), "")
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("valid credentials", func(t *testing.T) {
		c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
			Email:    "login@example.com",
			Password: "s3cret-pass",
		}, "")
		require.NoError(t, h.Login(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.AuthResponse
		decodeBody(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
			Email:    "login@example.com",
			Password: "wrong-pass",
		}, "")
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_credentials")
	})

	t.Run("unknown user gets the same envelope", func(t *testing.T) {
		c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
			Email:    "ghost@example.com",
			Password: "whatever1",
		}, "")
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_credentials")
	})
}

func TestLoginDrivesSessionState(t *testing.T) {
	db := setupTestDB(t)
	sessions := session.NewManager()
	h := NewAuthHandler(db, testSecret, 24, nil, sessions, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/auth/register", registerBody("state@example.com"), "")
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, session.StateAnonymous, sessions.State())

	t.Run("failed login returns to anonymous", func(t *testing.T) {
		c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
			Email:    "state@example.com",
			Password: "wrong-pass",
		}, "")
		require.NoError(t, h.Login(c))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, session.StateAnonymous, sessions.State())
		assert.Nil(t, sessions.CurrentUser())
	})

	t.Run("successful login authenticates the session", func(t *testing.T) {
		c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
			Email:    "state@example.com",
			Password: "s3cret-pass",
		}, "")
		require.NoError(t, h.Login(c))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, session.StateAuthenticated, sessions.State())
		require.NotNil(t, sessions.CurrentUser())
		assert.Equal(t, "state@example.com", sessions.CurrentUser().Email)
		assert.Equal(t, models.RoleLowAdmin, sessions.CurrentRole())
	})

	t.Run("logout resets the session", func(t *testing.T) {
		c, rec := newAuthedContext(t, http.MethodPost, "/api/v1/auth/logout", nil, models.RoleLowAdmin)
		c.Set("token", "some-jwt")
		require.NoError(t, h.Logout(c))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, session.StateAnonymous, sessions.State())
		assert.Nil(t, sessions.CurrentUser())
	})
}

func TestMeAndUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db, testSecret, 24, nil, nil, nil)

	user := models.User{
		ID:           testUserID,
		Email:        "me@example.com",
		PasswordHash: "x",
		FullName:     "Original Name",
		Role:         models.RoleAdmin,
	}
	require.NoError(t, db.Create(&user).Error)

	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/auth/me", nil, models.RoleAdmin)
	require.NoError(t, h.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var me models.UserResponse
	decodeBody(t, rec, &me)
	assert.Equal(t, "me@example.com", me.Email)
	assert.Equal(t, models.RoleAdmin, me.Role)

	newName := "Renamed Operator"
	c, rec = newAuthedContext(t, http.MethodPut, "/api/v1/auth/me", models.UpdateProfileRequest{
		FullName: &newName,
	}, models.RoleAdmin)
	require.NoError(t, h.UpdateProfile(c))
	require.Equal(t, http.StatusOK, rec.Code)

	decodeBody(t, rec, &me)
	assert.Equal(t, "Renamed Operator", me.FullName)
	assert.Equal(t, "me@example.com", me.Email)
}
