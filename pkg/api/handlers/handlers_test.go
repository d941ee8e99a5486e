package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/callforge/callforge/pkg/database"
	"github.com/callforge/callforge/pkg/models"
)

const (
	testUserID  = "7e2f5a30-1b44-4f6e-9d70-1234567890ab"
	testSecret  = "test-secret-key-for-tests-only"
	otherUserID = "00000000-1111-4222-8333-444455556666"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// newAuthedContext builds an echo context carrying the claims the JWT
// middleware would have set
func newAuthedContext(t *testing.T, method, path string, body interface{}, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", testUserID)
	c.Set("user_email", "operator@example.com")
	c.Set("user_role", role)
	return c, rec
}

// newMultipartContext builds an authed context with one uploaded file
func newMultipartContext(t *testing.T, path, filename, content string) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", testUserID)
	c.Set("user_role", models.RoleLowAdmin)
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
