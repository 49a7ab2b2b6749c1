package login

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyberos/mission-control/pkg/middleware"
)

func postLogin(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logger)
	Register(e.Group("/api/login"), "hunter2")

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLogin_CorrectPasswordSetsCookie(t *testing.T) {
	rec := postLogin(t, `{"password": "hunter2"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	resp := rec.Result()
	defer resp.Body.Close()
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.AuthCookieName, cookies[0].Name)
	assert.Equal(t, middleware.AuthCookieValue, cookies[0].Value)
}

func TestLogin_WrongPasswordRejected(t *testing.T) {
	rec := postLogin(t, `{"password": "guess"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	resp := rec.Result()
	defer resp.Body.Close()
	assert.Empty(t, resp.Cookies())
}

func TestLogin_MissingPasswordRejected(t *testing.T) {
	rec := postLogin(t, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
