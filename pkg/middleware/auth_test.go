package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestServer(password string) *echo.Echo {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	e := echo.New()
	e.Use(Authentication(logger, password))
	ok := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}
	e.GET("/api/tasks", ok)
	e.POST("/api/login", ok)
	e.GET("/api/v1/health", ok)
	e.GET("/api/v1/health/ready", ok)
	return e
}

func doRequest(e *echo.Echo, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthentication_RejectsWithoutCookie(t *testing.T) {
	e := newAuthTestServer("hunter2")

	rec := doRequest(e, "/api/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthentication_AllowsSessionCookie(t *testing.T) {
	e := newAuthTestServer("hunter2")

	rec := doRequest(e, "/api/tasks", &http.Cookie{Name: AuthCookieName, Value: AuthCookieValue})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthentication_RejectsWrongCookieValue(t *testing.T) {
	e := newAuthTestServer("hunter2")

	rec := doRequest(e, "/api/tasks", &http.Cookie{Name: AuthCookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthentication_PasswordParamGrantsAndSetsCookie(t *testing.T) {
	e := newAuthTestServer("hunter2")

	rec := doRequest(e, "/api/tasks?pw=hunter2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := rec.Result()
	defer resp.Body.Close()
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, AuthCookieName, cookies[0].Name)
	assert.Equal(t, AuthCookieValue, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthentication_WrongPasswordParamRejected(t *testing.T) {
	e := newAuthTestServer("hunter2")

	rec := doRequest(e, "/api/tasks?pw=wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthentication_ExemptPaths(t *testing.T) {
	e := newAuthTestServer("hunter2")

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusOK, doRequest(e, "/api/v1/health", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(e, "/api/v1/health/ready", nil).Code)
}
