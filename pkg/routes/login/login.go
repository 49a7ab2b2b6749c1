package login

import (
	"crypto/subtle"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/kyberos/mission-control/pkg/middleware"
	"github.com/kyberos/mission-control/pkg/tracing"
)

var validate = validator.New()

// LoginRequest is the login request body
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Success bool `json:"success"`
}

// Register registers the login route against the shared dashboard password
func Register(g *echo.Group, password string) {
	g.POST("", Login(password))
}

// Login returns the handler issuing the session cookie
func Login(password string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		_, span := tracing.StartSpan(ctx, "login_handler.Login")
		defer span.End()

		var req LoginRequest
		if err := c.Bind(&req); err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}

		if err := validate.Struct(req); err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(password)) != 1 {
			return httperror.NewHTTPError(http.StatusUnauthorized, "invalid password")
		}

		middleware.SetAuthCookie(c)
		return c.JSON(http.StatusOK, LoginResponse{Success: true})
	}
}
