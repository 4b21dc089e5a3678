package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sihur-medellin/sihur/internal/metrics"
	"github.com/sihur-medellin/sihur/internal/middleware"
	"github.com/sihur-medellin/sihur/internal/models"
	"github.com/sihur-medellin/sihur/internal/services"
)

// AuthController groups login, password management and the token probe.
type AuthController struct {
	base
	svc     services.AuthService
	metrics *metrics.Metrics
}

func NewAuthController(svc services.AuthService, m *metrics.Metrics, logger *zap.Logger) *AuthController {
	return &AuthController{base: base{logger: logger}, svc: svc, metrics: m}
}

// RegisterPublic mounts the routes reachable without a token. limiter
// guards every one of them.
func (ctr *AuthController) RegisterPublic(e *echo.Echo, limiter echo.MiddlewareFunc) {
	e.POST("/login", ctr.Login, limiter)
	e.POST("/api/auth/forgot-password", ctr.ForgotPassword, limiter)
	e.POST("/api/auth/reset-password", ctr.ResetPassword, limiter)
}

// Register mounts the routes that need an authenticated user.
func (ctr *AuthController) Register(g *echo.Group) {
	g.POST("/user/change-password", ctr.ChangePassword)
}

// RegisterProbe mounts GET /protected, which echoes the token identity.
func (ctr *AuthController) RegisterProbe(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/protected", ctr.Protected, auth)
}

// Login handles POST /login and answers {"token": "..."}.
func (ctr *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Usuario y contraseña son obligatorios"})
	}

	token, err := ctr.svc.Login(c.Request().Context(), req, c.RealIP())
	ctr.metrics.RecordLogin(err)
	if err != nil {
		return ctr.fail(c, err, "", "Server error")
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// Protected handles GET /protected.
func (ctr *AuthController) Protected(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Welcome, %s! You are a %s. This is protected data.", claims.Username, claims.Role),
	})
}

// ChangePassword handles POST /user/change-password for the token owner.
func (ctr *AuthController) ChangePassword(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return ctr.fail(c, err, "", "")
	}

	err := ctr.svc.ChangePassword(c.Request().Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return ctr.fail(c, err, "Usuario no encontrado.", "Error del servidor al actualizar contraseña.")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Contraseña actualizada exitosamente."})
}

// ForgotPassword handles POST /api/auth/forgot-password. The answer is the
// same whether or not the identifier exists.
func (ctr *AuthController) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return ctr.fail(c, err, "", "")
	}

	msg, err := ctr.svc.RequestPasswordReset(c.Request().Context(), req.Email)
	if err != nil {
		return ctr.fail(c, err, "", "Error al guardar el token de restablecimiento.")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

// ResetPassword handles POST /api/auth/reset-password.
func (ctr *AuthController) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return ctr.fail(c, err, "", "")
	}

	if err := ctr.svc.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return ctr.fail(c, err, "", "Error al restablecer la contraseña.")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Contraseña restablecida exitosamente."})
}
