package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sihur-medellin/sihur/internal/services"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// messageResponse is the JSON body of operations that only confirm.
type messageResponse struct {
	Message string `json:"message"`
}

// statusFor maps service errors to HTTP statuses. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthorized),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidCurrentPassword):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateNationalID),
		errors.Is(err, services.ErrDuplicateAssociation),
		errors.Is(err, services.ErrDuplicateCatalogEntry):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidOrExpiredToken),
		errors.Is(err, services.ErrMissingQuery),
		errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrCaptchaFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the operator-facing text for the known service errors.
func messageFor(err error) (string, bool) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return "No autorizado", true
	case errors.Is(err, services.ErrForbidden):
		return "No tiene permisos para realizar esta acción", true
	case errors.Is(err, services.ErrInvalidCredentials):
		return "Credenciales inválidas", true
	case errors.Is(err, services.ErrInvalidCurrentPassword):
		return "Contraseña actual incorrecta.", true
	case errors.Is(err, services.ErrInvalidOrExpiredToken):
		return "Token inválido o expirado.", true
	case errors.Is(err, services.ErrCaptchaFailed):
		return "Por favor, complete el Captcha.", true
	case errors.Is(err, services.ErrDuplicateNationalID):
		return "Ya existe una persona individualizada con esa cédula", true
	case errors.Is(err, services.ErrDuplicateAssociation):
		return "La persona ya está asociada a este caso", true
	case errors.Is(err, services.ErrDuplicateCatalogEntry):
		return "El registro ya existe", true
	case errors.Is(err, services.ErrMissingQuery):
		return "El parámetro query es obligatorio", true
	}
	return "", false
}

// base carries what every controller needs to answer failures.
type base struct {
	logger *zap.Logger
}

// fail writes err as JSON. notFound is the message used for ErrNotFound and
// fallback the one used for unexpected failures, whose detail goes under
// "error".
func (b base) fail(c echo.Context, err error, notFound, fallback string) error {
	status := statusFor(err)

	if msg, ok := messageFor(err); ok {
		return c.JSON(status, errorResponse{Message: msg})
	}
	switch status {
	case http.StatusNotFound:
		return c.JSON(status, errorResponse{Message: notFound})
	case http.StatusBadRequest:
		return c.JSON(status, errorResponse{Message: "Datos inválidos", Error: validationDetail(err)})
	}

	b.logger.Error(fallback,
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, errorResponse{Message: fallback, Error: err.Error()})
}

// bindAndValidate decodes the body into dst and runs the struct validator.
// Failures wrap services.ErrValidation.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return fmt.Errorf("%w: %s", services.ErrValidation, bindErrorDetail(err))
	}
	if err := c.Validate(dst); err != nil {
		return fmt.Errorf("%w: %s", services.ErrValidation, err.Error())
	}
	return nil
}

// validationDetail strips the sentinel prefix from a validation error.
func validationDetail(err error) string {
	return strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": ")
}

func bindErrorDetail(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			return he.Internal.Error()
		}
		if msg, ok := he.Message.(string); ok {
			return msg
		}
	}
	return err.Error()
}
