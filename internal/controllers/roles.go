package controllers

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sihur-medellin/sihur/internal/middleware"
	"github.com/sihur-medellin/sihur/internal/models"
	"github.com/sihur-medellin/sihur/internal/services"
)

// Role gates shared by the controllers. Reads only need a valid token.
var (
	canWrite  = middleware.RequireRoles(models.RolAdmin, models.RolVisualizer)
	canDelete = middleware.RequireRoles(models.RolAdmin)
)

// paramID parses the :id path parameter.
func paramID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: id inválido %q", services.ErrValidation, c.Param("id"))
	}
	return uint(id), nil
}
