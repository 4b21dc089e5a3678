package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sihur-medellin/sihur/internal/services"
)

// EstadisticaController groups the dashboard aggregates: counts per time
// window and the top comunas, barrios and stolen-vehicle brands.
type EstadisticaController struct {
	base
	// svc computes every aggregate from the casos and
	// vehiculos_hurtados tables.
	svc services.EstadisticaService
}

// NewEstadisticaController receives an EstadisticaService and returns a
// configured controller.
func NewEstadisticaController(svc services.EstadisticaService, logger *zap.Logger) *EstadisticaController {
	return &EstadisticaController{base: base{logger: logger}, svc: svc}
}

// Register mounts the statistics routes on a group that already carries
// the route prefix (for example "/api").
func (ctr *EstadisticaController) Register(g *echo.Group) {
	// GET /statistics -> counts for day, month and year
	g.GET("/statistics", ctr.GetCounts)
	// GET /statistics/top -> top 3 comunas and barrios per window
	g.GET("/statistics/top", ctr.GetTop)
	// GET /statistics/top/vehiculos -> top 3 brands, all time
	g.GET("/statistics/top/vehiculos", ctr.GetTopVehiculos)
}

// GetCounts is the handler for GET /statistics.
// - Passes the request context to the service.
// - Answers 500 with the detail on failure.
// - Answers 200 with hurtos_dia, hurtos_mes_acumulado and
//   hurtos_ano_acumulado on success.
func (ctr *EstadisticaController) GetCounts(c echo.Context) error {
	// 1. Ask the service for the three counts.
	conteo, err := ctr.svc.ComputeCounts(c.Request().Context())
	if err != nil {
		// 2. Storage failure.
		return ctr.fail(c, err, "", "Server error")
	}

	// 3. Success.
	return c.JSON(http.StatusOK, conteo)
}

// GetTop is the handler for GET /statistics/top.
func (ctr *EstadisticaController) GetTop(c echo.Context) error {
	top, err := ctr.svc.TopRankings(c.Request().Context())
	if err != nil {
		return ctr.fail(c, err, "", "Server error")
	}
	return c.JSON(http.StatusOK, top)
}

// GetTopVehiculos is the handler for GET /statistics/top/vehiculos.
func (ctr *EstadisticaController) GetTopVehiculos(c echo.Context) error {
	marcas, err := ctr.svc.TopVehicleBrands(c.Request().Context())
	if err != nil {
		return ctr.fail(c, err, "", "Server error")
	}
	return c.JSON(http.StatusOK, marcas)
}
