package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sihur-medellin/sihur/internal/middleware"
	"github.com/sihur-medellin/sihur/internal/models"
	"github.com/sihur-medellin/sihur/internal/services"
)

// PersonaController handles HTTP requests related to identified individuals
type PersonaController struct {
	base
	svc services.PersonaService
}

// NewPersonaController creates a new instance of PersonaController
func NewPersonaController(svc services.PersonaService, logger *zap.Logger) *PersonaController {
	return &PersonaController{base: base{logger: logger}, svc: svc}
}

// Register registers the routes for the persona controller
func (ctrl *PersonaController) Register(g *echo.Group) {
	g.POST("/personas_individualizadas", ctrl.Create, canWrite)
	g.GET("/personas_individualizadas/search", ctrl.Search)
	g.GET("/personas_individualizadas/:id", ctrl.Get)
}

// Create handles the registration of a new individual
func (ctrl *PersonaController) Create(c echo.Context) error {
	var p models.PersonaIndividualizada
	if err := bindAndValidate(c, &p); err != nil {
		return ctrl.fail(c, err, "", "")
	}

	created, err := ctrl.svc.CreateIndividual(c.Request().Context(), &p, middleware.UserID(c))
	if err != nil {
		return ctrl.fail(c, err, "", "Error al registrar persona individualizada")
	}
	return c.JSON(http.StatusCreated, created)
}

// Search handles GET /personas_individualizadas/search?query=
func (ctrl *PersonaController) Search(c echo.Context) error {
	personas, err := ctrl.svc.SearchIndividuals(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return ctrl.fail(c, err, "", "Error al buscar personas individualizadas")
	}
	return c.JSON(http.StatusOK, personas)
}

// Get handles GET /personas_individualizadas/:id
func (ctrl *PersonaController) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return ctrl.fail(c, err, "", "")
	}

	p, err := ctrl.svc.GetIndividual(c.Request().Context(), id)
	if err != nil {
		return ctrl.fail(c, err, "Persona individualizada no encontrada", "Error al obtener la persona individualizada")
	}
	return c.JSON(http.StatusOK, p)
}
