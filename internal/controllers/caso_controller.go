package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sihur-medellin/sihur/internal/metrics"
	"github.com/sihur-medellin/sihur/internal/middleware"
	"github.com/sihur-medellin/sihur/internal/models"
	"github.com/sihur-medellin/sihur/internal/services"
)

// CasoController groups the routes of theft cases: registration, lookup,
// search, edition, deletion and linking of identified individuals.
type CasoController struct {
	base
	casos    services.CasoService
	busqueda services.BusquedaService
	metrics  *metrics.Metrics
	// loc interprets "fecha" values sent without a zone.
	loc *time.Location
}

// NewCasoController wires the case and search services into a controller.
func NewCasoController(casos services.CasoService, busqueda services.BusquedaService, m *metrics.Metrics, loc *time.Location, logger *zap.Logger) *CasoController {
	if loc == nil {
		loc = time.Local
	}
	return &CasoController{
		base:     base{logger: logger},
		casos:    casos,
		busqueda: busqueda,
		metrics:  m,
		loc:      loc,
	}
}

// Register mounts the case routes on g, which must already require a token.
func (ctr *CasoController) Register(g *echo.Group) {
	// Static segments are registered before /casos/:id so "today" and
	// "search" are never parsed as ids.
	g.GET("/casos/today", ctr.ListToday)
	g.GET("/casos/search", ctr.Search)
	g.POST("/casos", ctr.Create, canWrite)
	g.GET("/casos/:id", ctr.Get)
	g.PUT("/casos/:id", ctr.Update, canWrite)
	g.DELETE("/casos/:id", ctr.Delete, canDelete)
	g.POST("/casos/:id/personas_individualizadas", ctr.AssociateIndividual, canWrite)
}

// casoResumen is the body answered by POST /casos.
type casoResumen struct {
	ID         uint      `json:"id"`
	CodigoCaso string    `json:"codigo_caso"`
	Fecha      time.Time `json:"fecha"`
	Comuna     string    `json:"comuna"`
	Barrio     string    `json:"barrio"`
	Direccion  string    `json:"direccion"`
}

// casoDetalle always renders the child collections, empty or not.
type casoDetalle struct {
	*models.Caso
	Victimas                 []models.Victima                `json:"victimas"`
	VehiculosImplicados      []models.VehiculoImplicado      `json:"vehiculos_implicados"`
	CamarasSeguridad         []models.CamaraSeguridad        `json:"camaras_seguridad"`
	PersonasIndividualizadas []models.PersonaIndividualizada `json:"personas_individualizadas"`
}

func newCasoDetalle(c *models.Caso) casoDetalle {
	d := casoDetalle{
		Caso:                     c,
		Victimas:                 c.Victimas,
		VehiculosImplicados:      c.VehiculosImplicados,
		CamarasSeguridad:         c.CamarasSeguridad,
		PersonasIndividualizadas: c.PersonasIndividualizadas,
	}
	if d.Victimas == nil {
		d.Victimas = []models.Victima{}
	}
	if d.VehiculosImplicados == nil {
		d.VehiculosImplicados = []models.VehiculoImplicado{}
	}
	if d.CamarasSeguridad == nil {
		d.CamarasSeguridad = []models.CamaraSeguridad{}
	}
	if d.PersonasIndividualizadas == nil {
		d.PersonasIndividualizadas = []models.PersonaIndividualizada{}
	}
	return d
}

// ListToday handles GET /casos/today.
func (ctr *CasoController) ListToday(c echo.Context) error {
	casos, err := ctr.casos.ListToday(c.Request().Context())
	if err != nil {
		return ctr.fail(c, err, "", "Server error")
	}
	return c.JSON(http.StatusOK, casos)
}

// Search handles GET /casos/search?placa_hurtado=&placa_implicado=&...
func (ctr *CasoController) Search(c echo.Context) error {
	var filtros models.FiltrosBusqueda
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filtros); err != nil {
		return ctr.fail(c, fmt.Errorf("%w: %s", services.ErrValidation, bindErrorDetail(err)), "", "")
	}

	res, err := ctr.busqueda.SearchCases(c.Request().Context(), filtros)
	if err != nil {
		return ctr.fail(c, err, "", "Error al buscar casos")
	}
	return c.JSON(http.StatusOK, res)
}

// Create es el handler de POST /casos.
// - Decodifica el cuerpo, lo valida y convierte "fecha" a UTC.
// - Registra el caso con sus víctimas, vehículos y cámaras en una sola
//   transacción.
// - Responde 400 si el cuerpo es inválido, 500 si falla la base y 201 con
//   el resumen del caso (id y codigo_caso) en caso de éxito.
func (ctr *CasoController) Create(c echo.Context) error {
	// 1. Decodifica y valida el cuerpo.
	caso, err := ctr.bindCaso(c)
	if err != nil {
		return ctr.fail(c, err, "", "")
	}

	// 2. Registra el caso a nombre del usuario del token.
	created, err := ctr.casos.CreateCase(c.Request().Context(), caso, middleware.UserID(c))
	ctr.metrics.RecordCaso("create", err)
	if err != nil {
		// 3. Falla de almacenamiento; nada quedó guardado.
		return ctr.fail(c, err, "", "Error al registrar el caso")
	}

	// 4. Éxito.

	ctr.logger.Info("case created",
		zap.Uint("id", created.ID),
		zap.String("codigo_caso", created.CodigoCaso),
		zap.Uint("user_id", middleware.UserID(c)))

	return c.JSON(http.StatusCreated, casoResumen{
		ID:         created.ID,
		CodigoCaso: created.CodigoCaso,
		Fecha:      created.Fecha,
		Comuna:     created.Comuna,
		Barrio:     created.Barrio,
		Direccion:  created.Direccion,
	})
}

// Get handles GET /casos/:id and answers the full aggregate.
func (ctr *CasoController) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return ctr.fail(c, err, "", "")
	}

	caso, err := ctr.casos.GetCase(c.Request().Context(), id)
	if err != nil {
		return ctr.fail(c, err, "Caso no encontrado", "Error al obtener los detalles del caso")
	}
	return c.JSON(http.StatusOK, newCasoDetalle(caso))
}

// Update handles PUT /casos/:id. Every child collection is replaced by the
// one in the body.
func (ctr *CasoController) Update(c echo.Context) error {
	// 1. Lee el id de la ruta y el cuerpo.
	id, err := paramID(c)
	if err != nil {
		return ctr.fail(c, err, "", "")
	}
	caso, err := ctr.bindCaso(c)
	if err != nil {
		return ctr.fail(c, err, "", "")
	}

	// 2. Reemplaza el caso; los vínculos con personas se conservan.
	updated, err := ctr.casos.UpdateCase(c.Request().Context(), id, caso, middleware.UserID(c))
	ctr.metrics.RecordCaso("update", err)
	if err != nil {
		return ctr.fail(c, err, "Caso no encontrado", "Error al actualizar el caso")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Caso actualizado exitosamente",
		"caso":    newCasoDetalle(updated),
	})
}

// Delete handles DELETE /casos/:id.
func (ctr *CasoController) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return ctr.fail(c, err, "", "")
	}

	err = ctr.casos.DeleteCase(c.Request().Context(), id)
	ctr.metrics.RecordCaso("delete", err)
	if err != nil {
		return ctr.fail(c, err, "Caso no encontrado", "Error al eliminar el caso")
	}

	ctr.logger.Info("case deleted", zap.Uint("id", id), zap.Uint("user_id", middleware.UserID(c)))
	return c.JSON(http.StatusOK, messageResponse{Message: "Caso eliminado exitosamente"})
}

// AssociateIndividual handles POST /casos/:id/personas_individualizadas.
func (ctr *CasoController) AssociateIndividual(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return ctr.fail(c, err, "", "")
	}
	var req models.AsociacionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return ctr.fail(c, err, "", "")
	}

	err = ctr.casos.AssociateIndividualWithCase(c.Request().Context(), id, req.PersonaIndividualizadaID, middleware.UserID(c))
	ctr.metrics.RecordCaso("associate", err)
	if err != nil {
		return ctr.fail(c, err, "Caso o persona individualizada no encontrado",
			"Error al asociar persona individualizada con caso")
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message":                    "Persona individualizada asociada exitosamente",
		"id_caso":                    id,
		"id_persona_individualizada": req.PersonaIndividualizadaID,
	})
}

// bindCaso decodes and validates a CasoRequest and converts it to a Caso.
func (ctr *CasoController) bindCaso(c echo.Context) (*models.Caso, error) {
	var req models.CasoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	caso, err := req.ToCaso(ctr.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", services.ErrValidation, err.Error())
	}
	return caso, nil
}
