package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sihur-medellin/sihur/internal/models"
	"github.com/sihur-medellin/sihur/internal/services"
)

// CatalogoController agrupa las rutas de las listas de referencia que usa
// el formulario de casos: comunas, barrios y nacionalidades.
type CatalogoController struct {
	base
	// svc es la interfaz de servicio que lee y amplía los catálogos.
	svc services.CatalogoService
}

// NewCatalogoController es la función fábrica que recibe una
// implementación de CatalogoService y retorna un puntero a un
// CatalogoController configurado.
func NewCatalogoController(svc services.CatalogoService, logger *zap.Logger) *CatalogoController {
	return &CatalogoController{base: base{logger: logger}, svc: svc}
}

// Register registra las rutas HTTP de los catálogos en un echo.Group que
// ya carga el prefijo de ruta (por ejemplo "/api/v1"). Las lecturas están
// abiertas a todo rol autenticado; las altas exigen un rol de escritura.
func (ctr *CatalogoController) Register(g *echo.Group) {
	// GET /comunas -> llama a GetComunas
	g.GET("/comunas", ctr.GetComunas)
	// GET /comunas/:id/barrios -> llama a GetBarrios
	g.GET("/comunas/:id/barrios", ctr.GetBarrios)
	// POST /barrios -> llama a CreateBarrio (admin o visualizer)
	g.POST("/barrios", ctr.CreateBarrio, canWrite)
	g.GET("/nacionalidades", ctr.GetNacionalidades)
	g.POST("/nacionalidades", ctr.CreateNacionalidad, canWrite)
}

// GetComunas es el handler de GET /comunas.
// - Pasa el contexto de la petición al servicio.
// - En caso de error responde 500 con el detalle.
// - En caso de éxito responde 200 con el slice de comunas en JSON.
func (ctr *CatalogoController) GetComunas(c echo.Context) error {
	// 1. Pide al servicio todas las comunas.
	comunas, err := ctr.svc.ListComunas(c.Request().Context())
	if err != nil {
		// 2. Falla de almacenamiento.
		return ctr.fail(c, err, "", "Error al obtener las comunas")
	}

	// 3. Todo salió bien.
	return c.JSON(http.StatusOK, comunas)
}

// GetBarrios es el handler de GET /comunas/:id/barrios.
// - Responde 400 si el id no es numérico.
// - Responde 404 si la comuna no existe.
// - Responde 200 con los barrios ordenados por nombre.
func (ctr *CatalogoController) GetBarrios(c echo.Context) error {
	// 1. Lee el id de la comuna de la ruta.
	id, err := paramID(c)
	if err != nil {
		return ctr.fail(c, err, "", "")
	}

	// 2. Consulta los barrios de esa comuna.
	barrios, err := ctr.svc.ListBarrios(c.Request().Context(), id)
	if err != nil {
		return ctr.fail(c, err, "Comuna no encontrada", "Error al obtener los barrios")
	}

	// 3. Responde con la lista, vacía si la comuna no tiene barrios.
	return c.JSON(http.StatusOK, barrios)
}

// CreateBarrio es el handler de POST /barrios {id_comuna, nombre}.
// Un nombre repetido dentro de la misma comuna responde 409.
func (ctr *CatalogoController) CreateBarrio(c echo.Context) error {
	// 1. Decodifica y valida el cuerpo.
	var b models.Barrio
	if err := bindAndValidate(c, &b); err != nil {
		return ctr.fail(c, err, "", "")
	}

	// 2. Registra el barrio.
	created, err := ctr.svc.CreateBarrio(c.Request().Context(), &b)
	if err != nil {
		return ctr.fail(c, err, "Comuna no encontrada", "Error al registrar el barrio")
	}

	// 3. Responde 201 con el registro creado.
	return c.JSON(http.StatusCreated, created)
}

// GetNacionalidades es el handler de GET /nacionalidades.
func (ctr *CatalogoController) GetNacionalidades(c echo.Context) error {
	list, err := ctr.svc.ListNacionalidades(c.Request().Context())
	if err != nil {
		return ctr.fail(c, err, "", "Error al obtener las nacionalidades")
	}
	return c.JSON(http.StatusOK, list)
}

// CreateNacionalidad es el handler de POST /nacionalidades {nombre}.
func (ctr *CatalogoController) CreateNacionalidad(c echo.Context) error {
	var n models.Nacionalidad
	if err := bindAndValidate(c, &n); err != nil {
		return ctr.fail(c, err, "", "")
	}

	created, err := ctr.svc.CreateNacionalidad(c.Request().Context(), &n)
	if err != nil {
		return ctr.fail(c, err, "", "Error al registrar la nacionalidad")
	}
	return c.JSON(http.StatusCreated, created)
}
