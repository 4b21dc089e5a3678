package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sihur-medellin/sihur/internal/config"
	"github.com/sihur-medellin/sihur/internal/database"
	"github.com/sihur-medellin/sihur/internal/models"
	"github.com/sihur-medellin/sihur/internal/services"
)

type testApp struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, database.Migrate(context.Background(), db, database.AdminAccount{
		Username: "admin",
		Password: "admin",
		Email:    "admin@medellin.gov.co",
	}, nil))

	cfg := &config.Config{
		HTTPBodyLimit:  "50M",
		CORSOrigins:    []string{"*"},
		FrontendURL:    "http://localhost:3000",
		JWTSecret:      "test-secret",
		JWTSessionTTL:  time.Hour,
		JWTRememberTTL: 7 * 24 * time.Hour,
		ResetTokenTTL:  time.Hour,
		AuthRateLimit:  1000,
	}
	srv, err := New(cfg, db, nil, Options{Location: time.UTC, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	return &testApp{t: t, db: db, handler: srv.Handler()}
}

func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) login(username, password string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/login", "", map[string]any{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var out map[string]string
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(a.t, out["token"])
	return out["token"]
}

func (a *testApp) addUser(username, password, role string) {
	a.t.Helper()
	hash, err := services.HashPassword(password, bcrypt.MinCost)
	require.NoError(a.t, err)
	require.NoError(a.t, a.db.Create(&models.Usuario{Username: username, Password: hash, Role: role}).Error)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

var casoBody = map[string]any{
	"fecha":         "2025-03-10T14:30",
	"comuna":        "Comuna 10 - La Candelaria",
	"barrio":        "Prado",
	"direccion":     "Carrera 50 # 58-12",
	"latitud":       "6.2442",
	"longitud":      "",
	"observaciones": "Hurto a mano armada",
	"victimas": []map[string]any{{
		"nombres_apellidos": "Ana María Gómez",
		"vehiculo_hurtado":  true,
		"vehiculos":         []map[string]any{{"placa": "ABC123", "marca": "Toyota"}},
	}},
	"vehiculos_implicados": []map[string]any{{"placa": "XYZ789", "capacidad_pasajeros": "5"}},
	"camaras_seguridad":    []map[string]any{},
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = app.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/casos/today", "/api/v1/statistics", "/protected"} {
		rec := app.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := app.do(http.MethodGet, "/api/casos/today", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/login", "", map[string]any{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Credenciales inválidas", decode[map[string]string](t, rec)["message"])

	rec = app.do(http.MethodPost, "/login", "", map[string]any{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := app.login("admin", "admin")
	rec = app.do(http.MethodGet, "/protected", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin")
}

func TestCaseLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := app.login("admin", "admin")

	rec := app.do(http.MethodPost, "/api/casos", token, casoBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	id := int(created["id"].(float64))
	assert.Regexp(t, `^CASO-\d{14}-[0-9A-F]{6}$`, created["codigo_caso"])

	rec = app.do(http.MethodGet, "/api/v1/casos/"+itoa(id), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	detalle := decode[map[string]any](t, rec)
	assert.Equal(t, 6.2442, detalle["latitud"])
	assert.Nil(t, detalle["longitud"])
	assert.Len(t, detalle["victimas"], 1)
	assert.Len(t, detalle["camaras_seguridad"], 0)
	assert.NotNil(t, detalle["personas_individualizadas"])
	implicados := detalle["vehiculos_implicados"].([]any)
	assert.EqualValues(t, 5, implicados[0].(map[string]any)["capacidad_pasajeros"])

	rec = app.do(http.MethodGet, "/api/casos/search?placa_hurtado=abc", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hits := decode[[]map[string]any](t, rec)
	require.Len(t, hits, 1)
	assert.Equal(t, "ABC123", hits[0]["criterio_busqueda"])

	rec = app.do(http.MethodGet, "/api/statistics/top/vehiculos", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"marca":"Toyota","count":1}]`, rec.Body.String())

	update := map[string]any{
		"fecha":     "2025-03-11T08:00",
		"comuna":    "Comuna 11 - Laureles-Estadio",
		"barrio":    "Laureles",
		"direccion": "Circular 1",
	}
	rec = app.do(http.MethodPut, "/api/casos/"+itoa(id), token, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(http.MethodDelete, "/api/casos/"+itoa(id), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Caso eliminado exitosamente", decode[map[string]string](t, rec)["message"])

	rec = app.do(http.MethodGet, "/api/casos/"+itoa(id), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Caso no encontrado", decode[map[string]string](t, rec)["message"])
}

func TestCreateCase_Validation(t *testing.T) {
	app := newTestApp(t)
	token := app.login("admin", "admin")

	rec := app.do(http.MethodPost, "/api/casos", token, map[string]any{"fecha": "mañana", "comuna": "X", "barrio": "Y", "direccion": "Z"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodPost, "/api/casos", token, map[string]any{"fecha": "2025-03-10T14:30"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "comuna")
}

func TestRoleGates(t *testing.T) {
	app := newTestApp(t)
	app.addUser("visor", "visor", models.RolVisualizer)
	app.addUser("otro", "otro", "auditor")

	admin := app.login("admin", "admin")
	visor := app.login("visor", "visor")
	otro := app.login("otro", "otro")

	rec := app.do(http.MethodPost, "/api/casos", visor, casoBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := itoa(int(decode[map[string]any](t, rec)["id"].(float64)))

	rec = app.do(http.MethodDelete, "/api/casos/"+id, visor, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodPost, "/api/casos", otro, casoBody)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodGet, "/api/casos/"+id, otro, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "every authenticated role may read")

	rec = app.do(http.MethodDelete, "/api/casos/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIndividuals(t *testing.T) {
	app := newTestApp(t)
	token := app.login("admin", "admin")

	persona := map[string]any{"nombres_apellidos": "Jorge Restrepo", "cedula": "71000222"}
	rec := app.do(http.MethodPost, "/api/personas_individualizadas", token, persona)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	personaID := int(decode[map[string]any](t, rec)["id"].(float64))

	rec = app.do(http.MethodPost, "/api/personas_individualizadas", token, persona)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(http.MethodGet, "/api/personas_individualizadas/search?query=", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodGet, "/api/personas_individualizadas/search?query=restre", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = app.do(http.MethodPost, "/api/casos", token, casoBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	casoID := itoa(int(decode[map[string]any](t, rec)["id"].(float64)))

	link := map[string]any{"id_persona_individualizada": personaID}
	rec = app.do(http.MethodPost, "/api/casos/"+casoID+"/personas_individualizadas", token, link)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = app.do(http.MethodPost, "/api/casos/"+casoID+"/personas_individualizadas", token, link)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPasswordEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/auth/forgot-password", "", map[string]any{"email": "nobody@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.MensajeRecuperacion, decode[map[string]string](t, rec)["message"])

	rec = app.do(http.MethodPost, "/api/auth/reset-password", "", map[string]any{"token": "bogus", "newPassword": "nueva"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Token inválido o expirado.", decode[map[string]string](t, rec)["message"])

	token := app.login("admin", "admin")
	rec = app.do(http.MethodPost, "/api/user/change-password", token, map[string]any{"currentPassword": "wrong", "newPassword": "nueva"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodPost, "/api/user/change-password", token, map[string]any{"currentPassword": "admin", "newPassword": strings.Repeat("x", 73)})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = app.do(http.MethodPost, "/api/user/change-password", token, map[string]any{"currentPassword": "admin", "newPassword": "nueva"})
	require.Equal(t, http.StatusOK, rec.Code)
	app.login("admin", "nueva")
}

func TestCatalogRoutes(t *testing.T) {
	app := newTestApp(t)
	token := app.login("admin", "admin")

	rec := app.do(http.MethodGet, "/api/comunas", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	comunas := decode[[]map[string]any](t, rec)
	require.Len(t, comunas, 21)

	first := itoa(int(comunas[0]["id"].(float64)))
	rec = app.do(http.MethodGet, "/api/comunas/"+first+"/barrios", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 5)

	rec = app.do(http.MethodPost, "/api/nacionalidades", token, map[string]any{"nombre": "Colombiana"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUnknownRouteUsesJSONError(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/no-such-route", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["message"])
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func TestStatisticsRoutes(t *testing.T) {
	app := newTestApp(t)
	token := app.login("admin", "admin")

	rec := app.do(http.MethodGet, "/api/statistics", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hurtos_dia":0,"hurtos_mes_acumulado":0,"hurtos_ano_acumulado":0}`, rec.Body.String())

	rec = app.do(http.MethodGet, "/api/statistics/top", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decode[map[string][]any](t, rec)
	for _, k := range []string{"top_comunas_dia", "top_comunas_mes", "top_comunas_ano", "top_barrios_dia", "top_barrios_mes", "top_barrios_ano"} {
		assert.NotNil(t, empty[k], k)
		assert.Empty(t, empty[k], k)
	}

	hoy := map[string]any{}
	for k, v := range casoBody {
		hoy[k] = v
	}
	hoy["fecha"] = time.Now().UTC().Format("2006-01-02T15:04")
	rec = app.do(http.MethodPost, "/api/casos", token, hoy)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(http.MethodGet, "/api/v1/statistics", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conteo := decode[models.ConteoHurtos](t, rec)
	assert.EqualValues(t, 1, conteo.HurtosDia)
	assert.EqualValues(t, 1, conteo.HurtosAnoAcumulado)

	rec = app.do(http.MethodGet, "/api/statistics/top", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	top := decode[models.TopUbicaciones](t, rec)
	require.Len(t, top.TopComunasDia, 1)
	assert.Equal(t, "Comuna 10 - La Candelaria", top.TopComunasDia[0].Comuna)
	require.Len(t, top.TopBarriosAno, 1)
	assert.Equal(t, "Prado", top.TopBarriosAno[0].Barrio)

	rec = app.do(http.MethodGet, "/api/casos/today", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
}
