package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/sihur-medellin/sihur/internal/services"
)

type stubVerifier map[string]*services.Claims

func (s stubVerifier) VerifyToken(token string) (*services.Claims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

func newTestEcho() *echo.Echo {
	verifier := stubVerifier{
		"admin-token":  {UserID: 1, Username: "admin", Role: "admin"},
		"viewer-token": {UserID: 2, Username: "ana", Role: "visualizer"},
	}

	e := echo.New()
	g := e.Group("/api", Auth(verifier, nil))
	g.GET("/whoami", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"id": UserID(c)})
	})
	g.DELETE("/thing", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RequireRoles("admin"))
	return e
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, "Token no proporcionado"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Encabezado de autorización inválido"},
		{"no token", "Bearer", http.StatusUnauthorized, "Encabezado de autorización inválido"},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, "Token inválido o expirado"},
		{"valid token", "Bearer viewer-token", http.StatusOK, `"id":2`},
		{"lowercase scheme", "bearer admin-token", http.StatusOK, `"id":1`},
	}

	e := newTestEcho()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get(echo.HeaderWWWAuthenticate))
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	e := newTestEcho()

	do := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/thing", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := do("viewer-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "No tiene permisos")

	assert.Equal(t, http.StatusNoContent, do("admin-token").Code)
}

func TestRequireRoles_WithoutAuth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireRoles("admin")(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, UserID(c))
}
