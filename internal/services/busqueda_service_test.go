package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sihur-medellin/sihur/internal/models"
)

// seedBusqueda creates two cases: the first with stolen vehicle ABC123 and
// two victims, the second with involved vehicle ABC999 and a linked individual.
func seedBusqueda(t *testing.T) (BusquedaService, []*models.Caso) {
	t.Helper()
	db := setupTestDB(t)
	casos := NewCasoService(db, time.UTC)
	ctx := context.Background()

	primero := sampleCaso()
	primero.Victimas = append(primero.Victimas, models.Victima{
		NombresApellidos: "Ana Lucía Gómez",
		VehiculoHurtado:  true,
		Vehiculos:        []models.VehiculoHurtado{{Placa: "abc123", Marca: "Toyota"}},
	})
	c1, err := casos.CreateCase(ctx, primero, 1)
	require.NoError(t, err)

	segundo := &models.Caso{
		Fecha:               time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC),
		Comuna:              "Comuna 7 - Robledo",
		Barrio:              "Pajarito",
		Direccion:           "Calle 80",
		VehiculosImplicados: []models.VehiculoImplicado{{Placa: "ABC999"}},
	}
	c2, err := casos.CreateCase(ctx, segundo, 1)
	require.NoError(t, err)

	p := models.PersonaIndividualizada{NombresApellidos: "Jorge Restrepo", Cedula: "71000222"}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, casos.AssociateIndividualWithCase(ctx, c2.ID, p.ID, 1))

	return NewBusquedaService(db), []*models.Caso{c1, c2}
}

func TestSearchCases_NoFiltersListsAll(t *testing.T) {
	svc, casos := seedBusqueda(t)

	res, err := svc.SearchCases(context.Background(), models.FiltrosBusqueda{})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, casos[0].ID, res[0].ID)
	assert.Empty(t, res[0].CriterioBusqueda)
}

func TestSearchCases_DeduplicatesJoinedRows(t *testing.T) {
	svc, casos := seedBusqueda(t)

	// Two stolen vehicles of the same case match; the case appears once.
	res, err := svc.SearchCases(context.Background(), models.FiltrosBusqueda{PlacaHurtado: "ABC"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, casos[0].ID, res[0].ID)
	assert.Contains(t, []string{"ABC123", "abc123"}, res[0].CriterioBusqueda)
}

func TestSearchCases_CaseInsensitive(t *testing.T) {
	svc, casos := seedBusqueda(t)

	res, err := svc.SearchCases(context.Background(), models.FiltrosBusqueda{NombreVictima: "luis"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, casos[0].ID, res[0].ID)
	assert.Equal(t, "Luis Pérez", res[0].CriterioBusqueda)
}

func TestSearchCases_FiltersAreANDed(t *testing.T) {
	svc, casos := seedBusqueda(t)
	ctx := context.Background()

	res, err := svc.SearchCases(ctx, models.FiltrosBusqueda{PlacaImplicado: "abc", NombrePersona: "restrepo"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, casos[1].ID, res[0].ID)
	assert.Equal(t, "ABC999", res[0].CriterioBusqueda, "first active filter supplies the criterion")

	res, err = svc.SearchCases(ctx, models.FiltrosBusqueda{PlacaHurtado: "abc", CedulaPersona: "71000"})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearchCases_PlateAndNameMatchDifferentVictims(t *testing.T) {
	svc, casos := seedBusqueda(t)
	ctx := context.Background()

	// ABC123 belongs to Ana María; Luis Pérez has no stolen vehicle.
	res, err := svc.SearchCases(ctx, models.FiltrosBusqueda{PlacaHurtado: "ABC", NombreVictima: "Luis"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, casos[0].ID, res[0].ID)
	assert.Contains(t, []string{"ABC123", "abc123"}, res[0].CriterioBusqueda)

	res, err = svc.SearchCases(ctx, models.FiltrosBusqueda{PlacaHurtado: "ABC", NombreVictima: "Jorge"})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearchCases_InputIsNotSQL(t *testing.T) {
	svc, _ := seedBusqueda(t)

	res, err := svc.SearchCases(context.Background(), models.FiltrosBusqueda{NombreVictima: "' OR 1=1 --"})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestBuildSearchQuery_JoinsOnce(t *testing.T) {
	q, args, ok := buildSearchQuery(models.FiltrosBusqueda{
		PlacaHurtado:  "a",
		NombreVictima: "b",
		CedulaPersona: "c",
		NombrePersona: "d",
	})
	require.True(t, ok)
	assert.Len(t, args, 4)
	assert.Equal(t, 1, strings.Count(q, joinVictimas))
	assert.Equal(t, 1, strings.Count(q, joinVictimasNombre))
	assert.Equal(t, 1, strings.Count(q, joinCasoPersona))
	assert.Equal(t, 1, strings.Count(q, joinPersonas))
	assert.Contains(t, q, "LOWER(v2.nombres_apellidos) LIKE LOWER(?)")
	assert.Contains(t, q, "MIN(vh.placa) AS criterio_busqueda")

	_, _, ok = buildSearchQuery(models.FiltrosBusqueda{PlacaHurtado: "   "})
	assert.False(t, ok)
}
