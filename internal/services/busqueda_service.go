package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/sihur-medellin/sihur/internal/models"
)

// BusquedaService searches cases by partial matches on related records.
type BusquedaService interface {
	// SearchCases ANDs every non-empty filter. Without filters every case
	// is returned.
	SearchCases(ctx context.Context, filtros models.FiltrosBusqueda) ([]models.CasoResultado, error)
}

type busquedaService struct {
	db *gorm.DB
}

func NewBusquedaService(db *gorm.DB) BusquedaService {
	return &busquedaService{db: db}
}

const (
	joinVictimas          = "LEFT JOIN victimas v ON v.id_caso = c.id"
	joinVehiculosHurtados = "LEFT JOIN vehiculos_hurtados vh ON vh.id_victima = v.id"
	joinVictimasNombre    = "LEFT JOIN victimas v2 ON v2.id_caso = c.id"
	joinImplicados        = "LEFT JOIN vehiculos_implicados vi ON vi.id_caso = c.id"
	joinCasoPersona       = "LEFT JOIN casos_personas_individualizadas cpi ON cpi.id_caso = c.id"
	joinPersonas          = "LEFT JOIN personas_individualizadas p ON p.id = cpi.id_persona_individualizada"
)

// filtroBusqueda binds a filter name to the joins it needs and the column
// it matches. Only these fragments ever reach the SQL text; user input is
// always a bound parameter. The stolen plate and the victim name use
// separate victimas aliases, so they may match different victims of the
// same case.
type filtroBusqueda struct {
	nombre  string
	joins   []string
	columna string
	valor   func(models.FiltrosBusqueda) string
}

// filtrosRegistrados is ordered: the first active entry supplies
// criterio_busqueda.
var filtrosRegistrados = []filtroBusqueda{
	{
		nombre:  "placa_hurtado",
		joins:   []string{joinVictimas, joinVehiculosHurtados},
		columna: "vh.placa",
		valor:   func(f models.FiltrosBusqueda) string { return f.PlacaHurtado },
	},
	{
		nombre:  "placa_implicado",
		joins:   []string{joinImplicados},
		columna: "vi.placa",
		valor:   func(f models.FiltrosBusqueda) string { return f.PlacaImplicado },
	},
	{
		nombre:  "nombre_victima",
		joins:   []string{joinVictimasNombre},
		columna: "v2.nombres_apellidos",
		valor:   func(f models.FiltrosBusqueda) string { return f.NombreVictima },
	},
	{
		nombre:  "cedula_persona",
		joins:   []string{joinCasoPersona, joinPersonas},
		columna: "p.cedula",
		valor:   func(f models.FiltrosBusqueda) string { return f.CedulaPersona },
	},
	{
		nombre:  "nombre_persona",
		joins:   []string{joinCasoPersona, joinPersonas},
		columna: "p.nombres_apellidos",
		valor:   func(f models.FiltrosBusqueda) string { return f.NombrePersona },
	},
}

type coincidencia struct {
	ID               uint   `gorm:"column:id"`
	CriterioBusqueda string `gorm:"column:criterio_busqueda"`
}

func (s *busquedaService) SearchCases(ctx context.Context, filtros models.FiltrosBusqueda) ([]models.CasoResultado, error) {
	db := s.db.WithContext(ctx)

	query, args, activo := buildSearchQuery(filtros)
	if !activo {
		var casos []models.Caso
		if err := db.Order("id ASC").Find(&casos).Error; err != nil {
			return nil, storageError("list casos", err)
		}
		return toResultados(casos, nil), nil
	}

	var hits []coincidencia
	if err := db.Raw(query, args...).Scan(&hits).Error; err != nil {
		return nil, storageError("search casos", err)
	}
	if len(hits) == 0 {
		return []models.CasoResultado{}, nil
	}

	ids := make([]uint, 0, len(hits))
	criterios := make(map[uint]string, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
		criterios[h.ID] = h.CriterioBusqueda
	}

	var casos []models.Caso
	if err := db.Where("id IN ?", ids).Order("id ASC").Find(&casos).Error; err != nil {
		return nil, storageError("load casos", err)
	}
	return toResultados(casos, criterios), nil
}

// buildSearchQuery assembles the grouped search statement. It reports false
// when no filter is active.
func buildSearchQuery(filtros models.FiltrosBusqueda) (string, []any, bool) {
	var (
		joins      []string
		conditions []string
		args       []any
		criterio   string
		seen       = map[string]bool{}
	)

	for _, f := range filtrosRegistrados {
		v := strings.TrimSpace(f.valor(filtros))
		if v == "" {
			continue
		}
		if criterio == "" {
			criterio = f.columna
		}
		for _, j := range f.joins {
			if !seen[j] {
				seen[j] = true
				joins = append(joins, j)
			}
		}
		conditions = append(conditions, "LOWER("+f.columna+") LIKE LOWER(?)")
		args = append(args, "%"+v+"%")
	}
	if len(conditions) == 0 {
		return "", nil, false
	}

	var b strings.Builder
	b.WriteString("SELECT c.id AS id, MIN(")
	b.WriteString(criterio)
	b.WriteString(") AS criterio_busqueda FROM casos c")
	for _, j := range joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(conditions, " AND "))
	b.WriteString(" GROUP BY c.id ORDER BY c.id")
	return b.String(), args, true
}

func toResultados(casos []models.Caso, criterios map[uint]string) []models.CasoResultado {
	out := make([]models.CasoResultado, 0, len(casos))
	for _, c := range casos {
		out = append(out, models.CasoResultado{Caso: c, CriterioBusqueda: criterios[c.ID]})
	}
	return out
}
