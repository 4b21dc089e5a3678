package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sihur-medellin/sihur/internal/models"
)

// topLimit is the size of every ranking.
const topLimit = 3

// EstadisticaService aggregates cases by time window and location.
type EstadisticaService interface {
	// ComputeCounts counts cases since the start of the local day, month
	// and year.
	ComputeCounts(ctx context.Context) (*models.ConteoHurtos, error)
	// TopRankings returns the three comunas and barrios with most cases in
	// each window. Ties are broken by name.
	TopRankings(ctx context.Context) (*models.TopUbicaciones, error)
	// TopVehicleBrands ranks stolen-vehicle brands over all time.
	TopVehicleBrands(ctx context.Context) ([]models.ConteoMarca, error)
}

type estadisticaService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewEstadisticaService returns an EstadisticaService whose windows are
// computed in loc (time.Local when nil).
func NewEstadisticaService(db *gorm.DB, loc *time.Location) EstadisticaService {
	if loc == nil {
		loc = time.Local
	}
	return &estadisticaService{db: db, loc: loc, now: time.Now}
}

// ventanas holds the UTC start of the current local day, month and year.
type ventanas struct {
	dia, mes, ano time.Time
}

func (s *estadisticaService) ventanas() ventanas {
	now := s.now().In(s.loc)
	return ventanas{
		dia: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc).UTC(),
		mes: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc).UTC(),
		ano: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, s.loc).UTC(),
	}
}

func (s *estadisticaService) ComputeCounts(ctx context.Context) (*models.ConteoHurtos, error) {
	db := s.db.WithContext(ctx)
	w := s.ventanas()

	var out models.ConteoHurtos
	for _, c := range []struct {
		desde time.Time
		dst   *int64
	}{
		{w.dia, &out.HurtosDia},
		{w.mes, &out.HurtosMesAcumulado},
		{w.ano, &out.HurtosAnoAcumulado},
	} {
		if err := db.Model(&models.Caso{}).Where("fecha >= ?", c.desde).Count(c.dst).Error; err != nil {
			return nil, storageError("count casos", err)
		}
	}
	return &out, nil
}

func (s *estadisticaService) TopRankings(ctx context.Context) (*models.TopUbicaciones, error) {
	db := s.db.WithContext(ctx)
	w := s.ventanas()
	out := &models.TopUbicaciones{}

	comunas := []struct {
		desde time.Time
		dst   *[]models.ConteoComuna
	}{
		{w.dia, &out.TopComunasDia},
		{w.mes, &out.TopComunasMes},
		{w.ano, &out.TopComunasAno},
	}
	for _, c := range comunas {
		*c.dst = []models.ConteoComuna{}
		if err := topPorColumna(db, "comuna", c.desde, c.dst); err != nil {
			return nil, err
		}
	}

	barrios := []struct {
		desde time.Time
		dst   *[]models.ConteoBarrio
	}{
		{w.dia, &out.TopBarriosDia},
		{w.mes, &out.TopBarriosMes},
		{w.ano, &out.TopBarriosAno},
	}
	for _, b := range barrios {
		*b.dst = []models.ConteoBarrio{}
		if err := topPorColumna(db, "barrio", b.desde, b.dst); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// topPorColumna ranks cases since desde grouped by columna, which is one of
// the fixed names "comuna" or "barrio".
func topPorColumna(db *gorm.DB, columna string, desde time.Time, dst any) error {
	err := db.Model(&models.Caso{}).
		Select(columna+", COUNT(*) AS count").
		Where("fecha >= ?", desde).
		Group(columna).
		Order("count DESC").
		Order(columna + " ASC").
		Limit(topLimit).
		Scan(dst).Error
	if err != nil {
		return storageError("top "+columna, err)
	}
	return nil
}

func (s *estadisticaService) TopVehicleBrands(ctx context.Context) ([]models.ConteoMarca, error) {
	marcas := []models.ConteoMarca{}
	err := s.db.WithContext(ctx).Model(&models.VehiculoHurtado{}).
		Select("marca, COUNT(*) AS count").
		Where("marca <> ''").
		Group("marca").
		Order("count DESC").
		Order("marca ASC").
		Limit(topLimit).
		Scan(&marcas).Error
	if err != nil {
		return nil, storageError("top marcas", err)
	}
	return marcas, nil
}
