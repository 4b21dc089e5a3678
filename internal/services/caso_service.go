package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sihur-medellin/sihur/internal/models"
)

// CasoService defines the operations on theft cases and their child records.
type CasoService interface {
	// CreateCase stores the case and every child record in one transaction
	// and returns the stored aggregate.
	CreateCase(ctx context.Context, caso *models.Caso, userID uint) (*models.Caso, error)
	GetCase(ctx context.Context, id uint) (*models.Caso, error)
	// UpdateCase replaces the parent fields and every child record.
	// Links to identified individuals are left untouched.
	UpdateCase(ctx context.Context, id uint, caso *models.Caso, userID uint) (*models.Caso, error)
	DeleteCase(ctx context.Context, id uint) error
	// ListToday returns the cases whose fecha falls on the current local day.
	ListToday(ctx context.Context) ([]models.Caso, error)
	AssociateIndividualWithCase(ctx context.Context, casoID, personaID, userID uint) error
}

// casoService is the GORM implementation of CasoService.
type casoService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewCasoService returns a CasoService. loc is the zone used for case codes
// and day windows; nil means time.Local.
func NewCasoService(db *gorm.DB, loc *time.Location) CasoService {
	if loc == nil {
		loc = time.Local
	}
	return &casoService{db: db, loc: loc, now: time.Now}
}

func (s *casoService) CreateCase(ctx context.Context, caso *models.Caso, userID uint) (*models.Caso, error) {
	if caso == nil {
		return nil, validationError("caso vacío")
	}
	var created *models.Caso

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		caso.ID = 0
		caso.Fecha = caso.Fecha.UTC()
		caso.CodigoCaso = s.newCodigoCaso()
		caso.Auditoria = models.Auditoria{CreatedBy: userRef(userID)}

		if err := tx.Omit(clause.Associations).Create(caso).Error; err != nil {
			return storageError("create caso", err)
		}
		if err := insertChildren(tx, caso, userID); err != nil {
			return err
		}

		var err error
		created, err = loadCaso(tx, caso.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *casoService) GetCase(ctx context.Context, id uint) (*models.Caso, error) {
	return loadCaso(s.db.WithContext(ctx), id)
}

func (s *casoService) UpdateCase(ctx context.Context, id uint, caso *models.Caso, userID uint) (*models.Caso, error) {
	if caso == nil {
		return nil, validationError("caso vacío")
	}
	var updated *models.Caso

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Caso
		if err := tx.First(&existing, id).Error; err != nil {
			return storageError("find caso", err)
		}

		err := tx.Model(&existing).Updates(map[string]any{
			"fecha":         caso.Fecha.UTC(),
			"comuna":        caso.Comuna,
			"barrio":        caso.Barrio,
			"direccion":     caso.Direccion,
			"latitud":       caso.Latitud,
			"longitud":      caso.Longitud,
			"observaciones": caso.Observaciones,
			"updated_by":    userRef(userID),
			"updated_at":    s.now(),
		}).Error
		if err != nil {
			return storageError("update caso", err)
		}

		if err := deleteChildren(tx, id); err != nil {
			return err
		}
		caso.ID = id
		if err := insertChildren(tx, caso, userID); err != nil {
			return err
		}

		updated, err = loadCaso(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *casoService) DeleteCase(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteChildren(tx, id); err != nil {
			return err
		}
		err := tx.Where("id_caso = ?", id).Delete(&models.CasoPersonaIndividualizada{}).Error
		if err != nil {
			return storageError("delete case links", err)
		}

		res := tx.Delete(&models.Caso{}, id)
		if res.Error != nil {
			return storageError("delete caso", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *casoService) ListToday(ctx context.Context) ([]models.Caso, error) {
	start, end := dayWindow(s.now(), s.loc)

	casos := []models.Caso{}
	err := s.db.WithContext(ctx).
		Where("fecha >= ? AND fecha < ?", start.UTC(), end.UTC()).
		Order("fecha ASC").
		Order("id ASC").
		Find(&casos).Error
	if err != nil {
		return nil, storageError("list today", err)
	}
	return casos, nil
}

func (s *casoService) AssociateIndividualWithCase(ctx context.Context, casoID, personaID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Caso{}, casoID).Error; err != nil {
			return storageError("find caso", err)
		}
		if err := tx.Select("id").First(&models.PersonaIndividualizada{}, personaID).Error; err != nil {
			return storageError("find persona", err)
		}

		var n int64
		err := tx.Model(&models.CasoPersonaIndividualizada{}).
			Where("id_caso = ? AND id_persona_individualizada = ?", casoID, personaID).
			Count(&n).Error
		if err != nil {
			return storageError("check association", err)
		}
		if n > 0 {
			return ErrDuplicateAssociation
		}

		link := models.CasoPersonaIndividualizada{
			CasoID:                   casoID,
			PersonaIndividualizadaID: personaID,
			CreatedBy:                userRef(userID),
		}
		if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateAssociation
			}
			return storageError("create association", err)
		}
		return nil
	})
}

// newCodigoCaso builds CASO-<local timestamp>-<6 hex chars>.
func (s *casoService) newCodigoCaso() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("CASO-%s-%s", s.now().In(s.loc).Format("20060102150405"), strings.ToUpper(suffix))
}

// insertChildren stores the victims, stolen vehicles, involved vehicles and
// cameras of caso. Stolen vehicles of a victim whose flag is off are dropped.
func insertChildren(tx *gorm.DB, caso *models.Caso, userID uint) error {
	audit := models.Auditoria{CreatedBy: userRef(userID)}

	for i := range caso.Victimas {
		v := &caso.Victimas[i]
		v.ID = 0
		v.CasoID = caso.ID
		v.Auditoria = audit
		if !v.VehiculoHurtado {
			v.Vehiculos = nil
		}
		if err := tx.Omit(clause.Associations).Create(v).Error; err != nil {
			return storageError("create victima", err)
		}

		for j := range v.Vehiculos {
			vh := &v.Vehiculos[j]
			vh.ID = 0
			vh.VictimaID = v.ID
			vh.Auditoria = audit
			if err := tx.Create(vh).Error; err != nil {
				return storageError("create vehiculo hurtado", err)
			}
		}
	}

	for i := range caso.VehiculosImplicados {
		vi := &caso.VehiculosImplicados[i]
		vi.ID = 0
		vi.CasoID = caso.ID
		vi.Auditoria = audit
		if err := tx.Create(vi).Error; err != nil {
			return storageError("create vehiculo implicado", err)
		}
	}

	for i := range caso.CamarasSeguridad {
		cam := &caso.CamarasSeguridad[i]
		cam.ID = 0
		cam.CasoID = caso.ID
		cam.Auditoria = audit
		if err := tx.Create(cam).Error; err != nil {
			return storageError("create camara", err)
		}
	}
	return nil
}

// deleteChildren removes every child row of a case, leaving the case row and
// its links to identified individuals.
func deleteChildren(tx *gorm.DB, casoID uint) error {
	victimas := tx.Model(&models.Victima{}).Select("id").Where("id_caso = ?", casoID)
	if err := tx.Where("id_victima IN (?)", victimas).Delete(&models.VehiculoHurtado{}).Error; err != nil {
		return storageError("delete vehiculos hurtados", err)
	}
	if err := tx.Where("id_caso = ?", casoID).Delete(&models.Victima{}).Error; err != nil {
		return storageError("delete victimas", err)
	}
	if err := tx.Where("id_caso = ?", casoID).Delete(&models.VehiculoImplicado{}).Error; err != nil {
		return storageError("delete vehiculos implicados", err)
	}
	if err := tx.Where("id_caso = ?", casoID).Delete(&models.CamaraSeguridad{}).Error; err != nil {
		return storageError("delete camaras", err)
	}
	return nil
}

// loadCaso reads the full aggregate of a case.
func loadCaso(db *gorm.DB, id uint) (*models.Caso, error) {
	var caso models.Caso
	err := db.
		Preload("Victimas", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Victimas.Vehiculos", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("VehiculosImplicados", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("CamarasSeguridad", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&caso, id).Error
	if err != nil {
		return nil, storageError("find caso", err)
	}

	err = db.Model(&models.PersonaIndividualizada{}).
		Joins("JOIN casos_personas_individualizadas cpi ON cpi.id_persona_individualizada = personas_individualizadas.id").
		Where("cpi.id_caso = ?", id).
		Order("personas_individualizadas.id ASC").
		Find(&caso.PersonasIndividualizadas).Error
	if err != nil {
		return nil, storageError("find personas del caso", err)
	}
	return &caso, nil
}

// dayWindow returns local midnight of now's day in loc and the following midnight.
func dayWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func userRef(userID uint) *uint {
	if userID == 0 {
		return nil
	}
	id := userID
	return &id
}
