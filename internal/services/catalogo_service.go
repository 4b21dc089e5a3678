package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sihur-medellin/sihur/internal/models"
)

// CatalogoService define el contrato de las listas de referencia que ofrece
// el formulario de casos: comunas, sus barrios y nacionalidades.
type CatalogoService interface {
	// ListComunas retorna todas las comunas ordenadas por id, sin barrios.
	ListComunas(ctx context.Context) ([]models.Comuna, error)
	// ListBarrios retorna los barrios de una comuna, o ErrNotFound si la
	// comuna no existe.
	ListBarrios(ctx context.Context, comunaID uint) ([]models.Barrio, error)
	// CreateBarrio agrega un barrio a una comuna existente. El nombre es
	// único dentro de la comuna, sin distinguir mayúsculas.
	CreateBarrio(ctx context.Context, b *models.Barrio) (*models.Barrio, error)
	ListNacionalidades(ctx context.Context) ([]models.Nacionalidad, error)
	CreateNacionalidad(ctx context.Context, n *models.Nacionalidad) (*models.Nacionalidad, error)
}

// catalogoService es la implementación concreta de CatalogoService.
// Contiene la instancia de GORM para acceder a la base.
type catalogoService struct {
	db *gorm.DB
}

// NewCatalogoService inyecta la dependencia *gorm.DB y retorna una
// instancia de CatalogoService lista para usar.
func NewCatalogoService(db *gorm.DB) CatalogoService {
	return &catalogoService{db: db}
}

// ListComunas consulta la base para obtener todas las comunas.
// - El parámetro ctx permite cancelar la consulta con la petición.
// - Retorna un slice vacío, nunca nil, cuando no hay registros.
func (s *catalogoService) ListComunas(ctx context.Context) ([]models.Comuna, error) {
	comunas := []models.Comuna{}

	// Ejecuta SELECT * FROM comunas ORDER BY id
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&comunas).Error; err != nil {
		// En caso de falla retorna nil y el error envuelto.
		return nil, storageError("list comunas", err)
	}

	// Retorna el slice lleno y sin error
	return comunas, nil
}

func (s *catalogoService) ListBarrios(ctx context.Context, comunaID uint) ([]models.Barrio, error) {
	db := s.db.WithContext(ctx)

	// Una comuna inexistente es 404, no una lista vacía.
	if err := db.Select("id").First(&models.Comuna{}, comunaID).Error; err != nil {
		return nil, storageError("find comuna", err)
	}

	barrios := []models.Barrio{}
	if err := db.Where("id_comuna = ?", comunaID).Order("nombre ASC").Find(&barrios).Error; err != nil {
		return nil, storageError("list barrios", err)
	}
	return barrios, nil
}

func (s *catalogoService) CreateBarrio(ctx context.Context, b *models.Barrio) (*models.Barrio, error) {
	if b == nil {
		return nil, validationError("barrio vacío")
	}
	b.Nombre = strings.TrimSpace(b.Nombre)
	if b.Nombre == "" || b.ComunaID == 0 {
		return nil, validationError("id_comuna y nombre son obligatorios")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. La comuna debe existir.
		if err := tx.Select("id").First(&models.Comuna{}, b.ComunaID).Error; err != nil {
			return storageError("find comuna", err)
		}

		// 2. Busca un barrio con el mismo nombre en la comuna.
		var n int64
		err := tx.Model(&models.Barrio{}).
			Where("id_comuna = ? AND LOWER(nombre) = LOWER(?)", b.ComunaID, b.Nombre).
			Count(&n).Error
		if err != nil {
			return storageError("check barrio", err)
		}
		if n > 0 {
			return ErrDuplicateCatalogEntry
		}

		// 3. Inserta el barrio nuevo.
		b.ID = 0
		return createCatalogEntry(tx, b, "create barrio")
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *catalogoService) ListNacionalidades(ctx context.Context) ([]models.Nacionalidad, error) {
	nacionalidades := []models.Nacionalidad{}
	if err := s.db.WithContext(ctx).Order("nombre ASC").Find(&nacionalidades).Error; err != nil {
		return nil, storageError("list nacionalidades", err)
	}
	return nacionalidades, nil
}

func (s *catalogoService) CreateNacionalidad(ctx context.Context, n *models.Nacionalidad) (*models.Nacionalidad, error) {
	if n == nil {
		return nil, validationError("nacionalidad vacía")
	}
	n.Nombre = strings.TrimSpace(n.Nombre)
	if n.Nombre == "" {
		return nil, validationError("nombre es obligatorio")
	}

	db := s.db.WithContext(ctx)

	var count int64
	err := db.Model(&models.Nacionalidad{}).Where("LOWER(nombre) = LOWER(?)", n.Nombre).Count(&count).Error
	if err != nil {
		return nil, storageError("check nacionalidad", err)
	}
	if count > 0 {
		return nil, ErrDuplicateCatalogEntry
	}

	n.ID = 0
	if err := createCatalogEntry(db, n, "create nacionalidad"); err != nil {
		return nil, err
	}
	return n, nil
}

// createCatalogEntry inserts value and maps unique violations to
// ErrDuplicateCatalogEntry.
func createCatalogEntry(db *gorm.DB, value any, op string) error {
	if err := db.Create(value).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCatalogEntry
		}
		return storageError(op, err)
	}
	return nil
}
