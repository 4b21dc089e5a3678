package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sihur-medellin/sihur/internal/models"
)

// PersonaService manages identified individuals.
type PersonaService interface {
	// CreateIndividual stores a new individual. The cedula must be unique.
	CreateIndividual(ctx context.Context, p *models.PersonaIndividualizada, userID uint) (*models.PersonaIndividualizada, error)
	// SearchIndividuals matches query against name, cedula and phone.
	SearchIndividuals(ctx context.Context, query string) ([]models.PersonaIndividualizada, error)
	GetIndividual(ctx context.Context, id uint) (*models.PersonaIndividualizada, error)
}

type personaService struct {
	db *gorm.DB
}

func NewPersonaService(db *gorm.DB) PersonaService {
	return &personaService{db: db}
}

// CreateIndividual registra una persona individualizada.
// - Recorta espacios de nombre y cédula; ambos son obligatorios.
// - Una cédula ya registrada retorna ErrDuplicateNationalID.
func (s *personaService) CreateIndividual(ctx context.Context, p *models.PersonaIndividualizada, userID uint) (*models.PersonaIndividualizada, error) {
	// 1. Normaliza y valida.
	if p == nil {
		return nil, validationError("persona vacía")
	}
	p.NombresApellidos = strings.TrimSpace(p.NombresApellidos)
	p.Cedula = strings.TrimSpace(p.Cedula)
	if p.NombresApellidos == "" || p.Cedula == "" {
		return nil, validationError("nombres_apellidos y cedula son obligatorios")
	}

	db := s.db.WithContext(ctx)

	// 2. Verifica que la cédula no exista.
	var n int64
	if err := db.Model(&models.PersonaIndividualizada{}).Where("cedula = ?", p.Cedula).Count(&n).Error; err != nil {
		return nil, storageError("check cedula", err)
	}
	if n > 0 {
		return nil, ErrDuplicateNationalID
	}

	// 3. Inserta con el usuario que la registra.
	p.ID = 0
	p.Auditoria = models.Auditoria{CreatedBy: userRef(userID)}
	if err := db.Create(p).Error; err != nil {
		// Otra petición insertó la misma cédula entre el paso 2 y el 3.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateNationalID
		}
		return nil, storageError("create persona", err)
	}
	return p, nil
}

func (s *personaService) SearchIndividuals(ctx context.Context, query string) ([]models.PersonaIndividualizada, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingQuery
	}
	like := "%" + query + "%"

	personas := []models.PersonaIndividualizada{}
	err := s.db.WithContext(ctx).
		Where("LOWER(nombres_apellidos) LIKE LOWER(?) OR LOWER(cedula) LIKE LOWER(?) OR LOWER(telefono_movil) LIKE LOWER(?)", like, like, like).
		Order("nombres_apellidos ASC").
		Order("id ASC").
		Find(&personas).Error
	if err != nil {
		return nil, storageError("search personas", err)
	}
	return personas, nil
}

func (s *personaService) GetIndividual(ctx context.Context, id uint) (*models.PersonaIndividualizada, error) {
	var p models.PersonaIndividualizada
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, storageError("find persona", err)
	}
	return &p, nil
}
