package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sihur-medellin/sihur/internal/models"
)

// Models lists every table managed by the application, parents first.
func Models() []any {
	return []any{
		&models.Usuario{},
		&models.Comuna{},
		&models.Barrio{},
		&models.Nacionalidad{},
		&models.Caso{},
		&models.Victima{},
		&models.VehiculoHurtado{},
		&models.VehiculoImplicado{},
		&models.CamaraSeguridad{},
		&models.PersonaIndividualizada{},
		&models.CasoPersonaIndividualizada{},
	}
}

// AdminAccount is the credential pair provisioned when no user exists.
type AdminAccount struct {
	Username string
	Password string
	Email    string
}

// Migrate creates missing tables and columns, seeds the reference lists
// when they are empty and provisions the default administrator when the
// users table is empty. Running it again changes nothing.
func Migrate(ctx context.Context, db *gorm.DB, admin AdminAccount, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if err := seedComunas(db, logger); err != nil {
		return err
	}
	if err := seedNacionalidades(db, logger); err != nil {
		return err
	}
	return ensureAdmin(db, admin, logger)
}

func seedComunas(db *gorm.DB, logger *zap.Logger) error {
	var n int64
	if err := db.Model(&models.Comuna{}).Count(&n).Error; err != nil {
		return fmt.Errorf("count comunas: %w", err)
	}
	if n > 0 {
		return nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, sc := range comunasSemilla {
			comuna := models.Comuna{Nombre: sc.nombre}
			for _, b := range sc.barrios {
				comuna.Barrios = append(comuna.Barrios, models.Barrio{Nombre: b})
			}
			if err := tx.Create(&comuna).Error; err != nil {
				return fmt.Errorf("seed comuna %q: %w", sc.nombre, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("seeded comunas and barrios", zap.Int("comunas", len(comunasSemilla)))
	return nil
}

func seedNacionalidades(db *gorm.DB, logger *zap.Logger) error {
	var n int64
	if err := db.Model(&models.Nacionalidad{}).Count(&n).Error; err != nil {
		return fmt.Errorf("count nacionalidades: %w", err)
	}
	if n > 0 {
		return nil
	}

	rows := make([]models.Nacionalidad, 0, len(nacionalidadesSemilla))
	for _, nombre := range nacionalidadesSemilla {
		rows = append(rows, models.Nacionalidad{Nombre: nombre})
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("seed nacionalidades: %w", err)
	}
	logger.Info("seeded nacionalidades", zap.Int("count", len(rows)))
	return nil
}

func ensureAdmin(db *gorm.DB, admin AdminAccount, logger *zap.Logger) error {
	var n int64
	if err := db.Model(&models.Usuario{}).Count(&n).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	if admin.Username == "" || admin.Password == "" {
		return fmt.Errorf("no users exist and no default administrator is configured")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user := models.Usuario{
		Username: admin.Username,
		Email:    admin.Email,
		Password: string(hash),
		Role:     models.RolAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	logger.Warn("created default administrator; change its password",
		zap.String("username", admin.Username))
	return nil
}

// TableCount is the number of rows of one managed table.
type TableCount struct {
	Table string
	Rows  int64
}

// TableCounts returns the row count of every managed table in migration
// order.
func TableCounts(ctx context.Context, db *gorm.DB) ([]TableCount, error) {
	db = db.WithContext(ctx)
	out := make([]TableCount, 0, len(Models()))
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", m, err)
		}
		var n int64
		if err := db.Model(m).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", stmt.Schema.Table, err)
		}
		out = append(out, TableCount{Table: stmt.Schema.Table, Rows: n})
	}
	return out, nil
}
