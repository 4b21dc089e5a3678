package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sihur-medellin/sihur/internal/database"
	"github.com/sihur-medellin/sihur/internal/models"
)

// setupTestDB opens an in-memory SQLite database with every table migrated
// and no seed data.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err, "could not open test database")
	require.NoError(t, db.AutoMigrate(database.Models()...), "migration failed")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// fixedClock returns a clock stuck at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func insertCaso(t *testing.T, db *gorm.DB, fecha time.Time, comuna, barrio string) models.Caso {
	t.Helper()
	c := models.Caso{
		CodigoCaso: "CASO-TEST-" + uuid.NewString(),
		Fecha:      fecha.UTC(),
		Comuna:     comuna,
		Barrio:     barrio,
		Direccion:  "Calle 1 # 2-3",
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}
