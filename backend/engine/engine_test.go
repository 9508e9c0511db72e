package engine_test

import (
	"io"
	"log"
	"testing"

	"kitlab/backend/engine"
	"kitlab/backend/models"
	"kitlab/backend/store"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Kit{},
		&models.OfficialCourse{},
		&models.CustomCourse{},
		&models.Lesson{},
		&models.UserPermission{},
		&models.Purchase{},
		&models.LessonProgress{},
	))
	return db
}

func newTestEngine(t *testing.T) (*engine.Engine, *store.Gorm, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	s := store.NewGorm(db)
	eng := engine.New(s, nil, log.New(io.Discard, "", 0))
	return eng, s, db
}
