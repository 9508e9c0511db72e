package store_test

import (
	"errors"
	"testing"
	"time"

	"kitlab/backend/models"
	"kitlab/backend/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newStore(t *testing.T) (*store.Gorm, *gorm.DB) {
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
	return store.NewGorm(db), db
}

func TestMissingRowIsNotFound(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.GetKit("nope")
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.False(t, errors.Is(err, store.ErrUnavailable))

	_, err = s.GetPermission("u", "k", models.PermissionCourseAccess)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestUpsertPermissionConvergesToOneRow(t *testing.T) {
	s, db := newStore(t)

	expiry := time.Now().Add(time.Hour)
	for _, e := range []*time.Time{nil, &expiry, nil} {
		require.NoError(t, s.UpsertPermission(&models.UserPermission{
			UserID:         "u",
			KitID:          "k",
			PermissionType: models.PermissionCourseAccess,
			ExpiresAt:      e,
		}))
	}

	var count int64
	db.Model(&models.UserPermission{}).Count(&count)
	assert.EqualValues(t, 1, count)

	p, err := s.GetPermission("u", "k", models.PermissionCourseAccess)
	require.NoError(t, err)
	assert.Nil(t, p.ExpiresAt, "last upsert wins")
}

func TestUpsertPermissionSeparateKeys(t *testing.T) {
	s, db := newStore(t)

	require.NoError(t, s.UpsertPermission(&models.UserPermission{
		UserID: "u", KitID: "k", PermissionType: models.PermissionCourseAccess,
	}))
	require.NoError(t, s.UpsertPermission(&models.UserPermission{
		UserID: "u", KitID: "k", PermissionType: models.PermissionCustomCourseCreation,
	}))

	var count int64
	db.Model(&models.UserPermission{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestUpsertProgressByKey(t *testing.T) {
	s, db := newStore(t)

	completed := time.Now()
	require.NoError(t, s.UpsertProgress(&models.LessonProgress{
		UserID: "u", LessonID: "l", CourseID: "c",
		CourseType: models.CourseTypeOfficial,
		Status:     models.ProgressInProgress,
	}))
	require.NoError(t, s.UpsertProgress(&models.LessonProgress{
		UserID: "u", LessonID: "l", CourseID: "c",
		CourseType:  models.CourseTypeOfficial,
		Status:      models.ProgressCompleted,
		CompletedAt: &completed,
	}))

	var count int64
	db.Model(&models.LessonProgress{}).Count(&count)
	assert.EqualValues(t, 1, count)

	p, err := s.GetProgress("u", "l")
	require.NoError(t, err)
	assert.Equal(t, models.ProgressCompleted, p.Status)
	require.NotNil(t, p.CompletedAt)
}

func TestListLessonsOrdersByIndex(t *testing.T) {
	s, _ := newStore(t)

	for _, idx := range []int{2, 0, 1} {
		require.NoError(t, s.CreateLesson(&models.Lesson{
			CourseID: "c", CourseType: models.CourseTypeOfficial,
			Title: "L", OrderIndex: idx, IsPublished: true,
		}))
	}

	lessons, err := s.ListLessons("c", models.CourseTypeOfficial, true)
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	for i, l := range lessons {
		assert.Equal(t, i, l.OrderIndex)
	}
}

func TestGetKitByAccessCode(t *testing.T) {
	s, _ := newStore(t)

	kit := models.Kit{Name: "Starter", AccessCode: "ABC-123"}
	require.NoError(t, s.CreateKit(&kit))
	noCode := models.Kit{Name: "No code"}
	require.NoError(t, s.CreateKit(&noCode))

	found, err := s.GetKitByAccessCode("ABC-123")
	require.NoError(t, err)
	assert.Equal(t, kit.ID, found.ID)

	// An empty code must never match kits without one.
	_, err = s.GetKitByAccessCode("")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
