// Package store is the persistence adapter for the entitlement engine and the
// catalog. Every read distinguishes a missing row (ErrNotFound) from a failed
// query (ErrUnavailable); callers must never treat one as the other.
package store

import (
	"errors"

	"kitlab/backend/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrUnavailable is returned when the backing database failed to answer.
	// It wraps the driver error.
	ErrUnavailable = errors.New("store: unavailable")
)

type UserStore interface {
	GetUser(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(u *models.User) error
}

type KitStore interface {
	GetKit(id string) (*models.Kit, error)
	GetKitByAccessCode(code string) (*models.Kit, error)
	ListKits() ([]models.Kit, error)
	CreateKit(k *models.Kit) error
}

type OfficialCourseStore interface {
	GetOfficialCourse(id string) (*models.OfficialCourse, error)
	// ListOfficialCourses returns courses ordered by level. kitID narrows to
	// one kit; publishedOnly drops drafts.
	ListOfficialCourses(kitID string, publishedOnly bool) ([]models.OfficialCourse, error)
	CreateOfficialCourse(c *models.OfficialCourse) error
	SetOfficialCoursePublished(id string, published bool) error
}

type CustomCourseStore interface {
	GetCustomCourse(id string) (*models.CustomCourse, error)
	// ListPublicCustomCourses returns published+public courses, newest first.
	ListPublicCustomCourses(kitID string) ([]models.CustomCourse, error)
	ListCustomCoursesByCreator(creatorID string) ([]models.CustomCourse, error)
	CreateCustomCourse(c *models.CustomCourse) error
	UpdateCustomCourse(c *models.CustomCourse) error
}

type LessonStore interface {
	GetLesson(id string) (*models.Lesson, error)
	ListLessons(courseID, courseType string, publishedOnly bool) ([]models.Lesson, error)
	CreateLesson(l *models.Lesson) error
}

type PermissionStore interface {
	// GetPermission looks up the single row for the exact
	// (user, kit, permission type) key.
	GetPermission(userID, kitID, permissionType string) (*models.UserPermission, error)
	ListPermissions(userID, permissionType string) ([]models.UserPermission, error)
	// UpsertPermission writes the row for its key atomically: concurrent
	// upserts for the same key converge to one row.
	UpsertPermission(p *models.UserPermission) error
}

type PurchaseStore interface {
	InsertPurchase(p *models.Purchase) error
	ListPurchases(userID string) ([]models.Purchase, error)
}

type ProgressStore interface {
	GetProgress(userID, lessonID string) (*models.LessonProgress, error)
	ListCourseProgress(userID, courseID, courseType string) ([]models.LessonProgress, error)
	UpsertProgress(p *models.LessonProgress) error
}

// Store bundles every per-entity interface. The gorm implementation satisfies
// all of them; tests substitute single interfaces with doubles.
type Store interface {
	UserStore
	KitStore
	OfficialCourseStore
	CustomCourseStore
	LessonStore
	PermissionStore
	PurchaseStore
	ProgressStore
}
