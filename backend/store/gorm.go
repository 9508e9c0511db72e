package store

import (
	"errors"
	"fmt"

	"kitlab/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm implements Store on top of a *gorm.DB.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// wrapErr maps gorm errors onto the store sentinels.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// --- users ---

func (s *Gorm) GetUser(id string) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}

func (s *Gorm) GetUserByEmail(email string) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "email = ?", email).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}

func (s *Gorm) CreateUser(u *models.User) error {
	return wrapErr(s.db.Create(u).Error)
}

// --- kits ---

func (s *Gorm) GetKit(id string) (*models.Kit, error) {
	var k models.Kit
	if err := s.db.First(&k, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &k, nil
}

func (s *Gorm) GetKitByAccessCode(code string) (*models.Kit, error) {
	var k models.Kit
	if err := s.db.First(&k, "access_code = ? AND access_code <> ''", code).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &k, nil
}

func (s *Gorm) ListKits() ([]models.Kit, error) {
	var kits []models.Kit
	if err := s.db.Order("level ASC").Find(&kits).Error; err != nil {
		return nil, wrapErr(err)
	}
	return kits, nil
}

func (s *Gorm) CreateKit(k *models.Kit) error {
	return wrapErr(s.db.Create(k).Error)
}

// --- official courses ---

func (s *Gorm) GetOfficialCourse(id string) (*models.OfficialCourse, error) {
	var c models.OfficialCourse
	if err := s.db.First(&c, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &c, nil
}

func (s *Gorm) ListOfficialCourses(kitID string, publishedOnly bool) ([]models.OfficialCourse, error) {
	q := s.db.Model(&models.OfficialCourse{})
	if kitID != "" {
		q = q.Where("kit_id = ?", kitID)
	}
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var courses []models.OfficialCourse
	if err := q.Order("level ASC").Find(&courses).Error; err != nil {
		return nil, wrapErr(err)
	}
	return courses, nil
}

func (s *Gorm) CreateOfficialCourse(c *models.OfficialCourse) error {
	return wrapErr(s.db.Create(c).Error)
}

func (s *Gorm) SetOfficialCoursePublished(id string, published bool) error {
	res := s.db.Model(&models.OfficialCourse{}).Where("id = ?", id).Update("is_published", published)
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- custom courses ---

func (s *Gorm) GetCustomCourse(id string) (*models.CustomCourse, error) {
	var c models.CustomCourse
	if err := s.db.First(&c, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &c, nil
}

func (s *Gorm) ListPublicCustomCourses(kitID string) ([]models.CustomCourse, error) {
	q := s.db.Where("is_published = ? AND is_public = ?", true, true)
	if kitID != "" {
		q = q.Where("kit_id = ?", kitID)
	}
	var courses []models.CustomCourse
	if err := q.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, wrapErr(err)
	}
	return courses, nil
}

func (s *Gorm) ListCustomCoursesByCreator(creatorID string) ([]models.CustomCourse, error) {
	var courses []models.CustomCourse
	err := s.db.Where("creator_id = ?", creatorID).Order("created_at DESC").Find(&courses).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return courses, nil
}

func (s *Gorm) CreateCustomCourse(c *models.CustomCourse) error {
	return wrapErr(s.db.Create(c).Error)
}

func (s *Gorm) UpdateCustomCourse(c *models.CustomCourse) error {
	return wrapErr(s.db.Save(c).Error)
}

// --- lessons ---

func (s *Gorm) GetLesson(id string) (*models.Lesson, error) {
	var l models.Lesson
	if err := s.db.First(&l, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &l, nil
}

func (s *Gorm) ListLessons(courseID, courseType string, publishedOnly bool) ([]models.Lesson, error) {
	q := s.db.Where("course_id = ? AND course_type = ?", courseID, courseType)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var lessons []models.Lesson
	if err := q.Order("order_index ASC").Find(&lessons).Error; err != nil {
		return nil, wrapErr(err)
	}
	return lessons, nil
}

func (s *Gorm) CreateLesson(l *models.Lesson) error {
	return wrapErr(s.db.Create(l).Error)
}

// --- permissions ---

func (s *Gorm) GetPermission(userID, kitID, permissionType string) (*models.UserPermission, error) {
	var p models.UserPermission
	err := s.db.First(&p, "user_id = ? AND kit_id = ? AND permission_type = ?",
		userID, kitID, permissionType).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return &p, nil
}

func (s *Gorm) ListPermissions(userID, permissionType string) ([]models.UserPermission, error) {
	var perms []models.UserPermission
	err := s.db.Where("user_id = ? AND permission_type = ?", userID, permissionType).
		Find(&perms).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return perms, nil
}

// UpsertPermission relies on the unique (user_id, kit_id, permission_type)
// index: ON CONFLICT updates expiry in place, so repeated grants for the same
// key never produce a second row.
func (s *Gorm) UpsertPermission(p *models.UserPermission) error {
	if p.ID != "" {
		return wrapErr(s.db.Save(p).Error)
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "kit_id"}, {Name: "permission_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"expires_at", "updated_at"}),
	}).Create(p).Error
	return wrapErr(err)
}

// --- purchases ---

func (s *Gorm) InsertPurchase(p *models.Purchase) error {
	return wrapErr(s.db.Create(p).Error)
}

func (s *Gorm) ListPurchases(userID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.db.Where("user_id = ?", userID).Order("completed_at DESC").Find(&purchases).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return purchases, nil
}

// --- progress ---

func (s *Gorm) GetProgress(userID, lessonID string) (*models.LessonProgress, error) {
	var p models.LessonProgress
	err := s.db.First(&p, "user_id = ? AND lesson_id = ?", userID, lessonID).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return &p, nil
}

func (s *Gorm) ListCourseProgress(userID, courseID, courseType string) ([]models.LessonProgress, error) {
	var rows []models.LessonProgress
	err := s.db.Where("user_id = ? AND course_id = ? AND course_type = ?",
		userID, courseID, courseType).Find(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return rows, nil
}

// UpsertProgress writes the row for its (user_id, lesson_id) key. A row that
// was already loaded keeps its primary key and is updated in place; a fresh
// row goes through ON CONFLICT so concurrent writers converge to one row.
func (s *Gorm) UpsertProgress(p *models.LessonProgress) error {
	if p.ID != "" {
		return wrapErr(s.db.Save(p).Error)
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "completed_at", "time_spent", "updated_at",
		}),
	}).Create(p).Error
	return wrapErr(err)
}
