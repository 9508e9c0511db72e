package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProgressNotStarted = "not_started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// LessonProgress tracks one user's state on one lesson. A missing row means
// not_started; CompletedAt is set on the first transition into completed and
// never changed afterwards.
type LessonProgress struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	UserID      string     `gorm:"uniqueIndex:idx_user_lesson;index:idx_user_course;not null" json:"user_id"`
	LessonID    string     `gorm:"uniqueIndex:idx_user_lesson;not null" json:"lesson_id"`
	CourseID    string     `gorm:"index:idx_user_course;not null" json:"course_id"`
	CourseType  string     `gorm:"index:idx_user_course;not null" json:"course_type"`
	Status      string     `gorm:"default:not_started" json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	TimeSpent   int        `json:"time_spent"` // seconds
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *LessonProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
