package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	KitTypeNormal       = "normal"
	KitTypeOrganization = "organization"
)

// Course kinds. Course IDs are only unique within a kind, so a lesson's
// parent is always the (CourseID, CourseType) pair.
const (
	CourseTypeOfficial = "official"
	CourseTypeCustom   = "custom"
)

const (
	ContentTypeText        = "text"
	ContentTypeVideo       = "video"
	ContentTypeInteractive = "interactive"
	ContentTypeQuiz        = "quiz"
	ContentTypeCode        = "code"
	ContentTypeComponent   = "component"
)

// Kit is a purchasable bundle that gates access to a set of courses.
type Kit struct {
	ID                  string    `gorm:"primaryKey;size:36" json:"id"`
	Name                string    `gorm:"not null" json:"name"`
	Theme               string    `json:"theme"`
	Level               int       `json:"level"`
	Description         string    `json:"description"`
	QRCode              string    `json:"qr_code,omitempty"`
	AccessCode          string    `gorm:"index" json:"-"`
	KitType             string    `gorm:"default:normal" json:"kit_type"` // normal, organization
	Price               float64   `json:"price"`
	PremiumUpgradePrice *float64  `json:"premium_upgrade_price,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (k *Kit) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}

type OfficialCourse struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	KitID             string    `gorm:"index;not null" json:"kit_id"`
	Title             string    `gorm:"not null" json:"title"`
	Description       string    `json:"description"`
	Theme             string    `json:"theme"`
	Level             int       `json:"level"`
	EstimatedDuration *int      `json:"estimated_duration,omitempty"` // minutes
	IsPublished       bool      `gorm:"default:false" json:"is_published"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (o *OfficialCourse) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// CustomCourse is authored by a user on top of a kit. Storefront visibility
// requires both IsPublished and IsPublic; the creator always sees their own.
type CustomCourse struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	CreatorID         string    `gorm:"index;not null" json:"creator_id"`
	KitID             string    `gorm:"index;not null" json:"kit_id"`
	Title             string    `gorm:"not null" json:"title"`
	Description       string    `json:"description"`
	IsPublic          bool      `gorm:"default:false" json:"is_public"`
	IsPublished       bool      `gorm:"default:false" json:"is_published"`
	Price             float64   `json:"price"`
	EstimatedDuration *int      `json:"estimated_duration,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (c *CustomCourse) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Lesson struct {
	ID                string         `gorm:"primaryKey;size:36" json:"id"`
	CourseID          string         `gorm:"index:idx_lesson_course;not null" json:"course_id"`
	CourseType        string         `gorm:"index:idx_lesson_course;not null" json:"course_type"` // official, custom
	Title             string         `gorm:"not null" json:"title"`
	ContentType       string         `gorm:"default:text" json:"content_type"`
	Content           datatypes.JSON `json:"content,omitempty"`   // ordered content blocks
	Component         string         `json:"component,omitempty"` // embedded-component reference
	ComponentProps    datatypes.JSON `json:"component_props,omitempty"`
	OrderIndex        int            `gorm:"default:0" json:"order_index"`
	EstimatedDuration *int           `json:"estimated_duration,omitempty"`
	IsPublished       bool           `gorm:"default:false" json:"is_published"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
