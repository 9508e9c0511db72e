package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PermissionCourseAccess         = "course_access"
	PermissionCustomCourseCreation = "custom_course_creation"
)

const (
	PaymentMethodPurchase       = "purchase"
	PaymentMethodAdminGrant     = "admin_grant"
	PaymentMethodCodeRedemption = "code_redemption"

	PaymentStatusCompleted = "completed"
)

// UserPermission is the authoritative entitlement record. At most one row
// exists per (user, kit, permission type); grants upsert by that key.
type UserPermission struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	UserID         string     `gorm:"uniqueIndex:idx_user_kit_perm;not null" json:"user_id"`
	KitID          string     `gorm:"uniqueIndex:idx_user_kit_perm;not null" json:"kit_id"`
	PermissionType string     `gorm:"uniqueIndex:idx_user_kit_perm;not null" json:"permission_type"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"` // nil = no expiry
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (p *UserPermission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Purchase is the append-only audit trail of kit acquisitions. It is never
// consulted for access control and never mutated after insert.
type Purchase struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	UserID        string    `gorm:"index;not null" json:"user_id"`
	KitID         string    `gorm:"index;not null" json:"kit_id"`
	Amount        float64   `json:"amount"`
	Currency      string    `gorm:"default:USD" json:"currency"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	CompletedAt   time.Time `json:"completed_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
