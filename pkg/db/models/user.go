package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// User represents the canonical identity entity. Buyers, vendors, and admins
// share the table; the platform commission account is a configured admin user.
type User struct {
	ID           uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string                   `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string                   `gorm:"column:password_hash;not null"`
	Name         string                   `gorm:"column:name;not null"`
	Role         enums.UserRole           `gorm:"column:role;type:user_role;not null"`
	Approval     enums.UserApprovalStatus `gorm:"column:approval_status;type:user_approval_status;not null;default:'pending'"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// BuyerCategoryApproval whitelists one product category for one buyer.
// Compliance routes a cart to manual review when any category lacks a row.
type BuyerCategoryApproval struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Category  string    `gorm:"column:category;type:text;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
