package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"
)

// User is the local volunteer record. Identity fields are populated at
// registration and refreshed by the profile sync worker; TotalPoints and
// MonthlyPoints are denormalized caches owned by the points service and
// recomputed from the ledger on every award.
type User struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service
	Username       string `gorm:"index;not null" json:"username"`
	Email          string `json:"email,omitempty"`
	Role           string `gorm:"type:varchar(16);default:'volunteer'" json:"role"`
	Department     string `json:"department,omitempty"`

	TotalPoints   int `gorm:"default:0" json:"total_points"`
	MonthlyPoints int `gorm:"default:0" json:"monthly_points"`

	// Volunteers are never hard-deleted, only deactivated.
	IsActive bool `gorm:"default:true" json:"is_active"`

	Timestamps
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
