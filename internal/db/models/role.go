package models

import "time"

// Role is a stored permission bundle. Its grants live in RolePermission rows.
type Role struct {
	// ID is assigned by the application from a time ordered generator, not by the database.
	ID uint64 `gorm:"primaryKey;autoIncrement:false"`
	// Name is the display name; duplicates are allowed.
	Name string `gorm:"size:100;not null"`
	// Description explains what the role is for.
	Description string `gorm:"size:500;not null"`
	// Color is a palette token used to render the role badge.
	Color string `gorm:"size:20;not null;default:'blue'"`
	// UserCount is informational and shown on the role card.
	UserCount int `gorm:"not null;default:0"`
	// IsSystem marks roles that cannot be deleted.
	IsSystem bool `gorm:"default:false"`
	// Permissions are the granted section/action pairs, removed with the role.
	Permissions []RolePermission `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// CreatedAt is managed by GORM.
	CreatedAt time.Time
	// UpdatedAt is managed by GORM.
	UpdatedAt time.Time
}

// TableName overrides GORM's default table naming.
func (Role) TableName() string {
	return "roles"
}
