package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User is a back-office account. Visitors requesting documents are not users.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Active users may log in.
	Active bool
	// Username is the unique login name.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the user's email address.
	Email string `gorm:"size:255;not null"`
	// Password is the Argon2id hash of the password.
	Password string `gorm:"size:255" json:"-"`
	// FirstName is the user's given name.
	FirstName string `gorm:"size:100"`
	// LastName is the user's family name.
	LastName string `gorm:"size:100"`
	// RoleID references the role whose permission matrix applies to this user.
	RoleID uint64 `gorm:"column:role_id;not null;index"`
	// Role is loaded on demand; roles in use cannot be removed at the database level.
	Role Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE" json:"-"`
	// LastLoginAt is updated on every successful login.
	LastLoginAt *time.Time
	// CreatedAt is managed by GORM.
	CreatedAt time.Time
	// UpdatedAt is managed by GORM.
	UpdatedAt time.Time
}

// TableName overrides GORM's default table naming.
func (User) TableName() string {
	return "users"
}

// DisplayName returns the full name, or the username when no name is set.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// HashPassword hashes a plaintext password with the default Argon2id parameters.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams) //nolint:wrapcheck
}

// VerifyPassword compares password with the stored hash in constant time.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Err(err).Str("username", u.Username).Msg("failed to verify password")
		return false
	}

	return match
}
