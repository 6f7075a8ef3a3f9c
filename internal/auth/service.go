package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/corpsite/corpsite/internal/db/models"
	"github.com/corpsite/corpsite/internal/permission"
)

// Service authenticates users and resolves their permissions.
type Service struct {
	db    *gorm.DB
	roles permission.Repository
	now   func() time.Time
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, roles permission.Repository) (*Service, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if roles == nil {
		return nil, permission.ErrRepositoryNil
	}

	return &Service{db: db, roles: roles, now: time.Now}, nil
}

// Authenticate checks username and password and records the login time.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	user.LastLoginAt = &now

	if err = s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		log.Warn().Err(err).Uint64("user_id", user.ID).Msg("failed to record login time")
	}

	return &user, nil
}

// CreateUser creates an active local user holding roleID.
func (s *Service) CreateUser(ctx context.Context, username, email, password string, roleID uint64) (*models.User, error) {
	var existing models.User

	err := s.db.WithContext(ctx).Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return nil, ErrUserNameOrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Active:   true,
		Username: username,
		Email:    email,
		Password: hash,
		RoleID:   roleID,
	}

	if err = s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// SetActive enables or disables a user.
func (s *Service) SetActive(ctx context.Context, userID uint64, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", userID, res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Permissions returns the matrix of the user's role. Unknown or inactive
// users get an empty matrix.
func (s *Service) Permissions(ctx context.Context, userID uint64) (permission.Matrix, error) {
	var user models.User

	err := s.db.WithContext(ctx).Select("id", "active", "role_id").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return permission.NewMatrix(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	if !user.Active {
		return permission.NewMatrix(), nil
	}

	role, err := s.roles.Get(ctx, user.RoleID)
	if errors.Is(err, permission.ErrRoleNotFound) {
		return permission.NewMatrix(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load role of user %d: %w", userID, err)
	}

	return role.Permissions, nil
}

// HasPermission reports whether the user may take action on section.
func (s *Service) HasPermission(ctx context.Context, userID uint64, section permission.Section, action permission.Action) (bool, error) {
	m, err := s.Permissions(ctx, userID)
	if err != nil {
		return false, err
	}

	return m.Has(section, action), nil
}
