// Package role stores permission roles with gorm.
package role

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/corpsite/corpsite/internal/db/models"
	"github.com/corpsite/corpsite/internal/permission"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Repository implements permission.Repository on top of the roles and
// role_permissions tables.
type Repository struct {
	db *gorm.DB
}

var _ permission.Repository = (*Repository)(nil)

// New returns a Repository using db.
func New(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Repository{db: db}, nil
}

// List returns all roles in creation order.
func (r *Repository) List(ctx context.Context) ([]permission.Role, error) {
	var rows []models.Role

	err := r.db.WithContext(ctx).
		Preload("Permissions").
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	out := make([]permission.Role, 0, len(rows))

	for i := range rows {
		role, err := toRole(&rows[i])
		if err != nil {
			return nil, err
		}

		out = append(out, role)
	}

	return out, nil
}

// Get returns the role with id or permission.ErrRoleNotFound.
func (r *Repository) Get(ctx context.Context, id uint64) (permission.Role, error) {
	var row models.Role

	err := r.db.WithContext(ctx).Preload("Permissions").First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return permission.Role{}, permission.ErrRoleNotFound
	}

	if err != nil {
		return permission.Role{}, fmt.Errorf("failed to load role %d: %w", id, err)
	}

	return toRole(&row)
}

// Create inserts the role and its grants in one transaction.
func (r *Repository) Create(ctx context.Context, role permission.Role) error {
	row := fromRole(role)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Permissions").Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}

		return insertGrants(tx, row.Permissions)
	})
}

// Update replaces the role's fields and its complete set of grants.
func (r *Repository) Update(ctx context.Context, role permission.Role) error {
	row := fromRole(role)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Role{}).Where("id = ?", row.ID).Updates(map[string]any{
			"name":        row.Name,
			"description": row.Description,
			"color":       row.Color,
			"user_count":  row.UserCount,
			"is_system":   row.IsSystem,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update role %d: %w", row.ID, res.Error)
		}

		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.Role{}).Where("id = ?", row.ID).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to check role %d: %w", row.ID, err)
			}

			if n == 0 {
				return permission.ErrRoleNotFound
			}
		}

		if err := tx.Where("role_id = ?", row.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear grants of role %d: %w", row.ID, err)
		}

		return insertGrants(tx, row.Permissions)
	})
}

// Delete removes the role and its grants.
func (r *Repository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to delete grants of role %d: %w", id, err)
		}

		res := tx.Delete(&models.Role{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete role %d: %w", id, res.Error)
		}

		if res.RowsAffected == 0 {
			return permission.ErrRoleNotFound
		}

		return nil
	})
}

// CountUsers returns how many users hold each role.
func CountUsers(ctx context.Context, db *gorm.DB) (map[uint64]int, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []struct {
		RoleID uint64
		Total  int
	}

	err := db.WithContext(ctx).Model(&models.User{}).
		Select("role_id, count(*) as total").
		Group("role_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count users per role: %w", err)
	}

	out := make(map[uint64]int, len(rows))
	for _, row := range rows {
		out[row.RoleID] = row.Total
	}

	return out, nil
}

func insertGrants(tx *gorm.DB, grants []models.RolePermission) error {
	if len(grants) == 0 {
		return nil
	}

	if err := tx.Create(&grants).Error; err != nil {
		return fmt.Errorf("failed to store grants: %w", err)
	}

	return nil
}

func fromRole(role permission.Role) models.Role {
	row := models.Role{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Color:       string(role.Color),
		UserCount:   role.UserCount,
		IsSystem:    role.IsSystem,
	}

	for _, key := range role.Permissions.Keys() {
		section, action, _ := permission.ParseKey(key)
		row.Permissions = append(row.Permissions, models.RolePermission{
			RoleID:  role.ID,
			Section: string(section),
			Action:  string(action),
		})
	}

	return row
}

func toRole(row *models.Role) (permission.Role, error) {
	keys := make([]string, 0, len(row.Permissions))
	for _, p := range row.Permissions {
		keys = append(keys, permission.Key(permission.Section(p.Section), permission.Action(p.Action)))
	}

	matrix, err := permission.ParseMatrix(keys)
	if err != nil {
		return permission.Role{}, fmt.Errorf("role %d has an invalid grant: %w", row.ID, err)
	}

	return permission.Role{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Permissions: matrix,
		UserCount:   row.UserCount,
		Color:       permission.Color(row.Color),
		IsSystem:    row.IsSystem,
	}, nil
}
