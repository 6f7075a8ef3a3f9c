package daemon

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/corpsite/corpsite/internal/catalog"
	"github.com/corpsite/corpsite/internal/config"
	"github.com/corpsite/corpsite/internal/db/controller/resource"
	"github.com/corpsite/corpsite/internal/db/controller/role"
	"github.com/corpsite/corpsite/internal/db/models"
	"github.com/corpsite/corpsite/internal/permission"
)

// ErrNoSuperAdmin is returned when no system role grants every permission.
var ErrNoSuperAdmin = errors.New("no system role with full permissions")

// seed fills an empty database with the default roles, the document catalog
// and the configured admin account.
func seed(cfg *config.Config, db *gorm.DB) error {
	ctx := context.Background()

	roleRepo, err := role.New(db)
	if err != nil {
		return errors.Wrap(err, "role repository")
	}

	roles, err := permission.NewService(roleRepo, nil)
	if err != nil {
		return errors.Wrap(err, "role service")
	}

	if err = roles.Seed(ctx); err != nil {
		return errors.Wrap(err, "failed to seed roles")
	}

	if _, err = resource.Seed(ctx, db, catalog.DefaultResources()); err != nil {
		return errors.Wrap(err, "failed to seed resources")
	}

	if cfg.Admin.Username == "" {
		return nil
	}

	var count int64
	if err = db.WithContext(ctx).Model(&models.User{}).Where("username = ?", cfg.Admin.Username).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to look up admin user")
	}

	if count > 0 {
		return nil
	}

	superAdmin, err := superAdminRole(ctx, roles)
	if err != nil {
		return err
	}

	hash, err := models.HashPassword(cfg.Admin.Password)
	if err != nil {
		return errors.Wrap(err, "failed to hash admin password")
	}

	admin := models.User{
		Active:   true,
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Password: hash,
		RoleID:   superAdmin.ID,
	}

	if err = db.WithContext(ctx).Create(&admin).Error; err != nil {
		return errors.Wrap(err, "failed to create admin user")
	}

	log.Warn().Str("username", admin.Username).Msg("created admin user, change its password")

	return nil
}

func superAdminRole(ctx context.Context, roles *permission.Service) (permission.Role, error) {
	list, err := roles.Roles(ctx)
	if err != nil {
		return permission.Role{}, errors.Wrap(err, "failed to list roles")
	}

	for _, r := range list {
		if r.IsSystem && r.Permissions.Count() == permission.MaxCount() {
			return r, nil
		}
	}

	return permission.Role{}, ErrNoSuperAdmin
}
