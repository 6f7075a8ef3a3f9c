package permission

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/sony/sonyflake"

	"github.com/corpsite/corpsite/internal/validation"
)

// IDGenerator hands out unique role ids.
type IDGenerator interface {
	NextID() (uint64, error)
}

// NewIDGenerator returns a time ordered id generator. Hosts without a private
// IP address fall back to machine id 1.
func NewIDGenerator() IDGenerator {
	if sf := sonyflake.NewSonyflake(sonyflake.Settings{}); sf != nil {
		return sf
	}

	return sonyflake.NewSonyflake(sonyflake.Settings{
		MachineID: func() (uint16, error) { return 1, nil },
	})
}

// Service manages the role collection.
type Service struct {
	repo      Repository
	ids       IDGenerator
	validator *validator.Validate
}

// NewService creates a role service. A nil ids uses NewIDGenerator.
func NewService(repo Repository, ids IDGenerator) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	if ids == nil {
		ids = NewIDGenerator()
	}

	return &Service{
		repo:      repo,
		ids:       ids,
		validator: validation.New(),
	}, nil
}

// Roles lists all roles.
func (s *Service) Roles(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

// Role returns a single role.
func (s *Service) Role(ctx context.Context, id uint64) (Role, error) {
	return s.repo.Get(ctx, id)
}

// Validate checks a form without saving it.
func (s *Service) Validate(form Form) error {
	form = form.normalized()

	if err := s.validator.Struct(form); err != nil {
		return &ValidationError{Fields: validation.Fields(err, fieldLabels)}
	}

	return nil
}

// CreateRole validates the form and adds a new role with a fresh id and no users.
func (s *Service) CreateRole(ctx context.Context, form Form) (Role, error) {
	if err := s.Validate(form); err != nil {
		return Role{}, err
	}

	form = form.normalized()

	id, err := s.ids.NextID()
	if err != nil {
		return Role{}, fmt.Errorf("failed to generate role id: %w", err)
	}

	role := Role{
		ID:          id,
		Name:        form.Name,
		Description: form.Description,
		Permissions: form.Permissions.Clone(),
		UserCount:   0,
		Color:       form.Color,
	}

	if err = s.repo.Create(ctx, role); err != nil {
		return Role{}, fmt.Errorf("failed to create role: %w", err)
	}

	log.Info().Uint64("role_id", role.ID).Str("name", role.Name).Int("permissions", role.Permissions.Count()).
		Msg("role created")

	return role, nil
}

// UpdateRole replaces name, description, color and permissions of a role.
// Id, user count and the system flag are kept.
func (s *Service) UpdateRole(ctx context.Context, id uint64, form Form) (Role, error) {
	if err := s.Validate(form); err != nil {
		return Role{}, err
	}

	form = form.normalized()

	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return Role{}, err
	}

	role.Name = form.Name
	role.Description = form.Description
	role.Color = form.Color
	role.Permissions = form.Permissions.Clone()

	if err = s.repo.Update(ctx, role); err != nil {
		return Role{}, fmt.Errorf("failed to update role: %w", err)
	}

	log.Info().Uint64("role_id", role.ID).Str("name", role.Name).Int("permissions", role.Permissions.Count()).
		Msg("role updated")

	return role, nil
}

// DeleteRole removes a role. System roles are rejected with ErrSystemRole and
// the collection is left untouched.
func (s *Service) DeleteRole(ctx context.Context, id uint64) error {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if role.IsSystem {
		log.Warn().Uint64("role_id", id).Str("name", role.Name).Msg("refusing to delete system role")
		return ErrSystemRole
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	log.Info().Uint64("role_id", id).Str("name", role.Name).Msg("role deleted")

	return nil
}

// Seed stores DefaultRoles when the repository is empty.
func (s *Service) Seed(ctx context.Context) error {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	if len(roles) > 0 {
		return nil
	}

	for _, role := range DefaultRoles() {
		if role.ID, err = s.ids.NextID(); err != nil {
			return fmt.Errorf("failed to generate role id: %w", err)
		}

		if err = s.repo.Create(ctx, role); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
	}

	log.Info().Int("count", len(DefaultRoles())).Msg("seeded default roles")

	return nil
}
