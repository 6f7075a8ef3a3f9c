package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterIDs struct {
	next uint64
	err  error
}

func (c *counterIDs) NextID() (uint64, error) {
	if c.err != nil {
		return 0, c.err
	}

	c.next++

	return c.next, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	svc, err := NewService(NewMemoryRepository(), &counterIDs{})
	require.NoError(t, err)
	require.NoError(t, svc.Seed(context.Background()))

	return svc
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil, nil)
	require.ErrorIs(t, err, ErrRepositoryNil)
}

func TestSeedOnlyOnce(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.Seed(ctx))

	roles, err := svc.Roles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, len(DefaultRoles()))
}

func TestCreateRole(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	perms := NewMatrix()
	perms.ToggleCell(SectionTenders, ActionView)

	role, err := svc.CreateRole(ctx, Form{
		Name:        "  Auditor ",
		Description: "Reads tenders",
		Permissions: perms,
	})
	require.NoError(t, err)

	assert.NotZero(t, role.ID)
	assert.Equal(t, "Auditor", role.Name)
	assert.Equal(t, 0, role.UserCount)
	assert.Equal(t, DefaultColor, role.Color)
	assert.False(t, role.IsSystem)
	assert.Equal(t, []string{"tenders.view"}, role.Permissions.Keys())

	// the stored matrix is not shared with the form
	perms.SelectAll()

	stored, err := svc.Role(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Permissions.Count())
}

func TestCreateRoleValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	before, err := svc.Roles(ctx)
	require.NoError(t, err)

	_, err = svc.CreateRole(ctx, Form{Name: "   ", Description: "", Color: "magenta"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "description")
	assert.Contains(t, verr.Fields, "color")

	after, err := svc.Roles(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before), "nothing is saved on validation failure")
}

func TestCreateRoleIDFailure(t *testing.T) {
	svc, err := NewService(NewMemoryRepository(), &counterIDs{err: errors.New("clock moved back")})
	require.NoError(t, err)

	_, err = svc.CreateRole(context.Background(), Form{Name: "x", Description: "y"})
	require.Error(t, err)
}

func TestUpdateRoleKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	roles, err := svc.Roles(ctx)
	require.NoError(t, err)

	system := roles[0]
	require.True(t, system.IsSystem)

	updated, err := svc.UpdateRole(ctx, system.ID, Form{
		Name:        "Root",
		Description: "Renamed",
		Color:       ColorTeal,
		Permissions: NewMatrix(),
	})
	require.NoError(t, err)

	assert.Equal(t, system.ID, updated.ID)
	assert.Equal(t, system.UserCount, updated.UserCount)
	assert.True(t, updated.IsSystem)
	assert.Equal(t, "Root", updated.Name)
	assert.Equal(t, ColorTeal, updated.Color)
	assert.Equal(t, 0, updated.Permissions.Count())

	_, err = svc.UpdateRole(ctx, 999999, Form{Name: "a", Description: "b"})
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestDeleteRole(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	roles, err := svc.Roles(ctx)
	require.NoError(t, err)

	t.Run("system role is kept", func(t *testing.T) {
		err := svc.DeleteRole(ctx, roles[0].ID)
		require.ErrorIs(t, err, ErrSystemRole)

		after, err := svc.Roles(ctx)
		require.NoError(t, err)
		assert.Equal(t, roles, after)
	})

	t.Run("custom role is removed", func(t *testing.T) {
		last := roles[len(roles)-1]
		require.False(t, last.IsSystem)

		require.NoError(t, svc.DeleteRole(ctx, last.ID))

		_, err := svc.Role(ctx, last.ID)
		require.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("unknown role", func(t *testing.T) {
		require.ErrorIs(t, svc.DeleteRole(ctx, 424242), ErrRoleNotFound)
	})
}

func TestDuplicateNamesAllowed(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateRole(ctx, Form{Name: "Viewer", Description: "again"})
	require.NoError(t, err)
}
