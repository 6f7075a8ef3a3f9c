package role

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpsite/corpsite/internal/auth"
	"github.com/corpsite/corpsite/internal/permission"
	"github.com/corpsite/corpsite/internal/web/handler/handlertest"
	"github.com/corpsite/corpsite/internal/web/session"
)

type fixture struct {
	t     *testing.T
	app   *fiber.App
	auth  *auth.Service
	roles *permission.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := handlertest.NewDB(t)
	handlertest.InitSession()

	repo := permission.NewMemoryRepository()

	roles, err := permission.NewService(repo, nil)
	require.NoError(t, err)
	require.NoError(t, roles.Seed(context.Background()))

	authService, err := auth.NewService(db, repo)
	require.NoError(t, err)

	app := handlertest.NewApp()
	app.Use(auth.AddPermissionsToLocals(authService))
	app.Get("/as/:id", func(c *fiber.Ctx) error {
		id, _ := strconv.ParseUint(c.Params("id"), 10, 64)
		return session.Login(c, session.User{ID: id, Username: "tester"})
	})

	var s Service
	s.Init(app, handlertest.NewConfig(), db, authService, roles)

	return &fixture{t: t, app: app, auth: authService, roles: roles}
}

// login creates a user holding the named seeded role and returns its cookie.
func (f *fixture) login(roleName string) string {
	f.t.Helper()

	role := f.role(roleName)

	user, err := f.auth.CreateUser(context.Background(), roleName+"-user", roleName+"@example.com", "pw", role.ID)
	require.NoError(f.t, err)

	resp := handlertest.Do(f.t, f.app, http.MethodGet, "/as/"+strconv.FormatUint(user.ID, 10), nil, "")

	return handlertest.SessionCookie(resp, "")
}

func (f *fixture) role(name string) permission.Role {
	f.t.Helper()

	all, err := f.roles.Roles(context.Background())
	require.NoError(f.t, err)

	for _, r := range all {
		if r.Name == name {
			return r
		}
	}

	f.t.Fatalf("role %q not found", name)

	return permission.Role{}
}

func (f *fixture) count() int {
	all, err := f.roles.Roles(context.Background())
	require.NoError(f.t, err)

	return len(all)
}

func TestList(t *testing.T) {
	f := setup(t)

	resp := handlertest.Do(t, f.app, http.MethodGet, Path, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = handlertest.Do(t, f.app, http.MethodGet, Path+"?expand=1", nil, f.login("Viewer"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, TemplateList, resp.Body)
}

func TestCreate(t *testing.T) {
	f := setup(t)
	cookie := f.login("Super Admin")
	before := f.count()

	form := url.Values{
		"name":        {"  Auditor "},
		"description": {"Reads tenders"},
		"perm":        {"tenders.view", "dashboard.view"},
	}

	resp := handlertest.Do(t, f.app, http.MethodPost, Path, form, cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, Path, resp.Header.Get("Location"))
	require.Equal(t, before+1, f.count())

	created := f.role("Auditor")
	assert.Equal(t, permission.DefaultColor, created.Color)
	assert.Equal(t, 0, created.UserCount)
	assert.Equal(t, 2, created.Permissions.Count())
	assert.True(t, created.Permissions.Has(permission.SectionTenders, permission.ActionView))
}

func TestCreate_Invalid(t *testing.T) {
	f := setup(t)
	cookie := f.login("Super Admin")
	before := f.count()

	tests := []struct {
		name string
		form url.Values
	}{
		{"blank name", url.Values{"name": {"   "}, "description": {"x"}}},
		{"blank description", url.Values{"name": {"x"}, "description": {""}}},
		{"bad color", url.Values{"name": {"x"}, "description": {"x"}, "color": {"chartreuse"}}},
		{"unknown permission", url.Values{"name": {"x"}, "description": {"x"}, "perm": {"billing.view"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := handlertest.Do(t, f.app, http.MethodPost, Path, tt.form, cookie)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, MsgInvalidForm, resp.Body)
			assert.Equal(t, before, f.count())
		})
	}
}

func TestCreate_Forbidden(t *testing.T) {
	f := setup(t)

	resp := handlertest.Do(t, f.app, http.MethodPost, Path,
		url.Values{"name": {"x"}, "description": {"y"}}, f.login("Viewer"))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUpdate_KeepsIdentity(t *testing.T) {
	f := setup(t)
	cookie := f.login("Super Admin")

	admin := f.role("Administrator")

	form := url.Values{
		"name":        {"Admins"},
		"description": {"Renamed"},
		"color":       {"teal"},
		"perm":        {"settings.edit"},
	}

	resp := handlertest.Do(t, f.app, http.MethodPost, Path+"/"+strconv.FormatUint(admin.ID, 10), form, cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	got, err := f.roles.Role(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admins", got.Name)
	assert.Equal(t, permission.ColorTeal, got.Color)
	assert.Equal(t, 1, got.Permissions.Count())
	assert.Equal(t, admin.UserCount, got.UserCount)
	assert.True(t, got.IsSystem)
}

func TestEdit(t *testing.T) {
	f := setup(t)
	cookie := f.login("Super Admin")

	resp := handlertest.Do(t, f.app, http.MethodGet, Path+"/"+strconv.FormatUint(f.role("Viewer").ID, 10)+"/edit", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, TemplateForm, resp.Body)

	resp = handlertest.Do(t, f.app, http.MethodGet, Path+"/42/edit", nil, cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	cookie := f.login("Super Admin")
	before := f.count()

	system := f.role("Super Admin")

	resp := handlertest.Do(t, f.app, http.MethodPost, Path+"/"+strconv.FormatUint(system.ID, 10)+"/delete", nil, cookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, MsgSystemRole, resp.Body)
	assert.Equal(t, before, f.count())

	hr := f.role("HR Manager")

	resp = handlertest.Do(t, f.app, http.MethodPost, Path+"/"+strconv.FormatUint(hr.ID, 10)+"/delete", nil, cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, before-1, f.count())

	_, err := f.roles.Role(context.Background(), hr.ID)
	require.ErrorIs(t, err, permission.ErrRoleNotFound)
}

func TestToggle(t *testing.T) {
	f := setup(t)
	before := f.count()

	form := url.Values{
		"name":    {"Draft"},
		"perm":    {"pages.view"},
		"op":      {OpColumn},
		"action":  {"view"},
		"section": {""},
	}

	resp := handlertest.Do(t, f.app, http.MethodPost, Path+"/toggle", form, f.login("Viewer"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, TemplateForm, resp.Body)
	assert.Equal(t, before, f.count())
}

func TestFormInputOperation(t *testing.T) {
	tests := []struct {
		in                  formInput
		op, section, action string
	}{
		{formInput{Toggle: "section:pages"}, OpSection, "pages", ""},
		{formInput{Toggle: "column::edit"}, OpColumn, "", "edit"},
		{formInput{Toggle: "all"}, OpSelectAll, "", ""},
		{formInput{Op: OpCell, Section: "media", Action: "view"}, OpCell, "media", "view"},
	}

	for _, tt := range tests {
		op, section, action := tt.in.operation()
		assert.Equal(t, tt.op, op)
		assert.Equal(t, tt.section, section)
		assert.Equal(t, tt.action, action)
	}
}

func TestApplyOp(t *testing.T) {
	partial := func() permission.Matrix {
		return permission.Matrix{
			permission.SectionPages:   permission.NewActionSet(permission.ActionView),
			permission.SectionTenders: permission.FullSet,
		}
	}

	tests := []struct {
		name      string
		op        string
		section   string
		action    string
		wantCount int
		wantErr   bool
	}{
		{"cell on", OpCell, "media", "edit", 6, false},
		{"cell off", OpCell, "pages", "view", 4, false},
		{"section partial fills", OpSection, "pages", "", 8, false},
		{"section full clears", OpSection, "tenders", "", 1, false},
		{"column adds where missing", OpColumn, "", "view", 10, false},
		{"column not full adds", OpColumn, "", "delete", 11, false},
		{"select all", OpSelectAll, "", "", permission.MaxCount(), false},
		{"clear all", OpClearAll, "", "", 0, false},
		{"unknown section", OpCell, "billing", "view", 5, true},
		{"unknown action", OpColumn, "", "publish", 5, true},
		{"unknown op", "flip", "pages", "view", 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := partial()
			err := applyOp(&m, tt.op, tt.section, tt.action)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantCount, m.Count())
		})
	}
}

func TestColumnToggleClearsFullColumn(t *testing.T) {
	m := permission.NewMatrix()
	require.NoError(t, applyOp(&m, OpColumn, "", "edit"))
	assert.True(t, m.ColumnFull(permission.ActionEdit))

	require.NoError(t, applyOp(&m, OpColumn, "", "edit"))
	assert.Zero(t, m.Count())
}

func TestRows(t *testing.T) {
	viewer := permission.Role{ID: 9, Name: "Viewer", Permissions: permission.DefaultRoles()[5].Permissions}

	collapsed := rows([]permission.Role{viewer}, 0)[0]
	assert.Len(t, collapsed.Tags, 4)
	assert.Equal(t, 3, collapsed.HiddenTags)
	assert.False(t, collapsed.Expanded)

	expanded := rows([]permission.Role{viewer}, 9)[0]
	assert.Len(t, expanded.Tags, 7)
	assert.Zero(t, expanded.HiddenTags)
	assert.Equal(t, 25, expanded.Percentage)
}

func TestNewMatrixView(t *testing.T) {
	m := permission.Matrix{permission.SectionDashboard: permission.FullSet}
	v := newMatrixView(m)

	require.Len(t, v.Rows, len(permission.Sections()))
	require.Len(t, v.Columns, len(permission.Actions()))
	assert.Equal(t, permission.StateAll, v.Rows[0].State)
	assert.Equal(t, permission.StateNone, v.Rows[1].State)
	assert.Equal(t, "dashboard.view", v.Rows[0].Cells[0].Key)
	assert.True(t, v.Rows[0].Cells[0].Checked)
	assert.False(t, v.Columns[0].Full)
	assert.Equal(t, 4, v.Count)
	assert.Equal(t, 14, v.Percentage)
}
