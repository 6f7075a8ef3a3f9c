package user

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/corpsite/corpsite/internal/auth"
	"github.com/corpsite/corpsite/internal/db/models"
	"github.com/corpsite/corpsite/internal/permission"
	"github.com/corpsite/corpsite/internal/web/handler/handlertest"
	"github.com/corpsite/corpsite/internal/web/session"
)

type fixture struct {
	t     *testing.T
	app   *fiber.App
	db    *gorm.DB
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

	return &fixture{t: t, app: app, db: db, auth: authService, roles: roles}
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

func (f *fixture) user(username, roleName string) *models.User {
	f.t.Helper()

	u, err := f.auth.CreateUser(context.Background(), username, username+"@example.com", "password1", f.role(roleName).ID)
	require.NoError(f.t, err)

	return u
}

// login returns the session cookie of u.
func (f *fixture) login(u *models.User) string {
	f.t.Helper()

	resp := handlertest.Do(f.t, f.app, http.MethodGet, "/as/"+strconv.FormatUint(u.ID, 10), nil, "")

	return handlertest.SessionCookie(resp, "")
}

func (f *fixture) find(username string) (models.User, bool) {
	f.t.Helper()

	var u models.User

	err := f.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		return u, false
	}

	return u, true
}

func userPath(u *models.User) string {
	return Path + "/" + strconv.FormatUint(u.ID, 10)
}

func TestList(t *testing.T) {
	f := setup(t)

	resp := handlertest.Do(t, f.app, http.MethodGet, Path, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	editor := f.login(f.user("editor", "Content Editor"))
	resp = handlertest.Do(t, f.app, http.MethodGet, Path, nil, editor)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	viewer := f.login(f.user("viewer", "Viewer"))

	for _, target := range []string{Path, Path + "?search=VIEW&page=3", Path + "?role=" + strconv.FormatUint(f.role("Viewer").ID, 10)} {
		resp = handlertest.Do(t, f.app, http.MethodGet, target, nil, viewer)
		assert.Equal(t, http.StatusOK, resp.StatusCode, target)
		assert.Equal(t, TemplateList, resp.Body, target)
	}
}

func TestCreate(t *testing.T) {
	f := setup(t)
	admin := f.login(f.user("root", "Super Admin"))
	hr := f.role("HR Manager")

	form := url.Values{
		"username":  {"  jdoe "},
		"email":     {"jdoe@example.com"},
		"firstname": {"Jane"},
		"lastname":  {"Doe"},
		"password":  {"s3cret-pass"},
		"role_id":   {strconv.FormatUint(hr.ID, 10)},
	}

	resp := handlertest.Do(t, f.app, http.MethodPost, Path, form, admin)
	require.Equal(t, http.StatusFound, resp.StatusCode, resp.Body)
	assert.Equal(t, Path, resp.Header.Get("Location"))

	created, ok := f.find("jdoe")
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", created.DisplayName())
	assert.Equal(t, hr.ID, created.RoleID)
	assert.False(t, created.Active, "unchecked box disables the account")
	assert.True(t, created.VerifyPassword("s3cret-pass"))
}

func TestCreate_Invalid(t *testing.T) {
	f := setup(t)
	admin := f.login(f.user("root", "Super Admin"))
	roleID := strconv.FormatUint(f.role("Viewer").ID, 10)

	valid := func() url.Values {
		return url.Values{
			"username": {"newbie"},
			"email":    {"newbie@example.com"},
			"password": {"long-enough"},
			"role_id":  {roleID},
			"active":   {"true"},
		}
	}

	tests := []struct {
		name   string
		change func(url.Values)
	}{
		{"short username", func(v url.Values) { v.Set("username", "ab") }},
		{"bad email", func(v url.Values) { v.Set("email", "not-an-email") }},
		{"short password", func(v url.Values) { v.Set("password", "short") }},
		{"missing password", func(v url.Values) { v.Del("password") }},
		{"missing role", func(v url.Values) { v.Del("role_id") }},
		{"unknown role", func(v url.Values) { v.Set("role_id", "999999") }},
		{"taken username", func(v url.Values) { v.Set("username", "root") }},
		{"taken email", func(v url.Values) { v.Set("email", "root@example.com") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid()
			tt.change(form)

			resp := handlertest.Do(t, f.app, http.MethodPost, Path, form, admin)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, MsgInvalidForm, resp.Body)

			_, ok := f.find("newbie")
			assert.False(t, ok)
		})
	}
}

func TestCreate_Forbidden(t *testing.T) {
	f := setup(t)
	viewer := f.login(f.user("viewer", "Viewer"))

	form := url.Values{"username": {"newbie"}, "email": {"newbie@example.com"}, "password": {"long-enough"}}

	resp := handlertest.Do(t, f.app, http.MethodPost, Path, form, viewer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEdit(t *testing.T) {
	f := setup(t)
	admin := f.login(f.user("root", "Super Admin"))
	other := f.user("other", "Viewer")

	resp := handlertest.Do(t, f.app, http.MethodGet, userPath(other)+"/edit", nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, TemplateForm, resp.Body)

	resp = handlertest.Do(t, f.app, http.MethodGet, Path+"/424242/edit", nil, admin)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, Path, resp.Header.Get("Location"))
}

func TestUpdate(t *testing.T) {
	f := setup(t)
	root := f.user("root", "Super Admin")
	admin := f.login(root)
	other := f.user("other", "Viewer")
	hr := f.role("HR Manager")

	form := url.Values{
		"username": {"other"},
		"email":    {"renamed@example.com"},
		"lastname": {"Smith"},
		"role_id":  {strconv.FormatUint(hr.ID, 10)},
		"active":   {"true"},
	}

	resp := handlertest.Do(t, f.app, http.MethodPost, userPath(other), form, admin)
	require.Equal(t, http.StatusFound, resp.StatusCode, resp.Body)

	updated, ok := f.find("other")
	require.True(t, ok)
	assert.Equal(t, "renamed@example.com", updated.Email)
	assert.Equal(t, hr.ID, updated.RoleID)
	assert.True(t, updated.VerifyPassword("password1"), "empty password keeps the old one")

	t.Run("new password", func(t *testing.T) {
		form.Set("password", "changed-pass")

		resp := handlertest.Do(t, f.app, http.MethodPost, userPath(other), form, admin)
		require.Equal(t, http.StatusFound, resp.StatusCode)

		updated, _ := f.find("other")
		assert.True(t, updated.VerifyPassword("changed-pass"))
	})

	t.Run("email of another user", func(t *testing.T) {
		form.Set("email", "root@example.com")

		resp := handlertest.Do(t, f.app, http.MethodPost, userPath(other), form, admin)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, MsgInvalidForm, resp.Body)
	})

	t.Run("own account stays active", func(t *testing.T) {
		self := url.Values{
			"username": {"root"},
			"email":    {"root@example.com"},
			"role_id":  {strconv.FormatUint(root.RoleID, 10)},
		}

		resp := handlertest.Do(t, f.app, http.MethodPost, userPath(root), self, admin)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, MsgSelfDisable, resp.Body)

		reloaded, _ := f.find("root")
		assert.True(t, reloaded.Active)
	})
}

func TestDelete(t *testing.T) {
	f := setup(t)
	root := f.user("root", "Super Admin")
	admin := f.login(root)
	other := f.user("other", "Viewer")

	resp := handlertest.Do(t, f.app, http.MethodPost, userPath(root)+"/delete", url.Values{}, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, MsgSelfDelete, resp.Body)

	_, ok := f.find("root")
	assert.True(t, ok)

	resp = handlertest.Do(t, f.app, http.MethodPost, userPath(other)+"/delete", url.Values{}, admin)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	_, ok = f.find("other")
	assert.False(t, ok)

	// deleting twice is a no-op
	resp = handlertest.Do(t, f.app, http.MethodPost, userPath(other)+"/delete", url.Values{}, admin)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}
