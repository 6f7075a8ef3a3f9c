// Package role provides the roles and permissions screens of the admin area.
package role

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/corpsite/corpsite/internal/auth"
	"github.com/corpsite/corpsite/internal/config"
	"github.com/corpsite/corpsite/internal/permission"
	"github.com/corpsite/corpsite/internal/web/handler"
	"github.com/corpsite/corpsite/internal/web/handler/dashboard"
	"github.com/corpsite/corpsite/internal/web/navigation"
	"github.com/corpsite/corpsite/internal/web/session"
)

const (
	// Path is the base path for role management.
	Path = handler.RootPath + "admin/roles"

	// TemplateList is the template for listing roles.
	TemplateList = "admin/role/list"
	// TemplateForm is the template for creating/updating a role.
	TemplateForm = "admin/role/form"

	// MsgSystemRole is shown when deleting a system role is attempted.
	MsgSystemRole = "System roles cannot be deleted."
	// MsgInvalidForm is shown when a role form fails validation.
	MsgInvalidForm = "Please correct the highlighted errors"
)

// Toggle operations of the permission matrix editor.
const (
	OpCell      = "cell"
	OpSection   = "section"
	OpColumn    = "column"
	OpSelectAll = "all"
	OpClearAll  = "none"
)

// formInput is the posted role form. Perms holds the checked "section.action" keys.
type formInput struct {
	Name        string   `form:"name"`
	Description string   `form:"description"`
	Color       string   `form:"color"`
	Perms       []string `form:"perm"`

	// matrix editor; Toggle is "op:section:action" as sent by the editor buttons
	ID      uint64 `form:"id"`
	Toggle  string `form:"toggle"`
	Op      string `form:"op"`
	Section string `form:"section"`
	Action  string `form:"action"`
}

func (in *formInput) operation() (op, section, action string) {
	if in.Toggle == "" {
		return in.Op, in.Section, in.Action
	}

	parts := strings.SplitN(in.Toggle, ":", 3) //nolint:mnd
	for len(parts) < 3 {                       //nolint:mnd
		parts = append(parts, "")
	}

	return parts[0], parts[1], parts[2]
}

// Service provides CRUD operations for roles.
type Service struct {
	handler.Service
	cfg   *config.Config
	db    *gorm.DB
	roles *permission.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, roles *permission.Service) {
	if app == nil || cfg == nil || db == nil || roles == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.roles = roles

	// Routes
	app.Get(Path,
		auth.RequirePermission(authService, permission.SectionUsers, permission.ActionView),
		s.List,
	)
	app.Get(Path+"/new",
		auth.RequirePermission(authService, permission.SectionUsers, permission.ActionCreate),
		s.New,
	)
	app.Post(Path,
		auth.RequirePermission(authService, permission.SectionUsers, permission.ActionCreate),
		s.Create,
	)
	app.Post(Path+"/toggle",
		auth.RequirePermission(authService, permission.SectionUsers, permission.ActionView),
		s.Toggle,
	)
	app.Get(Path+"/:id/edit",
		auth.RequirePermission(authService, permission.SectionUsers, permission.ActionEdit),
		s.Edit,
	)
	app.Post(Path+"/:id",
		auth.RequirePermission(authService, permission.SectionUsers, permission.ActionEdit),
		s.Update,
	)
	app.Post(Path+"/:id/delete",
		auth.RequirePermission(authService, permission.SectionUsers, permission.ActionDelete),
		s.Delete,
	)
}

// List shows all roles with their quick tags. ?expand=<id> shows every tag of that role.
func (s *Service) List(c *fiber.Ctx) error {
	return s.renderList(c, fiber.StatusOK, "")
}

// New shows the creation form with an empty matrix.
func (s *Service) New(c *fiber.Ctx) error {
	form := permission.Form{Color: permission.DefaultColor, Permissions: permission.NewMatrix()}
	return s.renderForm(c, fiber.StatusOK, 0, form, nil)
}

// Create adds a role.
func (s *Service) Create(c *fiber.Ctx) error {
	_, form, err := parseForm(c)
	if err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, 0, form, nil)
	}

	role, err := s.roles.CreateRole(c.UserContext(), form)
	if err != nil {
		return s.saveFailed(c, 0, form, err)
	}

	log.Info().Uint64("role_id", role.ID).Str("by", s.currentUser(c)).Msg("role created via admin")

	return c.Redirect(Path)
}

// Edit shows the edit form for a role.
func (s *Service) Edit(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Redirect(Path)
	}

	role, err := s.roles.Role(c.UserContext(), id)
	if errors.Is(err, permission.ErrRoleNotFound) {
		return c.Redirect(Path)
	}

	if err != nil {
		log.Error().Err(err).Uint64("role_id", id).Msg("failed to load role")
		return s.renderList(c, fiber.StatusInternalServerError, "Failed to load role")
	}

	return s.renderForm(c, fiber.StatusOK, id, permission.FormFromRole(role), nil)
}

// Update saves name, description, color and permissions of a role.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Redirect(Path)
	}

	_, form, err := parseForm(c)
	if err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, id, form, nil)
	}

	_, err = s.roles.UpdateRole(c.UserContext(), id, form)
	if errors.Is(err, permission.ErrRoleNotFound) {
		return c.Redirect(Path)
	}

	if err != nil {
		return s.saveFailed(c, id, form, err)
	}

	log.Info().Uint64("role_id", id).Str("by", s.currentUser(c)).Msg("role updated via admin")

	return c.Redirect(Path)
}

// Toggle applies one matrix editor operation to the posted form and shows
// the form again. Nothing is saved.
func (s *Service) Toggle(c *fiber.Ctx) error {
	in, form, err := parseForm(c)
	if err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, in.ID, form, nil)
	}

	op, section, action := in.operation()
	if err = applyOp(&form.Permissions, op, section, action); err != nil {
		log.Debug().Err(err).Str("op", op).Msg("ignoring matrix operation")
	}

	return s.renderForm(c, fiber.StatusOK, in.ID, form, nil)
}

// Delete removes a role. System roles are refused.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Redirect(Path)
	}

	err := s.roles.DeleteRole(c.UserContext(), id)

	switch {
	case errors.Is(err, permission.ErrSystemRole):
		return s.renderList(c, fiber.StatusForbidden, MsgSystemRole)
	case errors.Is(err, permission.ErrRoleNotFound):
		return c.Redirect(Path)
	case err != nil:
		log.Error().Err(err).Uint64("role_id", id).Msg("failed to delete role")
		return s.renderList(c, fiber.StatusInternalServerError, "Failed to delete role")
	}

	log.Info().Uint64("role_id", id).Str("by", s.currentUser(c)).Msg("role deleted via admin")

	return c.Redirect(Path)
}

func (s *Service) saveFailed(c *fiber.Ctx, id uint64, form permission.Form, err error) error {
	var verr *permission.ValidationError
	if errors.As(err, &verr) {
		return s.renderForm(c, fiber.StatusBadRequest, id, form, verr.Fields)
	}

	log.Error().Err(err).Uint64("role_id", id).Msg("failed to save role")

	return s.renderForm(c, fiber.StatusInternalServerError, id, form, map[string]string{"": "Failed to save role"})
}

func (s *Service) renderList(c *fiber.Ctx, status int, errMsg string) error {
	nav := navigation.NewContext("Roles & Permissions", "users", "role").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Roles", Path, true).
		WithMenu(currentMatrix(c))

	roles, err := s.roles.Roles(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("failed to list roles")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load roles",
		}, handler.BaseLayout)
	}

	expand, _ := strconv.ParseUint(c.Query("expand"), 10, 64)

	return c.Status(status).Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Roles":      rows(roles, expand),
		"Error":      errMsg,
		"CanCreate":  auth.Can(c, permission.SectionUsers, permission.ActionCreate),
		"CanEdit":    auth.Can(c, permission.SectionUsers, permission.ActionEdit),
		"CanDelete":  auth.Can(c, permission.SectionUsers, permission.ActionDelete),
	}, handler.BaseLayout)
}

func (s *Service) renderForm(c *fiber.Ctx, status int, id uint64, form permission.Form, fieldErrs map[string]string) error {
	title, crumb := "New Role", Path+"/new"
	if id != 0 {
		title, crumb = "Edit Role", Path+"/"+strconv.FormatUint(id, 10)+"/edit"
	}

	nav := navigation.NewContext(title, "users", "role").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Roles", Path, false).
		AddBreadcrumb(title, crumb, true).
		WithMenu(currentMatrix(c))

	if form.Permissions == nil {
		form.Permissions = permission.NewMatrix()
	}

	errMsg := ""
	if status == fiber.StatusBadRequest {
		errMsg = MsgInvalidForm
	} else if msg, ok := fieldErrs[""]; ok {
		errMsg = msg
	}

	return c.Status(status).Render(TemplateForm, fiber.Map{
		"Navigation":  nav,
		"ID":          id,
		"IsCreate":    id == 0,
		"Form":        form,
		"Matrix":      newMatrixView(form.Permissions),
		"Palette":     permission.Palette(),
		"FieldErrors": fieldErrs,
		"Error":       errMsg,
	}, handler.BaseLayout)
}

func (s *Service) currentUser(c *fiber.Ctx) string {
	u, _ := c.Locals(auth.LocalsUser).(session.User)
	return u.Username
}

func parseID(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

func parseForm(c *fiber.Ctx) (formInput, permission.Form, error) {
	var in formInput

	if err := c.BodyParser(&in); err != nil {
		return in, permission.Form{Permissions: permission.NewMatrix()}, err //nolint:wrapcheck
	}

	form := permission.Form{
		Name:        in.Name,
		Description: in.Description,
		Color:       permission.Color(in.Color),
	}

	m, err := permission.ParseMatrix(in.Perms)
	if err != nil {
		form.Permissions = permission.NewMatrix()
		return in, form, err //nolint:wrapcheck
	}

	form.Permissions = m

	return in, form, nil
}

func applyOp(m *permission.Matrix, op, section, action string) error {
	switch op {
	case OpSelectAll:
		m.SelectAll()
		return nil
	case OpClearAll:
		m.ClearAll()
		return nil
	case OpColumn:
		a, err := permission.ParseAction(action)
		if err != nil {
			return err //nolint:wrapcheck
		}

		m.ToggleColumn(a)

		return nil
	}

	sec, err := permission.ParseSection(section)
	if err != nil {
		return err //nolint:wrapcheck
	}

	switch op {
	case OpSection:
		m.ToggleSection(sec)
	case OpCell:
		a, err := permission.ParseAction(action)
		if err != nil {
			return err //nolint:wrapcheck
		}

		m.ToggleCell(sec, a)
	default:
		return errUnknownOp
	}

	return nil
}

func currentMatrix(c *fiber.Ctx) permission.Matrix {
	m, _ := c.Locals(auth.LocalsPermissions).(permission.Matrix)
	return m
}
