// Package user provides the back-office account screens of the admin area.
package user

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/corpsite/corpsite/internal/auth"
	"github.com/corpsite/corpsite/internal/config"
	"github.com/corpsite/corpsite/internal/db/controller/role"
	"github.com/corpsite/corpsite/internal/db/models"
	"github.com/corpsite/corpsite/internal/permission"
	"github.com/corpsite/corpsite/internal/validation"
	"github.com/corpsite/corpsite/internal/web/handler"
	"github.com/corpsite/corpsite/internal/web/handler/dashboard"
	"github.com/corpsite/corpsite/internal/web/navigation"
	"github.com/corpsite/corpsite/internal/web/session"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "admin/users"

	// TemplateList is the template for listing users.
	TemplateList = "admin/user/list"
	// TemplateForm is the template for creating/updating a user.
	TemplateForm = "admin/user/form"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25

	// MsgInvalidForm is shown when a user form fails validation.
	MsgInvalidForm = "Please correct the highlighted errors"
	// MsgSelfDelete is shown when users try to delete their own account.
	MsgSelfDelete = "You cannot delete your own account."
	// MsgSelfDisable is shown when users try to disable their own account.
	MsgSelfDisable = "You cannot disable your own account."
)

var fieldLabels = map[string]string{ //nolint:gochecknoglobals
	"username":  "Username",
	"email":     "Email",
	"firstname": "First name",
	"lastname":  "Last name",
	"password":  "Password",
	"role_id":   "Role",
}

// formInput is the posted user form. An empty password keeps the current one.
type formInput struct {
	Username  string `form:"username"  validate:"required,min=3,max=100"`
	Email     string `form:"email"     validate:"required,basic_email,max=255"`
	FirstName string `form:"firstname" validate:"max=100"`
	LastName  string `form:"lastname"  validate:"max=100"`
	Password  string `form:"password"  validate:"omitempty,min=8,max=128"`
	Active    bool   `form:"active"`
	RoleID    uint64 `form:"role_id"   validate:"required"`
}

func (in *formInput) trim() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
}

// Row is a user as shown in the list.
type Row struct {
	User  models.User
	Role  permission.Role
	Self  bool
	Known bool // the role still exists
}

// RoleOption is an entry of the role select and the role filter.
type RoleOption struct {
	ID    uint64
	Name  string
	Users int
}

// Service provides CRUD operations for users.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	roles       *permission.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, roles *permission.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil || roles == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService
	s.roles = roles
	s.validator = validation.New()

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

// List shows users with search, a role filter and simple pagination.
func (s *Service) List(c *fiber.Ctx) error {
	return s.renderList(c, fiber.StatusOK, "")
}

// New shows the creation form.
func (s *Service) New(c *fiber.Ctx) error {
	return s.renderForm(c, fiber.StatusOK, 0, formInput{Active: true}, nil)
}

// Create adds a local user.
func (s *Service) Create(c *fiber.Ctx) error {
	in, fieldErrs, err := s.parseForm(c)
	if err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, 0, in, fieldErrs)
	}

	if in.Password == "" {
		return s.renderForm(c, fiber.StatusBadRequest, 0, in, map[string]string{"password": "Password is required"})
	}

	ctx := c.UserContext()

	user, err := s.authService.CreateUser(ctx, in.Username, in.Email, in.Password, in.RoleID)
	if errors.Is(err, auth.ErrUserNameOrEmailExists) {
		return s.renderForm(c, fiber.StatusBadRequest, 0, in, map[string]string{"username": "Username or email is already taken"})
	}

	if err != nil {
		log.Error().Err(err).Str("username", in.Username).Msg("failed to create user")
		return s.renderForm(c, fiber.StatusInternalServerError, 0, in, map[string]string{"": "Failed to create user"})
	}

	err = s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"active":     in.Active,
	}).Error
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to store user details")
	}

	log.Info().Uint64("user_id", user.ID).Str("by", currentUser(c).Username).Msg("user created via admin")

	return c.Redirect(Path)
}

// Edit shows the edit form for a user.
func (s *Service) Edit(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Redirect(Path)
	}

	var user models.User
	if err := s.db.WithContext(c.UserContext()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Redirect(Path)
		}

		log.Error().Err(err).Uint64("user_id", id).Msg("failed to load user")

		return s.renderList(c, fiber.StatusInternalServerError, "Failed to load user")
	}

	in := formInput{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Active:    user.Active,
		RoleID:    user.RoleID,
	}

	return s.renderForm(c, fiber.StatusOK, id, in, nil)
}

// Update saves a user. The password changes only when a new one is posted.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Redirect(Path)
	}

	in, fieldErrs, err := s.parseForm(c)
	if err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, id, in, fieldErrs)
	}

	if id == currentUser(c).ID && !in.Active {
		return s.renderForm(c, fiber.StatusBadRequest, id, in, map[string]string{"active": MsgSelfDisable})
	}

	ctx := c.UserContext()

	var user models.User
	if err = s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Redirect(Path)
		}

		log.Error().Err(err).Uint64("user_id", id).Msg("failed to load user")

		return s.renderForm(c, fiber.StatusInternalServerError, id, in, map[string]string{"": "Failed to load user"})
	}

	var taken int64

	err = s.db.WithContext(ctx).Model(&models.User{}).
		Where("id <> ? AND (username = ? OR email = ?)", id, in.Username, in.Email).
		Count(&taken).Error
	if err != nil {
		log.Error().Err(err).Uint64("user_id", id).Msg("failed to check user uniqueness")
		return s.renderForm(c, fiber.StatusInternalServerError, id, in, map[string]string{"": "Failed to update user"})
	}

	if taken > 0 {
		return s.renderForm(c, fiber.StatusBadRequest, id, in, map[string]string{"username": "Username or email is already taken"})
	}

	user.Username = in.Username
	user.Email = in.Email
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Active = in.Active
	user.RoleID = in.RoleID

	if in.Password != "" {
		if user.Password, err = models.HashPassword(in.Password); err != nil {
			log.Error().Err(err).Uint64("user_id", id).Msg("failed to hash password")
			return s.renderForm(c, fiber.StatusInternalServerError, id, in, map[string]string{"": "Failed to update user"})
		}
	}

	if err = s.db.WithContext(ctx).Omit("Role").Save(&user).Error; err != nil {
		log.Error().Err(err).Uint64("user_id", id).Msg("failed to update user")
		return s.renderForm(c, fiber.StatusInternalServerError, id, in, map[string]string{"": "Failed to update user"})
	}

	log.Info().Uint64("user_id", id).Str("by", currentUser(c).Username).Msg("user updated via admin")

	return c.Redirect(Path)
}

// Delete removes a user. The logged in user cannot delete itself.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Redirect(Path)
	}

	if id == currentUser(c).ID {
		return s.renderList(c, fiber.StatusBadRequest, MsgSelfDelete)
	}

	res := s.db.WithContext(c.UserContext()).Delete(&models.User{}, id)
	if res.Error != nil {
		log.Error().Err(res.Error).Uint64("user_id", id).Msg("failed to delete user")
		return s.renderList(c, fiber.StatusInternalServerError, "Failed to delete user")
	}

	if res.RowsAffected > 0 {
		log.Info().Uint64("user_id", id).Str("by", currentUser(c).Username).Msg("user deleted via admin")
	}

	return c.Redirect(Path)
}

func (s *Service) parseForm(c *fiber.Ctx) (formInput, map[string]string, error) {
	var in formInput

	if err := c.BodyParser(&in); err != nil {
		return in, nil, err //nolint:wrapcheck
	}

	in.trim()

	if err := s.validator.Struct(in); err != nil {
		return in, validation.Fields(err, fieldLabels), err //nolint:wrapcheck
	}

	if _, err := s.roles.Role(c.UserContext(), in.RoleID); err != nil {
		return in, map[string]string{"role_id": "Please choose a role"}, err //nolint:wrapcheck
	}

	return in, nil, nil
}

func (s *Service) renderList(c *fiber.Ctx, status int, errMsg string) error {
	nav := navigation.NewContext("Users", "users", "user").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Users", Path, true).
		WithMenu(currentMatrix(c))

	ctx := c.UserContext()

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	search := strings.TrimSpace(c.Query("search"))
	roleFilter, _ := strconv.ParseUint(c.Query("role"), 10, 64)

	var (
		users      []models.User
		totalCount int64
		tx         = s.db.WithContext(ctx).Model(&models.User{})
	)

	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like, like,
		)
	}

	if roleFilter > 0 {
		tx = tx.Where("role_id = ?", roleFilter)
	}

	if err := tx.Count(&totalCount).Error; err != nil {
		log.Error().Err(err).Msg("count users failed")
		return s.listFailed(c, nav, search)
	}

	totalPages := int((totalCount + DefaultPageSize - 1) / DefaultPageSize)
	if totalPages == 0 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * DefaultPageSize
	if err := tx.Order("username ASC").Limit(DefaultPageSize).Offset(offset).Find(&users).Error; err != nil {
		log.Error().Err(err).Msg("query users failed")
		return s.listFailed(c, nav, search)
	}

	options, byID, err := s.roleOptions(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load roles")
		return s.listFailed(c, nav, search)
	}

	self := currentUser(c).ID
	rows := make([]Row, 0, len(users))

	for _, u := range users {
		r, known := byID[u.RoleID]
		rows = append(rows, Row{User: u, Role: r, Known: known, Self: u.ID == self})
	}

	return c.Status(status).Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Users":      rows,
		"Roles":      options,
		"RoleFilter": roleFilter,
		"Search":     search,
		"Page":       page,
		"TotalItems": totalCount,
		"TotalPages": totalPages,
		"HasPrev":    page > 1,
		"HasNext":    page < totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
		"Error":      errMsg,
		"CanCreate":  auth.Can(c, permission.SectionUsers, permission.ActionCreate),
		"CanEdit":    auth.Can(c, permission.SectionUsers, permission.ActionEdit),
		"CanDelete":  auth.Can(c, permission.SectionUsers, permission.ActionDelete),
	}, handler.BaseLayout)
}

func (s *Service) listFailed(c *fiber.Ctx, nav *navigation.Context, search string) error {
	return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Error":      "Failed to load users",
		"Search":     search,
	}, handler.BaseLayout)
}

func (s *Service) renderForm(c *fiber.Ctx, status int, id uint64, in formInput, fieldErrs map[string]string) error {
	title, crumb := "New User", Path+"/new"
	if id != 0 {
		title, crumb = "Edit User", Path+"/"+strconv.FormatUint(id, 10)+"/edit"
	}

	nav := navigation.NewContext(title, "users", "user").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb(title, crumb, true).
		WithMenu(currentMatrix(c))

	options, _, err := s.roleOptions(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("failed to load roles")

		status = fiber.StatusInternalServerError
		fieldErrs = map[string]string{"": "Failed to load roles"}
	}

	errMsg := ""
	if msg, ok := fieldErrs[""]; ok {
		errMsg = msg
	} else if status == fiber.StatusBadRequest {
		errMsg = MsgInvalidForm
		if msg, ok := fieldErrs["active"]; ok {
			errMsg = msg
		}
	}

	in.Password = ""

	return c.Status(status).Render(TemplateForm, fiber.Map{
		"Navigation":  nav,
		"ID":          id,
		"IsCreate":    id == 0,
		"Form":        in,
		"Roles":       options,
		"FieldErrors": fieldErrs,
		"Error":       errMsg,
	}, handler.BaseLayout)
}

// roleOptions lists the roles with their user counts, and indexes them by id.
func (s *Service) roleOptions(ctx context.Context) ([]RoleOption, map[uint64]permission.Role, error) {
	roles, err := s.roles.Roles(ctx)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	counts, err := role.CountUsers(ctx, s.db)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	options := make([]RoleOption, 0, len(roles))
	byID := make(map[uint64]permission.Role, len(roles))

	for _, r := range roles {
		options = append(options, RoleOption{ID: r.ID, Name: r.Name, Users: counts[r.ID]})
		byID[r.ID] = r
	}

	return options, byID, nil
}

func currentUser(c *fiber.Ctx) session.User {
	u, _ := c.Locals(auth.LocalsUser).(session.User)
	return u
}

func currentMatrix(c *fiber.Ctx) permission.Matrix {
	m, _ := c.Locals(auth.LocalsPermissions).(permission.Matrix)
	return m
}

func parseID(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}
