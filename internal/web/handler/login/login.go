package login

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/corpsite/corpsite/internal/auth"
	"github.com/corpsite/corpsite/internal/config"
	"github.com/corpsite/corpsite/internal/web/handler"
	"github.com/corpsite/corpsite/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// TemplateName is the login template.
	TemplateName = "login"

	// SuccessPath is where a successful login lands.
	SuccessPath = "/dashboard"
)

// Form is the login form.
type Form struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return errors.New("app, cfg, db or auth service is nil")
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	data, err := session.Read(c)
	if err == nil && data.LoggedIn() {
		return c.Redirect(SuccessPath)
	}

	return c.Render(TemplateName, s.view(""))
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return c.Render(TemplateName, s.view(ErrInvalidFormData.Error()))
	}

	form.Username = strings.TrimSpace(form.Username)

	user, err := s.authService.Authenticate(c.UserContext(), form.Username, form.Password)

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Warn().Str("username", form.Username).Str("ip", c.IP()).Msg("failed login")
		return c.Render(TemplateName, s.view(ErrInvalidCredentials.Error()))
	case errors.Is(err, auth.ErrUserAccountDisabled):
		log.Warn().Str("username", form.Username).Msg("login of disabled account")
		return c.Render(TemplateName, s.view(ErrAccountDisabled.Error()))
	case err != nil:
		log.Error().Err(err).Msg("failed to authenticate")
		return c.Render(TemplateName, s.view(ErrInternalServerError.Error()))
	}

	err = session.Login(c, session.User{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.DisplayName(),
		RoleID:   user.RoleID,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Render(TemplateName, s.view(ErrInternalServerError.Error()))
	}

	log.Info().Str("username", user.Username).Msg("user logged in")

	return c.Redirect(SuccessPath)
}

func (s *Service) view(errMsg string) fiber.Map {
	m := fiber.Map{"Title": s.cfg.Title}
	if errMsg != "" {
		m["error"] = errMsg
	}

	return m
}
