// Package dashboard provides the back-office landing page: server
// performance, download request activity and the role overview.
package dashboard

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/corpsite/corpsite/internal/auth"
	"github.com/corpsite/corpsite/internal/config"
	"github.com/corpsite/corpsite/internal/db/controller/downloadrequest"
	"github.com/corpsite/corpsite/internal/db/models"
	"github.com/corpsite/corpsite/internal/permission"
	"github.com/corpsite/corpsite/internal/sysload"
	"github.com/corpsite/corpsite/internal/web/handler"
	"github.com/corpsite/corpsite/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"

	defaultTimeout = 5 * time.Second
)

// RoleSummary is a row of the role overview.
type RoleSummary struct {
	Name       string
	Color      permission.Color
	Grants     int
	Percentage int
	IsSystem   bool
}

// Data represents the complete dashboard data.
type Data struct {
	Load       sysload.Snapshot
	LoadError  string
	Requests   downloadrequest.Stats
	Recent     []models.DownloadRequest
	Roles      []RoleSummary
	RoleCount  int
	RenderedAt time.Time
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	db    *gorm.DB
	roles *permission.Service

	// Load reads the server figures. Init defaults it to the local host.
	Load sysload.Reader
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, roles *permission.Service) {
	if app == nil || cfg == nil || db == nil || roles == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.roles = roles

	if s.Load == nil {
		s.Load = sysload.NewHost()
	}

	// register routes with permission checks
	app.Get(Path,
		auth.RequirePermission(authService, permission.SectionDashboard, permission.ActionView),
		s.Get,
	)
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	matrix, _ := c.Locals(auth.LocalsPermissions).(permission.Matrix)

	nav := navigation.NewContext("Dashboard", "dashboard", "dashboard").
		AddBreadcrumb("Home", Path, false).
		AddBreadcrumb("Dashboard", Path, true).
		WithMenu(matrix)

	ctx, cancel := context.WithTimeout(c.UserContext(), defaultTimeout)
	defer cancel()

	data := Data{RenderedAt: time.Now()}

	snap, err := s.Load.Read(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read server load")

		data.LoadError = err.Error()
	}

	data.Load = snap

	if data.Requests, err = downloadrequest.Summary(ctx, s.db, data.RenderedAt); err != nil {
		log.Error().Err(err).Msg("failed to summarize download requests")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load download requests")
	}

	if data.Recent, err = downloadrequest.Recent(ctx, s.db, downloadrequest.DefaultRecentLimit); err != nil {
		log.Error().Err(err).Msg("failed to list download requests")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load download requests")
	}

	roles, err := s.roles.Roles(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list roles")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load roles")
	}

	data.RoleCount = len(roles)
	data.Roles = summarize(roles)

	log.Debug().
		Str("load", string(snap.Level)).
		Int64("requests", data.Requests.Total).
		Int("roles", data.RoleCount).
		Msg("dashboard rendered")

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

func summarize(roles []permission.Role) []RoleSummary {
	out := make([]RoleSummary, 0, len(roles))

	for _, r := range roles {
		out = append(out, RoleSummary{
			Name:       r.Name,
			Color:      r.Color,
			Grants:     r.Permissions.Count(),
			Percentage: r.Permissions.Percentage(),
			IsSystem:   r.IsSystem,
		})
	}

	return out
}
