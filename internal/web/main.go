package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/corpsite/corpsite/internal/auth"
	"github.com/corpsite/corpsite/internal/catalog"
	"github.com/corpsite/corpsite/internal/config"
	"github.com/corpsite/corpsite/internal/db/controller/resource"
	"github.com/corpsite/corpsite/internal/db/controller/role"
	fiberlogger "github.com/corpsite/corpsite/internal/logger/adapter/fiber"
	"github.com/corpsite/corpsite/internal/notify"
	"github.com/corpsite/corpsite/internal/permission"
	"github.com/corpsite/corpsite/internal/request"
	rolehandler "github.com/corpsite/corpsite/internal/web/handler/admin/role"
	userhandler "github.com/corpsite/corpsite/internal/web/handler/admin/user"
	"github.com/corpsite/corpsite/internal/web/handler/dashboard"
	"github.com/corpsite/corpsite/internal/web/handler/document"
	"github.com/corpsite/corpsite/internal/web/handler/login"
	"github.com/corpsite/corpsite/internal/web/handler/logout"
	"github.com/corpsite/corpsite/internal/web/session"
)

const (
	// CheckAlivePath answers 200 while the service accepts traffic.
	CheckAlivePath = "/checkalive"

	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
	roles        *permission.Service
	slots        *request.Slots
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for a termination signal and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether checkalive answers 200.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// New creates a new web service with the given configuration. The session
// store must be initialized before requests are served.
func New(cfg *config.Config, db *gorm.DB) (*Service, error) {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	roleRepo, err := role.New(db)
	if err != nil {
		return nil, fmt.Errorf("role repository: %w", err)
	}

	roles, err := permission.NewService(roleRepo, nil)
	if err != nil {
		return nil, fmt.Errorf("role service: %w", err)
	}

	authService, err := auth.NewService(db, roleRepo)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	store, err := resource.New(db)
	if err != nil {
		return nil, fmt.Errorf("resource store: %w", err)
	}

	slots := request.NewSlots(request.Deps{
		Notifier: notify.NewHTTPNotifier(cfg.Download.NotifyURL, cfg.Download.NotifyTimeout),
		Timing: request.Timing{
			DownloadDelay: cfg.Download.DownloadDelay,
			DisplayWindow: cfg.Download.DisplayWindow,
		},
	}, cfg.Download.SlotTTL)

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          newTemplateEngine(cfg),
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlogger.New(fiberlogger.Config{Log: cfg.Log, CheckAliveURI: CheckAlivePath}))

	if cfg.Webserver.CookieEncryptionKey != "" {
		app.Use(encryptcookie.New(encryptcookie.Config{Key: cfg.Webserver.CookieEncryptionKey}))
	}

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
		roles:       roles,
		slots:       slots,
	}
	service.alive.Store(true)

	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	// back-office login guard
	app.Use(AuthMiddleware)

	// Add permissions to fiber.Locals middleware (after auth)
	app.Use(auth.AddPermissionsToLocals(authService))

	// init handlers (they register their own routes with permission checks)
	if err = login.Handler.Init(app, cfg, db, authService); err != nil {
		return nil, fmt.Errorf("login handler: %w", err)
	}

	logout.Handler.Init(app, cfg)
	dashboard.Handler.Init(app, cfg, db, authService, roles)
	rolehandler.Handler.Init(app, cfg, db, authService, roles)
	userhandler.Handler.Init(app, cfg, db, authService, roles)
	document.Handler.Init(app, cfg, db, store, slots)

	// the public site starts at the tender catalog
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(document.Path(catalog.KindTender))
	})

	return service, nil
}

func newTemplateEngine(cfg *config.Config) *html.Engine {
	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	// Add template helper functions
	templateEngine.AddFunc("iterate", func(count int) []int {
		result := make([]int, count)
		for i := range result {
			result[i] = i
		}

		return result
	})
	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("sub", func(a, b int) int {
		return a - b
	})
	templateEngine.AddFunc("pathEscape", url.PathEscape)
	templateEngine.AddFunc("hasAction", func(actions []catalog.Action, a string) bool {
		return slices.Contains(actions, catalog.Action(a))
	})
	templateEngine.AddFunc("mib", func(b uint64) string {
		return fmt.Sprintf("%.0f MiB", float64(b)/(1<<20)) //nolint:mnd
	})
	templateEngine.AddFunc("pct", func(f float64) string {
		return fmt.Sprintf("%.1f%%", f)
	})
	templateEngine.AddFunc("siteTitle", func() string {
		return cfg.Title
	})
	templateEngine.AddFunc("safeURL", func(s string) template.URL {
		return template.URL(s) //nolint:gosec
	})

	return templateEngine
}

// sessionConfig derives the session settings from the webserver config.
func sessionConfig(cfg *config.Config, storage fiber.Storage) session.Config {
	return session.Config{
		Storage: storage,
		Expiry:  cfg.Webserver.Session.ExpiryTime,
		Secure:  !cfg.DevMode,
	}
}

// InitSession initializes the session store for the web service.
func InitSession(cfg *config.Config, storage fiber.Storage) {
	session.Init(sessionConfig(cfg, storage))
}
