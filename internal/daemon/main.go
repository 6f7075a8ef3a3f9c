// Package daemon wires the database, the session storage and the web service.
package daemon

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/corpsite/corpsite/internal/config"
	"github.com/corpsite/corpsite/internal/db/dsn"
	"github.com/corpsite/corpsite/internal/db/models"
	"github.com/corpsite/corpsite/internal/web"
)

// SessionTable holds the fiber sessions on mysql and postgres.
const SessionTable = "sessions"

// ErrConfigNil is returned by New without a config.
var ErrConfigNil = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start serves until a termination signal arrives.
func (d *Daemon) Start() error {
	go func() {
		if err := d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port)); err != nil {
			log.Error().Err(err).Msg("web service stopped")
		}
	}()

	d.webService.WaitShutdown()

	return nil
}

// New opens and migrates the database, seeds it and builds the web service.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = db.AutoMigrate(models.All()...); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	if err = seed(cfg, db); err != nil {
		return nil, err
	}

	storage, err := SessionStorage(cfg)
	if err != nil {
		return nil, err
	}

	web.InitSession(cfg, storage)

	webService, err := web.New(cfg, db)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create web service")
	}

	return &Daemon{cfg: cfg, webService: webService}, nil
}

// OpenDB connects gorm with the driver matching cfg.DB.GormEngine.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	source, err := dsn.Create(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "invalid database settings")
	}

	var dialector gorm.Dialector

	switch strings.ToLower(cfg.DB.GormEngine) {
	case dsn.EngineMySQL:
		dialector = gormmysql.Open(source)
	case dsn.EnginePostgres:
		dialector = postgres.Open(source)
	default:
		dialector = sqlite.Open(source)
	}

	level := logger.Warn
	if cfg.DevMode {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect %s database", dialector.Name())
	}

	if dialector.Name() == dsn.EngineSQLite {
		// sqlite allows one writer; a second connection on ":memory:" is a new database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to access sql pool")
		}

		sqlDB.SetMaxOpenConns(1)
	}

	log.Info().Str("engine", dialector.Name()).Msg("database connected")

	return db, nil
}

// SessionStorage returns the shared session storage for the engine. sqlite
// keeps sessions in process memory.
func SessionStorage(cfg *config.Config) (fiber.Storage, error) {
	source, err := dsn.Create(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "invalid database settings")
	}

	switch strings.ToLower(cfg.DB.GormEngine) {
	case dsn.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: source,
			Table:         SessionTable,
		}), nil
	case dsn.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: source,
			Table:         SessionTable,
		}), nil
	default:
		return nil, nil
	}
}
