// Package dsn builds data source names for the supported database engines.
package dsn

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/corpsite/corpsite/internal/config"
)

const (
	// EngineMySQL selects gorm.io/driver/mysql.
	EngineMySQL = "mysql"
	// EnginePostgres selects gorm.io/driver/postgres.
	EnginePostgres = "postgres"
	// EngineSQLite selects github.com/glebarez/sqlite.
	EngineSQLite = "sqlite"
)

// ErrUnknownEngine is returned for an unsupported DB.GormEngine value.
var ErrUnknownEngine = errors.New("unknown gorm engine")

// Create builds the DSN for cfg.DB.GormEngine.
func Create(cfg *config.Config) (string, error) {
	db := cfg.DB

	switch strings.ToLower(db.GormEngine) {
	case EngineMySQL:
		return MySQL(db), nil
	case EnginePostgres:
		return Postgres(db), nil
	case EngineSQLite, "":
		return SQLite(db), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, db.GormEngine)
	}
}

// MySQL returns a go-sql-driver DSN, e.g. user:pass@tcp(host:3306)/name?parseTime=true.
func MySQL(db config.DB) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		db.Extras,
	)
}

// Postgres returns a postgres:// URL; Extras is appended as the query string.
func Postgres(db config.DB) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     "/" + db.Name,
		RawQuery: db.Extras,
	}

	return u.String()
}

// SQLite returns the database file path. Name ":memory:" keeps everything in memory.
func SQLite(db config.DB) string {
	name := db.Name
	if name == "" {
		name = "corpsite.db"
	}

	if db.Extras == "" {
		return name
	}

	return name + "?" + db.Extras
}
