package config

// DB holds the database configuration settings.
type DB struct {
	GormEngine string // mysql, postgres or sqlite
	Host       string
	Port       int
	User       string
	Password   string
	Name       string // database name, or the file for sqlite
	Extras     string // driver query string
}
