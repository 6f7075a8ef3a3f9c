package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrInvalidGormEngine error if db.gormEngine is not mysql, postgres or sqlite.
	ErrInvalidGormEngine = errors.New("toml config db.gormEngine must be mysql, postgres or sqlite")

	// ErrAdminPasswordEmpty error if an admin username is configured without a password.
	ErrAdminPasswordEmpty = errors.New("toml config admin.password can not be empty when admin.username is set")

	// ErrNegativeDuration error if a download timing is negative.
	ErrNegativeDuration = errors.New("toml config download durations can not be negative")
)
