// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// EnvJSON names the environment variable whose JSON overrides the TOML file.
const EnvJSON = "CORPSITE_CONFIG_JSON"

// Defaults applied by validate when a value is left unset.
const (
	DefaultShutDownTime  = 5
	DefaultPageSize      = 5
	DefaultNotifyTimeout = 10 * time.Second
	DefaultDownloadDelay = time.Second
	DefaultDisplayWindow = 5 * time.Second
	DefaultSlotTTL       = 30 * time.Minute
	DefaultSessionExpiry = 8 * time.Hour
)

// ReadConfig reads main.toml from the directory path (default ./etc/),
// applies the JSON override from EnvJSON and validates the result.
func ReadConfig(path string) (Config, error) {
	var c Config

	if path == "" {
		path = "./etc/"
	}

	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	if _, err := toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if override := os.Getenv(EnvJSON); override != "" {
		if err := json.Unmarshal([]byte(override), &c); err != nil {
			return Config{}, errors.Wrap(err, "failed to decode "+EnvJSON)
		}
	}

	if err := validate(&c); err != nil {
		return c, err
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	if err := toml.NewEncoder(&buffer).Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate rejects unusable settings and fills in defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch strings.ToLower(c.DB.GormEngine) {
	case "":
		c.DB.GormEngine = "sqlite"
	case "mysql", "postgres", "sqlite":
	default:
		return errors.Wrapf(ErrInvalidGormEngine, "%s: got %q", invalidErrMessage, c.DB.GormEngine)
	}

	if c.Admin.Username != "" && c.Admin.Password == "" {
		return errors.Wrap(ErrAdminPasswordEmpty, invalidErrMessage)
	}

	d := &c.Download
	if d.NotifyTimeout < 0 || d.DownloadDelay < 0 || d.DisplayWindow < 0 || d.SlotTTL < 0 {
		return errors.Wrap(ErrNegativeDuration, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = DefaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = DefaultSessionExpiry
	}

	if d.PageSize < 1 {
		d.PageSize = DefaultPageSize
	}

	if d.NotifyTimeout == 0 {
		d.NotifyTimeout = DefaultNotifyTimeout
	}

	if d.DownloadDelay == 0 {
		d.DownloadDelay = DefaultDownloadDelay
	}

	if d.DisplayWindow == 0 {
		d.DisplayWindow = DefaultDisplayWindow
	}

	if d.SlotTTL == 0 {
		d.SlotTTL = DefaultSlotTTL
	}

	return nil
}
