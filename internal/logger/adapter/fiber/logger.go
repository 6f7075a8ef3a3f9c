// Package fiber provides a zerolog access log middleware for fiber.
package fiber

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/corpsite/corpsite/internal/logger"
)

// HeaderPerformance carries the handler duration in seconds.
const HeaderPerformance = "X-Performance"

// Config of the access log middleware.
type Config struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Log decides where access lines are written.
	Log logger.Log

	// CacheControlError is set on responses the error handler could not render.
	CacheControlError string

	// CheckAliveURI is not logged when Log.SkipCheckAlive is set.
	CheckAliveURI string
}

// ConfigDefault is used when New is called without a config.
var ConfigDefault = Config{ //nolint:gochecknoglobals
	CacheControlError: "max-age=0",
	CheckAliveURI:     "/checkalive",
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return ConfigDefault
	}

	cfg := config[0]

	if cfg.CacheControlError == "" {
		cfg.CacheControlError = ConfigDefault.CacheControlError
	}

	if cfg.CheckAliveURI == "" {
		cfg.CheckAliveURI = ConfigDefault.CheckAliveURI
	}

	return cfg
}

// New returns the access log middleware. Errors returned by the chain are
// rendered by the app's error handler here so the logged status is final.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)
	access := zerolog.New(accessWriter(cfg.Log)).With().Timestamp().Logger().Level(zerolog.NoLevel)

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
				c.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		elapsed := time.Since(start).Seconds()
		c.Set(HeaderPerformance, strconv.FormatFloat(elapsed, 'f', 6, 64))

		if cfg.Log.SkipCheckAlive && c.Path() == cfg.CheckAliveURI {
			return nil
		}

		// c.Path and RequestURI are normalized by fasthttp, OriginalURL is not.
		event := access.Log().
			Str("IP", c.IP()).
			Int("status", c.Response().StatusCode()).
			Float64(HeaderPerformance, elapsed).
			Str("URI", c.OriginalURL()).
			Str("method", c.Method()).
			Bytes("host", c.Request().Host()).
			Str(fiber.HeaderXForwardedFor, c.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, c.Get(fiber.HeaderUserAgent)).
			Str(fiber.HeaderReferer, c.Get(fiber.HeaderReferer))

		if chainErr != nil {
			event.Err(chainErr)
		}

		event.Send()

		return nil
	}
}

func accessWriter(cfg logger.Log) io.Writer {
	var writers []io.Writer

	if cfg.File.Enabled {
		if err := logger.EnsureDir(cfg.File.Path); err != nil {
			log.Error().Err(err).Str("path", cfg.File.Path).Send()
		} else {
			writers = append(writers, logger.Rotate(cfg.File.Path, cfg.File.Access))
		}
	}

	if cfg.Console.Enabled && cfg.AccessLogToConsole {
		if cfg.Console.Pretty {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{zerolog.LevelFieldName},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	return zerolog.MultiLevelWriter(writers...)
}
