// Package logger sets up the global zerolog logger from configuration.
package logger

import (
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelWriter routes each event to a writer chosen by its level:
// trace, warn, error and above, everything else to Info.
type LevelWriter struct {
	io.Writer
	Error io.Writer
	Warn  io.Writer
	Info  io.Writer
	Trace io.Writer
}

// WriteLevel implements zerolog.LevelWriter.
func (lw *LevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	var w io.Writer

	switch {
	case l == zerolog.Disabled:
		return 0, nil
	case l == zerolog.TraceLevel:
		w = lw.Trace
	case l == zerolog.WarnLevel:
		w = lw.Warn
	case l > zerolog.WarnLevel:
		w = lw.Error
	default:
		w = lw.Info
	}

	if w == nil {
		return len(p), nil
	}

	return w.Write(p) //nolint:wrapcheck
}

// Init replaces the global logger. With neither console nor file enabled
// nothing is written.
func Init(cfg Log) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return errors.Wrapf(err, "log level %q is not supported", cfg.Level)
	}

	if cfg.ServiceName == "" {
		return ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return ErrAppNameIsEmpty
	}

	stack := level == zerolog.TraceLevel
	if stack {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
	}

	zerolog.SetGlobalLevel(level)
	zerolog.ErrorHandler = ErrorHandler

	var writers []io.Writer

	if cfg.Console.Enabled {
		writers = append(writers, NewConsoleWriter(cfg.Console))
	}

	if cfg.File.Enabled {
		if fw := newLevelFiles(cfg.File); fw != nil {
			writers = append(writers, fw)
		}
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Hook(NewPrometheusHook(cfg.ServiceName)).
		With().
		Timestamp().
		Str("app", cfg.AppName)

	if cfg.Env != "" {
		ctx = ctx.Str("env", cfg.Env)
	}

	switch {
	case cfg.ReportCaller && stack:
		ctx = ctx.Stack()
	case cfg.ReportCaller:
		ctx = ctx.Caller()
	}

	log.Logger = ctx.Logger()

	return nil
}

// Rotate returns a lumberjack writer for r inside dir.
func Rotate(dir string, r Rotation) io.Writer {
	return &lumberjack.Logger{
		Filename:   path.Join(dir, r.Name),
		MaxSize:    r.MaxSize,
		MaxAge:     r.MaxAge,
		MaxBackups: r.MaxBackups,
	}
}

// EnsureDir creates the log directory when one is configured.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}

	return errors.Wrap(os.MkdirAll(dir, 0o750), "can't create log directory") //nolint:mnd
}

func newLevelFiles(cfg File) io.Writer {
	if err := EnsureDir(cfg.Path); err != nil {
		log.Error().Err(err).Str("path", cfg.Path).Send()
		return nil
	}

	return &LevelWriter{
		Error: Rotate(cfg.Path, cfg.Error),
		Warn:  Rotate(cfg.Path, cfg.Warn),
		Info:  Rotate(cfg.Path, cfg.Info),
		Trace: Rotate(cfg.Path, cfg.Trace),
	}
}

// NewConsoleWriter sends info and debug to stdout and the rest to stderr.
func NewConsoleWriter(cfg Console) io.Writer {
	out := func(w io.Writer) io.Writer {
		if !cfg.Pretty {
			return w
		}

		return zerolog.ConsoleWriter{Out: w, TimeFormat: zerolog.TimeFieldFormat}
	}

	return &LevelWriter{
		Error: out(os.Stderr),
		Warn:  out(os.Stderr),
		Info:  out(os.Stdout),
		Trace: out(os.Stderr),
	}
}
