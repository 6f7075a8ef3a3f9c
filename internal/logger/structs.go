package logger

// Console configures logging to stdout and stderr.
type Console struct {
	Enabled bool `toml:"enabled"`
	// Pretty switches from JSON lines to zerolog's human readable ConsoleWriter.
	Pretty bool `toml:"pretty"`
}

// Rotation configures one lumberjack rotated file.
type Rotation struct {
	Name       string `toml:"name"`
	MaxSize    int    `toml:"maxSize"` // megabytes
	MaxBackups int    `toml:"maxBackups"`
	MaxAge     int    `toml:"maxAge"` // days
}

// File configures file based logging, one rotated file per level group.
type File struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	Access Rotation `toml:"access"`
	Error  Rotation `toml:"error"`
	Warn   Rotation `toml:"warn"`
	Info   Rotation `toml:"info"`
	Trace  Rotation `toml:"trace"`
}

// Log is the logger configuration.
type Log struct {
	Level string `toml:"level"` // trace, debug, info, warn, error
	Env   string `toml:"env"`

	// AccessLogToConsole also writes the HTTP access log to stdout when Console is enabled.
	AccessLogToConsole bool `toml:"accessLogToConsole"`
	ReportCaller       bool `toml:"reportCaller"`
	SkipCheckAlive     bool `toml:"skipCheckAlive"`

	AppName     string `toml:"appName"`
	ServiceName string `toml:"serviceName"`

	Console Console `toml:"console"`
	File    File    `toml:"file"`
}
