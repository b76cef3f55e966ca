// Package logging configures the process-wide zerolog logger used by the
// bitpack command. Library packages never log.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Environment variables overriding the profile defaults.
const (
	EnvLogLevel     = "BITPACK_LOG_LEVEL"
	EnvLogTimestamp = "BITPACK_LOG_TIMESTAMP"
	EnvLogNoColor   = "BITPACK_LOG_NOCOLOR"
)

// Profile selects the default level and timestamp setting.
type Profile int

const (
	// ProfileRuntime logs at info with timestamps.
	ProfileRuntime Profile = iota
	// ProfileTest logs at debug without timestamps.
	ProfileTest
)

// Config describes a console logger.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	Out       io.Writer
}

var (
	configureOnce sync.Once
	mu            sync.RWMutex
	logger        = zerolog.Nop()
)

// ConfigureRuntime configures the process logger for the command.
func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

// ConfigureTests configures the process logger for tests.
func ConfigureTests() {
	Configure(ProfileTest)
}

// Configure installs the process logger for profile. Only the first call has
// an effect; environment variables override the profile defaults.
func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		applyEnvOverrides(&cfg)

		mu.Lock()
		logger = New(cfg)
		mu.Unlock()
	})
}

// Logger returns the process logger. Before Configure it discards everything.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return logger
}

// SetLevel changes the level of the process logger.
func SetLevel(level zerolog.Level) {
	mu.Lock()
	logger = logger.Level(level)
	mu.Unlock()
}

// New builds a console logger from cfg. A nil Out writes to stderr.
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	w := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    cfg.NoColor,
		TimeFormat: time.RFC3339,
	}
	if !cfg.Timestamp {
		w.PartsExclude = []string{zerolog.TimestampFieldName}
	}

	ctx := zerolog.New(w).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}

	return ctx.Logger()
}

func defaultConfig(profile Profile) Config {
	cfg := Config{Out: os.Stderr}
	switch profile {
	case ProfileTest:
		cfg.Level = zerolog.DebugLevel
		cfg.Timestamp = false
	default:
		cfg.Level = zerolog.InfoLevel
		cfg.Timestamp = true
	}

	return cfg
}

// EnvLevel returns the level named by BITPACK_LOG_LEVEL, if it is set to a
// known level.
func EnvLevel() (zerolog.Level, bool) {
	return ParseLevel(os.Getenv(EnvLogLevel))
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := EnvLevel(); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// report false.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}

	return v, true
}
