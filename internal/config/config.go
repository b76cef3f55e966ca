// Package config loads the bitpack command's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/arloliu/bitpack/eval"
	"github.com/arloliu/bitpack/format"
	"github.com/arloliu/bitpack/internal/logging"
	"github.com/arloliu/bitpack/packet"
)

const (
	// EnvConfig names a config file to load when no path is given.
	EnvConfig = "BITPACK_CONFIG"
	// DefaultPath is tried in the working directory when neither a path nor
	// EnvConfig is set.
	DefaultPath = "bitpack.toml"
)

// Config is the resolved command configuration.
type Config struct {
	StrictPadding       bool
	AllowEmptyOperators bool
	MaxDepth            int
	Overflow            format.OverflowPolicy
	Compression         format.CompressionType
	// LogLevel is empty unless the file sets log_level.
	LogLevel            string

	// Source is the file the values were read from, empty for defaults.
	Source string
}

// fileConfig maps bitpack.toml keys.
type fileConfig struct {
	StrictPadding       bool   `toml:"strict_padding"`
	AllowEmptyOperators bool   `toml:"allow_empty_operators"`
	MaxDepth            int    `toml:"max_depth"`
	Overflow            string `toml:"overflow"`
	Compression         string `toml:"compression"`
	LogLevel            string `toml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		StrictPadding:       false,
		AllowEmptyOperators: true,
		MaxDepth:            packet.DefaultMaxDepth,
		Overflow:            format.OverflowError,
		Compression:         format.CompressionZstd,
	}
}

// Load reads the configuration.
//
// With an explicit path the file must exist. Otherwise $BITPACK_CONFIG, then
// bitpack.toml in the working directory, is tried; a missing default file
// yields Default().
func Load(path string) (Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = strings.TrimSpace(os.Getenv(EnvConfig))
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath
	}

	cfg, err := LoadFile(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// LoadFile overlays the keys defined in path onto Default().
func LoadFile(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load bitpack config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load bitpack config: unknown key %q in %s", undecoded[0].String(), path)
	}

	if meta.IsDefined("strict_padding") {
		cfg.StrictPadding = raw.StrictPadding
	}
	if meta.IsDefined("allow_empty_operators") {
		cfg.AllowEmptyOperators = raw.AllowEmptyOperators
	}
	if meta.IsDefined("max_depth") {
		cfg.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("overflow") {
		policy, ok := format.ParseOverflowPolicy(strings.TrimSpace(raw.Overflow))
		if !ok {
			return Config{}, fmt.Errorf("load bitpack config: unsupported overflow policy %q (expected error or saturate)", raw.Overflow)
		}
		cfg.Overflow = policy
	}
	if meta.IsDefined("compression") {
		ct, ok := format.ParseCompressionType(strings.TrimSpace(raw.Compression))
		if !ok {
			return Config{}, fmt.Errorf("load bitpack config: unsupported compression %q (expected none, zstd, s2 or lz4)", raw.Compression)
		}
		cfg.Compression = ct
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	cfg.Source = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load bitpack config: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if _, ok := logging.ParseLevel(c.LogLevel); c.LogLevel != "" && !ok {
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}

	return nil
}

// DecoderOptions translates the configuration into packet decoder options.
// A MaxDepth of 0 leaves nesting unlimited.
func (c Config) DecoderOptions() []packet.DecoderOption {
	opts := []packet.DecoderOption{
		packet.WithStrictPadding(c.StrictPadding),
		packet.WithEmptyOperators(c.AllowEmptyOperators),
	}
	if c.MaxDepth > 0 {
		opts = append(opts, packet.WithMaxDepth(c.MaxDepth))
	}

	return opts
}

// EvaluatorOptions translates the configuration into evaluator options.
func (c Config) EvaluatorOptions() []eval.EvaluatorOption {
	return []eval.EvaluatorOption{eval.WithOverflowPolicy(c.Overflow)}
}
