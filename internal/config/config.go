// Package config loads bookcat configuration from defaults, a TOML file and
// the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/roach88/bookcat/internal/catalog"
)

const defaultDBName = "bookcat.db"

// Format is the CLI output mode.
type Format string

const (
	// FormatText renders human-readable output.
	FormatText Format = "text"
	// FormatJSON renders the JSON response envelope.
	FormatJSON Format = "json"
)

// ParseFormat validates and converts a string to a Format.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be text or json)", value)
	}
}

func (f Format) String() string {
	return string(f)
}

// Config holds runtime configuration for bookcat.
type Config struct {
	// DB is the SQLite database path.
	DB string
	// Format is the default output format.
	Format Format
	// Field is the date the filter command reads when --field is not given.
	Field catalog.DateField
	// Sheet is the worksheet read from and written to Excel catalogues.
	Sheet string
}

type fileConfig struct {
	DB     string `toml:"db"`
	Format string `toml:"format"`
	Field  string `toml:"field"`
	Sheet  string `toml:"sheet"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		DB:     defaultDBName,
		Format: FormatText,
		Field:  catalog.PurchaseDate,
		Sheet:  catalog.DefaultSheet,
	}
}

// DefaultPath returns the OS-specific path to config.toml.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "bookcat", "config.toml"), nil
}

// Load reads config from path (or the default path when empty), applies
// environment overrides and returns the merged config. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	configPath := path
	if configPath == "" {
		var err error
		configPath, err = DefaultPath()
		if err != nil {
			return Config{}, err
		}
	}

	fileCfg, err := readFileConfig(configPath)
	if err != nil {
		return Config{}, err
	}
	cfg, err := applyFileConfig(Default(), fileCfg)
	if err != nil {
		return Config{}, err
	}

	if value := os.Getenv("BOOKCAT_DB"); value != "" {
		cfg.DB = value
	}
	if value := os.Getenv("BOOKCAT_FORMAT"); value != "" {
		format, err := ParseFormat(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BOOKCAT_FORMAT: %w", err)
		}
		cfg.Format = format
	}
	if value := os.Getenv("BOOKCAT_FIELD"); value != "" {
		field, err := catalog.ParseDateField(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BOOKCAT_FIELD: %w", err)
		}
		cfg.Field = field
	}

	return cfg, nil
}

// Save writes cfg to path, creating its directory.
func Save(path string, cfg Config) error {
	if cfg.DB == "" {
		return errors.New("db path is required")
	}
	if _, err := ParseFormat(string(cfg.Format)); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	raw, err := toml.Marshal(fileConfig{
		DB:     cfg.DB,
		Format: string(cfg.Format),
		Field:  cfg.Field.String(),
		Sheet:  cfg.Sheet,
	})
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// readFileConfig loads config.toml if present and returns zero values otherwise.
func readFileConfig(path string) (fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	decoder := toml.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyFileConfig(cfg Config, fileCfg fileConfig) (Config, error) {
	if fileCfg.DB != "" {
		cfg.DB = fileCfg.DB
	}
	if fileCfg.Format != "" {
		format, err := ParseFormat(fileCfg.Format)
		if err != nil {
			return Config{}, err
		}
		cfg.Format = format
	}
	if fileCfg.Field != "" {
		field, err := catalog.ParseDateField(fileCfg.Field)
		if err != nil {
			return Config{}, err
		}
		cfg.Field = field
	}
	if fileCfg.Sheet != "" {
		cfg.Sheet = fileCfg.Sheet
	}
	return cfg, nil
}
