// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"context"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/forumlang/langcat/catalog"
	"codeberg.org/forumlang/langcat/languages"
	"codeberg.org/forumlang/langcat/source"
)

// Global exposes the server configuration.
var Global ServerConfig

// ServerConfig holds the application configuration.
type ServerConfig struct {
	Build buildInfo `yaml:"-"`

	Basic struct {
		Host string `env:"LANGCAT_HOST,overwrite" yaml:"host"`
		Port string `env:"LANGCAT_PORT,overwrite" yaml:"port"`
		// ServerTiming adds a Server-Timing header to responses.
		ServerTiming bool `env:"LANGCAT_SERVER_TIMING,overwrite" yaml:"serverTiming"`
	} `yaml:"basic"`

	Catalog struct {
		// Dir is the directory holding catalog files. When empty the
		// embedded default catalogs are served.
		Dir             string            `env:"LANGCAT_CATALOG_DIR,overwrite"      yaml:"dir"`
		DefaultLanguage string            `env:"LANGCAT_DEFAULT_LANGUAGE,overwrite" yaml:"defaultLanguage"`
		Charsets        map[string]string `env:"LANGCAT_CHARSETS,overwrite"         yaml:"charsets"`
		DefaultCharset  string            `env:"LANGCAT_DEFAULT_CHARSET,overwrite"  yaml:"defaultCharset"`
		LoadConcurrency int               `env:"LANGCAT_LOAD_CONCURRENCY,overwrite" yaml:"loadConcurrency"`
		// ReloadInterval enables periodic reloading when positive.
		ReloadInterval time.Duration `env:"LANGCAT_RELOAD_INTERVAL,overwrite" yaml:"reloadInterval"`
		// Watch reloads catalogs when files under Dir change.
		Watch bool `env:"LANGCAT_CATALOG_WATCH,overwrite" yaml:"watch"`
	} `yaml:"catalog"`

	// Forum values are available to every template as named placeholders.
	Forum struct {
		Name           string `env:"LANGCAT_FORUM_NAME,overwrite"      yaml:"name"`
		ScriptURL      string `env:"LANGCAT_SCRIPT_URL,overwrite"      yaml:"scriptUrl"`
		BoardURL       string `env:"LANGCAT_BOARD_URL,overwrite"       yaml:"boardUrl"`
		Regards        string `env:"LANGCAT_REGARDS,overwrite"         yaml:"regards"`
		WebmasterEmail string `env:"LANGCAT_WEBMASTER_EMAIL,overwrite" yaml:"webmasterEmail"`
		Version        string `env:"LANGCAT_FORUM_VERSION,overwrite"   yaml:"version"`
	} `yaml:"forum"`

	Development struct {
		InDevelopment bool `env:"LANGCAT_DEV" yaml:"inDevelopment"`
	} `yaml:"development"`

	Log struct {
		Level   string   `env:"LANGCAT_LOG_LEVEL,overwrite"   yaml:"logLevel"`
		Outputs []string `env:"LANGCAT_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"LANGCAT_LOG_FORMAT,overwrite"  yaml:"logFormat"`
	} `yaml:"log"`

	Limiter struct {
		Enabled bool `env:"LANGCAT_LIMITER,overwrite" yaml:"enabled"`
		// Rate is the number of requests per second allowed per client.
		Rate   float64       `env:"LANGCAT_LIMITER_RATE,overwrite"   yaml:"rate"`
		Burst  int           `env:"LANGCAT_LIMITER_BURST,overwrite"  yaml:"burst"`
		Expiry time.Duration `env:"LANGCAT_LIMITER_EXPIRY,overwrite" yaml:"expiry"`
		// CheckHeaders trusts X-Forwarded-For and X-Real-IP for client addresses.
		CheckHeaders bool `env:"LANGCAT_LIMITER_CHECK_HEADERS,overwrite" yaml:"checkHeaders"`
	} `yaml:"limiter"`

	Internationalization struct {
		// When enabled, failed lookups are logged once per language, domain
		// and key.
		ReportMissingKeys bool `env:"LANGCAT_REPORT_MISSING_KEYS,overwrite" yaml:"reportMissingKeys"`
	} `yaml:"internationalization"`
}

// LoadConfig loads the configuration from various sources.
//
// The configuration file is chosen with the following precedence:
// 1. configPath, usually from a command-line flag
// 2. environment variable LANGCAT_CONFIGFILE
// 3. ./config.yaml, then ./config.yml
func (cfg *ServerConfig) LoadConfig(configPath string) error {
	if err := cfg.Load(configPath); err != nil {
		return err
	}

	cfg.setupAudit()

	cfg.print()

	return nil
}

// Load reads and validates the configuration like [ServerConfig.LoadConfig]
// without touching the global logger or printing anything.
func (cfg *ServerConfig) Load(configPath string) error {
	cfg.SetDefaults()

	cfg.Build.load()

	if err := cfg.readYAML(configFilePath(configPath)); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	return nil
}

func configFilePath(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envVar := os.Getenv("LANGCAT_CONFIGFILE"); envVar != "" {
		return envVar
	}

	const defaultPath = "./config.yaml"

	if _, err := os.Stat(defaultPath); os.IsNotExist(err) {
		ymlPath := "./config.yml"
		if _, statErr := os.Stat(ymlPath); statErr == nil {
			return ymlPath
		}
	}

	return defaultPath
}

// ForumContext returns the values that every template may reference by
// name. Empty settings are left out so that templates needing them fail
// visibly.
func (cfg *ServerConfig) ForumContext() map[string]any {
	values := map[string]string{
		"FORUMNAME":      cfg.Forum.Name,
		"SCRIPTURL":      cfg.Forum.ScriptURL,
		"BOARDURL":       cfg.Forum.BoardURL,
		"REGARDS":        cfg.Forum.Regards,
		"WEBMASTEREMAIL": cfg.Forum.WebmasterEmail,
		"FORUMVERSION":   cfg.Forum.Version,
	}

	out := make(map[string]any, len(values))

	for k, v := range values {
		if v != "" {
			out[k] = v
		}
	}

	return out
}

// SourceOptions returns the options used to decode catalog files.
func (cfg *ServerConfig) SourceOptions() source.Options {
	return source.Options{
		Charsets:       cfg.Catalog.Charsets,
		DefaultCharset: cfg.Catalog.DefaultCharset,
		Concurrency:    cfg.Catalog.LoadConcurrency,
	}
}

// Loader returns a function that loads every catalog from Catalog.Dir, or
// the embedded catalogs when no directory is configured.
func (cfg *ServerConfig) Loader() func(ctx context.Context) (*catalog.Set, error) {
	fsys, dir, opts := cfg.CatalogFS()

	return func(ctx context.Context) (*catalog.Set, error) {
		return source.LoadFS(ctx, fsys, dir, opts)
	}
}

// CatalogFS returns the file system holding the catalogs, the directory
// inside it to load and the decoding options for its files.
func (cfg *ServerConfig) CatalogFS() (fs.FS, string, source.Options) {
	opts := cfg.SourceOptions()

	if cfg.Catalog.Dir != "" {
		return os.DirFS(cfg.Catalog.Dir), ".", opts
	}

	charsets := maps.Clone(languages.Charsets)
	maps.Copy(charsets, opts.Charsets)
	opts.Charsets = charsets

	return languages.FS, ".", opts
}

// ShouldSkipServerLogging determines if a request should bypass the logging middleware.
func (cfg *ServerConfig) ShouldSkipServerLogging(path string) bool {
	return path == "/healthz" && !cfg.Development.InDevelopment
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "30m", "1h").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}

// logDefault records that a setting fell back to its default.
func logDefault(name string, value any) {
	log.Info().
		Interface(name, value).
		Msg("Using default setting")
}
