package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrAddrRequired = errors.New("server config: listen address is required")
var ErrSiteURLInvalid = errors.New("server config: site url must be an absolute http(s) url")
var ErrStorageDriverUnknown = errors.New("server config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("server config: storage dsn is required")
var ErrCacheTTLInvalid = errors.New("server config: cache ttl must be zero or positive")
var ErrLoggingProviderRequired = errors.New("server config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("server config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("server config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("server config: logging format is invalid")
var ErrPageSizeInvalid = errors.New("server config: page size must be positive")

// Environment variables that override file values.
const (
	EnvAddr             = "PRIVATEPLOT_ADDR"
	EnvDSN              = "PRIVATEPLOT_DSN"
	EnvStorageDriver    = "PRIVATEPLOT_DB_DRIVER"
	EnvInternalToken    = "INTERNAL_AUTH_TOKEN"
	EnvSiteTitle        = "SITE_TITLE"
	EnvSiteDescription  = "SITE_DESCRIPTION"
	EnvSiteURL          = "SITE_URL"
	EnvLogLevel         = "PRIVATEPLOT_LOG_LEVEL"
	EnvMetricsEnabled   = "PRIVATEPLOT_METRICS"
	EnvCompressEnabled  = "PRIVATEPLOT_COMPRESSION"
	EnvCORSAllowOrigins = "PRIVATEPLOT_CORS_ORIGINS"
)

// Config aggregates the blog server settings.
type Config struct {
	Addr              string         `yaml:"addr"`
	InternalAuthToken string         `yaml:"internal_auth_token"`
	Site              SiteConfig     `yaml:"site"`
	Storage           StorageConfig  `yaml:"storage"`
	Cache             CacheConfig    `yaml:"cache"`
	Markdown          MarkdownConfig `yaml:"markdown"`
	Logging           LoggingConfig  `yaml:"logging"`
	Features          Features       `yaml:"features"`
	API               APIConfig      `yaml:"api"`
}

// SiteConfig describes the public site used in feeds and pages.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
}

// StorageConfig selects the database backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// MarkdownConfig mirrors interfaces.RenderOptions.
type MarkdownConfig struct {
	Extensions []string        `yaml:"extensions"`
	HardWraps  bool            `yaml:"hard_wraps"`
	SafeMode   bool            `yaml:"safe_mode"`
	Highlight  HighlightConfig `yaml:"highlight"`
}

// HighlightConfig toggles fenced code highlighting.
type HighlightConfig struct {
	Enabled bool   `yaml:"enabled"`
	Style   string `yaml:"style"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string `yaml:"provider"`
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// Features toggles optional server behaviour.
type Features struct {
	Metrics     bool `yaml:"metrics"`
	Compression bool `yaml:"compression"`
}

// APIConfig tunes the public JSON API.
type APIConfig struct {
	PageSize     int      `yaml:"page_size"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// DefaultConfig returns defaults suitable for a local sqlite instance.
func DefaultConfig() Config {
	return Config{
		Addr: ":4321",
		Site: SiteConfig{
			Title:       "privateplot",
			Description: "A private plot on the internet",
			URL:         "http://localhost:4321",
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "file:privateplot.db?cache=shared&_fk=1",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		Markdown: MarkdownConfig{
			Highlight: HighlightConfig{Enabled: true, Style: "github"},
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
		Features: Features{
			Metrics:     true,
			Compression: true,
		},
		API: APIConfig{
			PageSize:     10,
			AllowOrigins: []string{"*"},
		},
	}
}

// Load reads an optional YAML file over the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("server config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("server config: parse %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from the environment. lookup follows the
// os.LookupEnv contract.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	str(EnvAddr, &cfg.Addr)
	str(EnvDSN, &cfg.Storage.DSN)
	str(EnvStorageDriver, &cfg.Storage.Driver)
	str(EnvInternalToken, &cfg.InternalAuthToken)
	str(EnvSiteTitle, &cfg.Site.Title)
	str(EnvSiteDescription, &cfg.Site.Description)
	str(EnvSiteURL, &cfg.Site.URL)
	str(EnvLogLevel, &cfg.Logging.Level)

	flag := func(key string, target *bool) error {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			return nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("server config: %s: %w", key, err)
		}
		*target = parsed
		return nil
	}
	if err := flag(EnvMetricsEnabled, &cfg.Features.Metrics); err != nil {
		return err
	}
	if err := flag(EnvCompressEnabled, &cfg.Features.Compression); err != nil {
		return err
	}

	if value, ok := lookup(EnvCORSAllowOrigins); ok && strings.TrimSpace(value) != "" {
		var origins []string
		for _, origin := range strings.Split(value, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		cfg.API.AllowOrigins = origins
	}
	return nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return ErrAddrRequired
	}
	if parsed, err := url.Parse(strings.TrimSpace(cfg.Site.URL)); err != nil || parsed.Host == "" ||
		(parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrSiteURLInvalid, cfg.Site.URL)
	}
	switch normalizeDriver(cfg.Storage.Driver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if cfg.Cache.TTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.API.PageSize <= 0 {
		return ErrPageSizeInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// StorageDriver returns the normalised driver name.
func (cfg Config) StorageDriver() string {
	return normalizeDriver(cfg.Storage.Driver)
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return "sqlite"
	case "postgres", "postgresql", "pg":
		return "postgres"
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
