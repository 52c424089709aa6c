package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/internal/validation"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

const (
	// DefaultHost is used when neither the environment nor a config file names
	// an instance.
	DefaultHost = "http://localhost:4321"

	EnvHost  = "PRIVATEPLOT_HOST"
	EnvToken = "INTERNAL_AUTH_TOKEN"

	dotEnvFile = ".env"
)

// ConfigFiles lists the config file names in lookup order. The first entry is
// where new settings are written.
var ConfigFiles = []string{
	".privateplot",
	".privateplot.json",
	".privateplot.yaml",
	".privateplot.yml",
}

var ErrInvalidConfig = errors.New("settings: invalid config file")

// Settings are the CLI connection settings.
type Settings struct {
	InstanceHost      string `json:"instanceHost,omitempty" yaml:"instanceHost,omitempty"`
	InternalAuthToken string `json:"internalAuthToken,omitempty" yaml:"internalAuthToken,omitempty"`
}

// Loaded is the result of resolving settings from file and environment.
type Loaded struct {
	// Effective holds the values the CLI should use.
	Effective Settings
	// File holds only what the config file contained; Save persists these.
	File Settings
	// Source is the config file that was read, empty when none exists.
	Source string
	// HostDefaulted is set when DefaultHost was applied.
	HostDefaulted bool
}

// Host returns the effective instance host.
func (l *Loaded) Host() string { return l.Effective.InstanceHost }

// Token returns the effective auth token.
func (l *Loaded) Token() string { return l.Effective.InternalAuthToken }

// Option configures a Loader.
type Option func(*Loader)

// WithLookup replaces os.LookupEnv.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(l *Loader) {
		if lookup != nil {
			l.lookup = lookup
		}
	}
}

// WithoutDotEnv disables loading the working directory .env file.
func WithoutDotEnv() Option {
	return func(l *Loader) {
		l.dotEnv = false
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader resolves settings for a working directory.
type Loader struct {
	dir    string
	lookup func(string) (string, bool)
	dotEnv bool
	logger interfaces.Logger
}

// NewLoader builds a loader rooted at dir.
func NewLoader(dir string, opts ...Option) *Loader {
	l := &Loader{
		dir:    dir,
		lookup: os.LookupEnv,
		dotEnv: true,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load reads the .env file, the first existing config file, and applies the
// environment on top. Environment values always win.
func (l *Loader) Load() (*Loaded, error) {
	if l.dotEnv {
		envPath := filepath.Join(l.dir, dotEnvFile)
		if _, err := os.Stat(envPath); err == nil {
			// godotenv.Load never overrides variables already set
			if err := godotenv.Load(envPath); err != nil {
				l.logger.Warn("settings.dotenv.failed", "path", envPath, "error", err)
			}
		}
	}

	loaded := &Loaded{}
	if path := l.findConfig(); path != "" {
		file, err := readConfig(path)
		if err != nil {
			return nil, err
		}
		loaded.File = file
		loaded.Source = path
		l.logger.Debug("settings.file.loaded", "path", path)
	}

	loaded.Effective = loaded.File
	if host, ok := l.env(EnvHost); ok {
		loaded.Effective.InstanceHost = host
	}
	if token, ok := l.env(EnvToken); ok {
		loaded.Effective.InternalAuthToken = token
	}
	if strings.TrimSpace(loaded.Effective.InstanceHost) == "" {
		loaded.Effective.InstanceHost = DefaultHost
		loaded.HostDefaulted = true
		l.logger.Warn("settings.host.defaulted", "host", DefaultHost)
	}
	return loaded, nil
}

// Save writes settings to the file they were loaded from, or to the first
// config file name when none existed. Returns the written path.
func (l *Loader) Save(loaded *Loaded, values Settings) (string, error) {
	path := filepath.Join(l.dir, ConfigFiles[0])
	if loaded != nil && loaded.Source != "" {
		path = loaded.Source
	}
	if err := validateSettings(values); err != nil {
		return "", err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(values)
	} else {
		data, err = json.MarshalIndent(values, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("settings: encode %s: %w", path, err)
	}
	if !isYAML(path) {
		data = append(data, '\n')
	}
	// the file holds a credential
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("settings: write %s: %w", path, err)
	}
	l.logger.Info("settings.file.saved", "path", path)
	return path, nil
}

func (l *Loader) findConfig() string {
	for _, name := range ConfigFiles {
		path := filepath.Join(l.dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

func (l *Loader) env(key string) (string, bool) {
	value, ok := l.lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func readConfig(path string) (Settings, error) {
	var out Settings
	raw, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("settings: read %s: %w", path, err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return out, nil
	}

	document := map[string]any{}
	if isYAML(path) {
		err = yaml.Unmarshal(raw, &document)
	} else {
		err = json.Unmarshal(jsonc.ToJSON(raw), &document)
	}
	if err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := validation.Validate(validation.SchemaSettings, document); err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	out.InstanceHost, _ = document["instanceHost"].(string)
	out.InternalAuthToken, _ = document["internalAuthToken"].(string)
	return out, nil
}

func validateSettings(values Settings) error {
	if err := validation.ValidateStruct(validation.SchemaSettings, values, false); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// MaskToken hides a credential for display.
func MaskToken(token string) string {
	if strings.TrimSpace(token) == "" {
		return "Not set"
	}
	return "********"
}
