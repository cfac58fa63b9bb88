package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	goerrors "github.com/TudorHulban/go-errors"
	"github.com/asaskevich/govalidator"
	"gopkg.in/yaml.v3"

	"timeful/internal/dow"
	"timeful/internal/model"
)

const (
	DefaultPath = "/etc/timeful/config.yaml"

	defaultListen         = "127.0.0.1:8080"
	defaultRefresh        = "*/15 * * * *"
	defaultCacheDir       = "/var/lib/timeful/ics-cache"
	defaultLogLevel       = "info"
	defaultMaxOccurrences = 5000

	defaultTracingEndpoint    = "localhost:4317"
	defaultTracingSampleRatio = 1.0
)

// CalendarConfig is one subscribed ICS feed.
type CalendarConfig struct {
	ID   string `yaml:"id" json:"id" valid:"required"`
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url" valid:"required,url"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// TracingConfig selects the OTLP collector spans are exported to.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio" json:"sample_ratio"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the display timezone used when a request carries none.
	// An empty value means the process local zone.
	Timezone model.Timezone `yaml:"timezone" json:"timezone"`

	// CanonicalWeek holds the seven YYYY-MM-DD dates, Sunday first, that
	// recurring events are stored in.
	CanonicalWeek []string `yaml:"canonical_week" json:"canonical_week"`

	// Refresh is a standard 5-field cron schedule for warming the ICS cache.
	Refresh string `yaml:"refresh" json:"refresh"`

	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
	LogLevel string `yaml:"log_level" json:"log_level"`

	Calendars []CalendarConfig `yaml:"calendars" json:"calendars"`

	// MaxOccurrencesPerEvent caps RRULE expansion per event.
	MaxOccurrencesPerEvent int `yaml:"max_occurrences_per_event" json:"max_occurrences_per_event"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Listen:                 defaultListen,
		CanonicalWeek:          append([]string(nil), dow.DefaultDays...),
		Refresh:                defaultRefresh,
		CacheDir:               defaultCacheDir,
		LogLevel:               defaultLogLevel,
		Calendars:              []CalendarConfig{},
		MaxOccurrencesPerEvent: defaultMaxOccurrences,
		Tracing: TracingConfig{
			Endpoint:    defaultTracingEndpoint,
			SampleRatio: defaultTracingSampleRatio,
		},
	}
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}

	if len(c.CanonicalWeek) == 0 {
		c.CanonicalWeek = append([]string(nil), dow.DefaultDays...)
	}

	if strings.TrimSpace(c.Refresh) == "" {
		c.Refresh = defaultRefresh
	}

	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}

	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	if c.Calendars == nil {
		c.Calendars = []CalendarConfig{}
	}

	if c.MaxOccurrencesPerEvent <= 0 {
		c.MaxOccurrencesPerEvent = defaultMaxOccurrences
	}

	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = defaultTracingEndpoint
	}

	if c.Tracing.SampleRatio <= 0 || c.Tracing.SampleRatio > 1 {
		c.Tracing.SampleRatio = defaultTracingSampleRatio
	}
}

// Validate checks the fields Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := dow.NewCanonicalWeek(c.CanonicalWeek); err != nil {
		return goerrors.ErrValidation{
			Caller: "Config.Validate",
			Issue:  err,
		}
	}

	seen := make(map[string]struct{}, len(c.Calendars))

	for i, cal := range c.Calendars {
		if _, err := govalidator.ValidateStruct(cal); err != nil {
			return goerrors.ErrValidation{
				Caller: "Config.Validate",
				Issue: goerrors.ErrInvalidInput{
					InputName:  fmt.Sprintf("calendars[%d]", i),
					InputValue: cal.ID,
					Issue:      err,
				},
			}
		}

		if _, dup := seen[cal.ID]; dup {
			return goerrors.ErrValidation{
				Caller: "Config.Validate",
				Issue: goerrors.ErrInvalidInput{
					InputName:  fmt.Sprintf("calendars[%d].id", i),
					InputValue: cal.ID,
					Issue:      errors.New("duplicate calendar id"),
				},
			}
		}

		seen[cal.ID] = struct{}{}
	}

	if c.BasicAuth != nil && c.BasicAuth.Username == "" {
		return goerrors.ErrValidation{
			Caller: "Config.Validate",
			Issue:  errors.New("basic_auth requires a username"),
		}
	}

	return nil
}

// Week builds the canonical week table.
func (c *Config) Week() (*dow.CanonicalWeek, error) {
	return dow.NewCanonicalWeek(c.CanonicalWeek)
}

// Load reads the YAML config at path. A missing file is created with the
// defaults (0600) and the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, errRead := os.ReadFile(path)
	if errRead != nil {
		if errors.Is(errRead, fs.ErrNotExist) {
			cfg := DefaultConfig()

			return cfg, Save(path, cfg)
		}

		return nil, errRead
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to path atomically through a temp file in the same
// directory, leaving the file with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}

	if cfg == nil {
		return goerrors.ErrNilInput{
			InputName: "cfg",
		}
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, errMarshal := yaml.Marshal(cfg)
	if errMarshal != nil {
		return errMarshal
	}

	tmp, errTemp := os.CreateTemp(dir, ".timeful-config-*.tmp")
	if errTemp != nil {
		return errTemp
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()

		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
