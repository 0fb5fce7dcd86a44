// Package config loads pmr.yaml with viper. Every key may be overridden by a
// PMR_ environment variable, e.g. PMR_LOG_LEVEL for log.level.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configFileName = "pmr"
	configFileType = "yaml"
	envPrefix      = "PMR"
)

// Keys.
const (
	KeyAddr                 = "addr"
	KeyBasePath             = "base_path"
	KeyLogLevel             = "log.level"
	KeyLogJSON              = "log.json"
	KeyThemeName            = "theme.name"
	KeyThemeVariant         = "theme.variant"
	KeyNotifyDisplay        = "notify.display"
	KeyNotifyFade           = "notify.fade"
	KeyBackendURL           = "backend.url"
	KeyBackendTimeout       = "backend.timeout"
	KeyChartsUpdateUnfunded = "charts.update_unfunded"
	KeyTemplatesDir         = "templates.dir"
	KeyTemplatesEngine      = "templates.engine"
)

// Template engines for templates.engine.
const (
	EnginePongo2     = "pongo2"
	EngineGoTemplate = "go-template"
)

// Config is the resolved configuration.
type Config struct {
	Addr     string
	BasePath string
	Log      Log
	Theme    Theme
	Notify   Notify
	Backend  Backend
	Charts   Charts
	// TemplatesDir overrides embedded HTML templates by name when set.
	TemplatesDir string
	// TemplatesEngine is EnginePongo2 or EngineGoTemplate.
	TemplatesEngine string
}

type Log struct {
	Level string
	JSON  bool
}

type Theme struct {
	Name    string
	Variant string
}

type Notify struct {
	Display time.Duration
	Fade    time.Duration
}

// Backend is disabled while URL is empty.
type Backend struct {
	URL     string
	Timeout time.Duration
}

type Charts struct {
	UpdateUnfunded bool
}

// New returns a viper instance with defaults and env binding, reading path
// when given or pmr.yaml from the working directory. A missing pmr.yaml is
// not an error; a missing explicit path is.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("config: read: %w", err)
	}
	return v, nil
}

// Load is New followed by Decode.
func Load(path string) (Config, error) {
	v, err := New(path)
	if err != nil {
		return Config{}, err
	}
	return Decode(v)
}

// Decode reads the typed configuration from v.
func Decode(v *viper.Viper) (Config, error) {
	cfg := Config{
		Addr:     v.GetString(KeyAddr),
		BasePath: v.GetString(KeyBasePath),
		Log: Log{
			Level: v.GetString(KeyLogLevel),
			JSON:  v.GetBool(KeyLogJSON),
		},
		Theme: Theme{
			Name:    v.GetString(KeyThemeName),
			Variant: v.GetString(KeyThemeVariant),
		},
		Notify: Notify{
			Display: v.GetDuration(KeyNotifyDisplay),
			Fade:    v.GetDuration(KeyNotifyFade),
		},
		Backend: Backend{
			URL:     strings.TrimSpace(v.GetString(KeyBackendURL)),
			Timeout: v.GetDuration(KeyBackendTimeout),
		},
		Charts: Charts{
			UpdateUnfunded: v.GetBool(KeyChartsUpdateUnfunded),
		},
		TemplatesDir:    strings.TrimSpace(v.GetString(KeyTemplatesDir)),
		TemplatesEngine: strings.TrimSpace(v.GetString(KeyTemplatesEngine)),
	}
	if cfg.Notify.Display <= 0 {
		return Config{}, fmt.Errorf("config: %s must be positive", KeyNotifyDisplay)
	}
	switch cfg.TemplatesEngine {
	case EnginePongo2, EngineGoTemplate:
	default:
		return Config{}, fmt.Errorf("config: %s must be %q or %q, got %q",
			KeyTemplatesEngine, EnginePongo2, EngineGoTemplate, cfg.TemplatesEngine)
	}
	if cfg.Notify.Fade < 0 {
		return Config{}, fmt.Errorf("config: %s must not be negative", KeyNotifyFade)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyBasePath, "/")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogJSON, false)
	v.SetDefault(KeyThemeName, "pmr")
	v.SetDefault(KeyThemeVariant, "light")
	v.SetDefault(KeyNotifyDisplay, "3s")
	v.SetDefault(KeyNotifyFade, "300ms")
	v.SetDefault(KeyBackendURL, "")
	v.SetDefault(KeyBackendTimeout, "10s")
	v.SetDefault(KeyChartsUpdateUnfunded, false)
	v.SetDefault(KeyTemplatesDir, "")
	v.SetDefault(KeyTemplatesEngine, EnginePongo2)
}
