// Package config loads application settings from defaults, an optional YAML
// file, a .env file and TINTCARE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	appDir     = "tint-care"
	configName = "config.yaml"
	envPrefix  = "TINTCARE"
)

// Config is the complete application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Editor  EditorConfig  `mapstructure:"editor"`
	Export  ExportConfig  `mapstructure:"export"`
	Print   PrintConfig   `mapstructure:"print"`
	Outline OutlineConfig `mapstructure:"outline"`
	Dev     DevConfig     `mapstructure:"dev"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CatalogConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	FirstYear int           `mapstructure:"first_year"`
	LastYear  int           `mapstructure:"last_year"`
}

// EditorConfig holds drawing surface defaults. Zoom bounds apply to every
// zoom adjustment.
type EditorConfig struct {
	Width       float64 `mapstructure:"width"`
	Height      float64 `mapstructure:"height"`
	ZoomMin     float64 `mapstructure:"zoom_min"`
	ZoomMax     float64 `mapstructure:"zoom_max"`
	ZoomStep    float64 `mapstructure:"zoom_step"`
	BrushWidth  float64 `mapstructure:"brush_width"`
	StrokeColor string  `mapstructure:"stroke_color"`
	FillColor   string  `mapstructure:"fill_color"`
	ImageLeft   float64 `mapstructure:"image_left"`
	ImageTop    float64 `mapstructure:"image_top"`
	ImageScale  float64 `mapstructure:"image_scale"`
}

type ExportConfig struct {
	FileName   string  `mapstructure:"file_name"`
	Multiplier float64 `mapstructure:"multiplier"`
}

type PrintConfig struct {
	DefaultPrinter string `mapstructure:"default_printer"`
	LPStat         string `mapstructure:"lpstat"`
	LP             string `mapstructure:"lp"`
}

type OutlineConfig struct {
	BlurSize int     `mapstructure:"blur_size"`
	MinArea  float64 `mapstructure:"min_area"`
	Epsilon  float64 `mapstructure:"epsilon"`
}

// DevConfig enables development conveniences.
type DevConfig struct {
	HotReload      bool          `mapstructure:"hot_reload"`
	ReloadInterval time.Duration `mapstructure:"reload_interval"`
}

// Load reads configuration from path. An empty path looks for the default
// file in the user config directory; a missing default file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("failed to read .env file")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		logrus.WithField("path", path).Debug("no config file, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// DefaultPath returns ~/.config/tint-care/config.yaml (or the platform equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, appDir, configName)
}

// Validate checks settings that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	if c.Editor.ZoomMin <= 0 || c.Editor.ZoomMax < c.Editor.ZoomMin {
		return fmt.Errorf("invalid zoom bounds [%g, %g]", c.Editor.ZoomMin, c.Editor.ZoomMax)
	}
	if c.Editor.Width <= 0 || c.Editor.Height <= 0 {
		return fmt.Errorf("invalid canvas size %gx%g", c.Editor.Width, c.Editor.Height)
	}
	if c.Catalog.LastYear < c.Catalog.FirstYear {
		return fmt.Errorf("invalid year range %d-%d", c.Catalog.FirstYear, c.Catalog.LastYear)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("catalog.base_url", "http://localhost:7092/api")
	v.SetDefault("catalog.timeout", 30*time.Second)
	v.SetDefault("catalog.first_year", 1980)
	v.SetDefault("catalog.last_year", 2025)

	// 32.8in x 100in at 48px/in, the size of the rulers
	v.SetDefault("editor.width", 1575.0)
	v.SetDefault("editor.height", 4800.0)
	v.SetDefault("editor.zoom_min", 0.1)
	v.SetDefault("editor.zoom_max", 10.0)
	v.SetDefault("editor.zoom_step", 0.2)
	v.SetDefault("editor.brush_width", 3.0)
	v.SetDefault("editor.stroke_color", "#000000")
	v.SetDefault("editor.fill_color", "transparent")
	v.SetDefault("editor.image_left", 250.0)
	v.SetDefault("editor.image_top", 250.0)
	v.SetDefault("editor.image_scale", 0.2)

	v.SetDefault("export.file_name", "sketch.png")
	v.SetDefault("export.multiplier", 0.0)

	v.SetDefault("print.default_printer", "")
	v.SetDefault("print.lpstat", "lpstat")
	v.SetDefault("print.lp", "lp")

	v.SetDefault("outline.blur_size", 5)
	v.SetDefault("outline.min_area", 400.0)
	v.SetDefault("outline.epsilon", 0.002)

	v.SetDefault("dev.hot_reload", false)
	v.SetDefault("dev.reload_interval", 2*time.Second)
}
