package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// WebServer Configuration
	WebServerPort int    `mapstructure:"WEBSERVER_PORT" validate:"required,min=1,max=65535"`
	SiteURL       string `mapstructure:"SITE_URL" validate:"omitempty,url"`

	// Upstream catalog API
	UpstreamBaseURL   string        `mapstructure:"UPSTREAM_BASE_URL" validate:"required,url"`
	UpstreamTimeout   time.Duration `mapstructure:"UPSTREAM_TIMEOUT" validate:"gt=0"`
	UpstreamRateLimit float64       `mapstructure:"UPSTREAM_RATE_LIMIT" validate:"gt=0"`
	UpstreamMaxBody   string        `mapstructure:"UPSTREAM_MAX_BODY" validate:"required"`

	// Rendering
	PlaceholderImageURL    string `mapstructure:"PLACEHOLDER_IMAGE_URL" validate:"omitempty,url"`
	ImageProxyFallbackURL  string `mapstructure:"IMAGE_PROXY_FALLBACK_URL" validate:"omitempty,url"`
	StreamPreferredQuality int    `mapstructure:"STREAM_PREFERRED_QUALITY" validate:"min=144,max=4320"`
	HomeSectionLimit       int    `mapstructure:"HOME_SECTION_LIMIT" validate:"min=1,max=100"`
	PageSize               int    `mapstructure:"PAGE_SIZE" validate:"min=1,max=200"`

	// UpstreamMaxBodyBytes is UpstreamMaxBody parsed.
	UpstreamMaxBodyBytes int64 `mapstructure:"-"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag != "" && tag != "-" {
			viper.BindEnv(tag)
		}

		// Handle nested structs
		if field.Type.Kind() == reflect.Struct && tag == "" {
			nestedTyp := fieldVal.Type()
			for j := 0; j < fieldVal.NumField(); j++ {
				nestedField := nestedTyp.Field(j)
				nestedTag := nestedField.Tag.Get("mapstructure")
				if nestedTag != "" && nestedTag != "-" {
					viper.BindEnv(nestedTag)
				}
			}
		}
	}
	slog.Info("Environment variables bound", "config", c)
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("UPSTREAM_BASE_URL", "https://api.sansekai.my.id/api")
	viper.SetDefault("UPSTREAM_TIMEOUT", "8s")
	viper.SetDefault("UPSTREAM_RATE_LIMIT", 20)
	viper.SetDefault("UPSTREAM_MAX_BODY", "8MB")
	viper.SetDefault("IMAGE_PROXY_FALLBACK_URL", "https://wsrv.nl/")
	viper.SetDefault("STREAM_PREFERRED_QUALITY", 720)
	viper.SetDefault("HOME_SECTION_LIMIT", 10)
	viper.SetDefault("PAGE_SIZE", 24)

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	slog.Info("Loaded configuration", "config", cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	n, err := humanize.ParseBytes(cfg.UpstreamMaxBody)
	if err != nil {
		return nil, fmt.Errorf("parse UPSTREAM_MAX_BODY: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("parse UPSTREAM_MAX_BODY: must be positive")
	}
	cfg.UpstreamMaxBodyBytes = int64(n)

	return &cfg, nil
}
