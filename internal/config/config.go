package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var validate = validator.New()

type AppConfig struct {
	DarkSkyAPIKey  string
	WeatherBaseURL string `validate:"omitempty,url"`

	// Language is the active locale, e.g. "ko_KR.UTF-8". Korean adds lang=ko
	// to forecast requests.
	Language string

	// HTTPTimeout bounds each outbound forecast request.
	HTTPTimeout    time.Duration `validate:"gt=0"`
	FetchRetries   int           `validate:"gte=0,lte=10"`
	GeocoderAPIKey string

	// RefreshInterval controls how often all regions are refreshed.
	RefreshInterval time.Duration `validate:"gt=0"`
	// RefreshMaxConcurrency caps parallel fetches per batch (0 = unlimited).
	RefreshMaxConcurrency int `validate:"gte=0"`

	StoreDriver string `validate:"oneof=sqlite valkey memory"`
	StorePath   string `validate:"required_if=StoreDriver sqlite"`
	StoreKey    string `validate:"required"`
	ValkeyAddr  string `validate:"required_if=StoreDriver valkey"`

	Port      string `validate:"required,numeric"`
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text"`
}

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("weather_base_url", "")
	v.SetDefault("weather_language", "")
	v.SetDefault("http_timeout", "60s")
	v.SetDefault("fetch_max_retries", 0)
	v.SetDefault("refresh_interval", "15m")
	v.SetDefault("refresh_max_concurrency", 0)
	v.SetDefault("store_driver", "sqlite")
	v.SetDefault("store_path", "regions.db")
	v.SetDefault("store_key", "regionInformations")
	v.SetDefault("valkey_addr", "")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates an AppConfig from v.
func FromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		DarkSkyAPIKey:  v.GetString("darksky_api_key"),
		WeatherBaseURL: v.GetString("weather_base_url"),
		Language:       v.GetString("weather_language"),
		GeocoderAPIKey: v.GetString("geocoder_api_key"),
		StoreDriver:    strings.ToLower(v.GetString("store_driver")),
		StorePath:      v.GetString("store_path"),
		StoreKey:       v.GetString("store_key"),
		ValkeyAddr:     v.GetString("valkey_addr"),
		Port:           v.GetString("port"),
		LogLevel:       strings.ToLower(v.GetString("log_level")),
		LogFormat:      strings.ToLower(v.GetString("log_format")),
	}
	if cfg.Language == "" {
		cfg.Language = os.Getenv("LANG")
	}

	var err error
	if cfg.HTTPTimeout, err = parseDuration(v, "http_timeout"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = parseDuration(v, "refresh_interval"); err != nil {
		return nil, err
	}
	if cfg.FetchRetries, err = parseInt(v, "fetch_max_retries"); err != nil {
		return nil, err
	}
	if cfg.RefreshMaxConcurrency, err = parseInt(v, "refresh_max_concurrency"); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.DarkSkyAPIKey == "" {
		slog.Warn("DARKSKY_API_KEY is not set; every weather fetch will fail")
	}
	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err)
	}
	return d, nil
}

func parseInt(v *viper.Viper, key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err)
	}
	return n, nil
}
