package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Monitored location.
	Latitude     float64 `envconfig:"LATITUDE" default:"-8.05" validate:"gte=-90,lte=90"`
	Longitude    float64 `envconfig:"LONGITUDE" default:"-34.88" validate:"gte=-180,lte=180"`
	LocationName string  `envconfig:"LOCATION_NAME" default:"Recife" validate:"required"`
	Timezone     string  `envconfig:"TIMEZONE" default:"America/Sao_Paulo" validate:"required"`

	// Data sources.
	WeatherAPIURL  string        `envconfig:"WEATHER_API_URL" default:"https://api.open-meteo.com/v1/forecast" validate:"required,url"`
	WeatherTimeout time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s" validate:"gt=0"`
	TideSource     string        `envconfig:"TIDE_SOURCE" default:"data/mares.json" validate:"required"`
	TideTimeout    time.Duration `envconfig:"TIDE_TIMEOUT" default:"5s" validate:"gt=0"`
	CacheDir       string        `envconfig:"CACHE_DIR"`

	// Circuit breaker around the weather API.
	BreakerMaxFailures uint32        `envconfig:"BREAKER_MAX_FAILURES" default:"5" validate:"gt=0"`
	BreakerOpenTimeout time.Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"30s" validate:"gt=0"`

	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"30m" validate:"gt=0"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
	SinkTimeout     time.Duration `envconfig:"SINK_TIMEOUT" default:"10s" validate:"gt=0"`

	// Kafka publishing of accepted results.
	KafkaEnabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"flood-risk-updates"`

	// E-mail alert when the risk level rises to high.
	AlertEnabled  bool          `envconfig:"ALERT_ENABLED" default:"false"`
	AlertAPIURL   string        `envconfig:"ALERT_API_URL" default:"https://api.sendgrid.com" validate:"required,url"`
	AlertAPIKey   string        `envconfig:"ALERT_API_KEY"`
	AlertFrom     string        `envconfig:"ALERT_FROM" validate:"omitempty,email"`
	AlertFromName string        `envconfig:"ALERT_FROM_NAME" default:"Flood Watch"`
	AlertTo       []string      `envconfig:"ALERT_TO" validate:"dive,email"`
	AlertTimeout  time.Duration `envconfig:"ALERT_TIMEOUT" default:"10s" validate:"gt=0"`

	// Location is the parsed Timezone.
	Location *time.Location `ignored:"true" validate:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report env var names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("envconfig"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, validationError(err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
		}
	}

	if cfg.AlertEnabled {
		switch {
		case cfg.AlertAPIKey == "":
			return nil, errors.New("ALERT_ENABLED is true but ALERT_API_KEY is empty")
		case cfg.AlertFrom == "":
			return nil, errors.New("ALERT_ENABLED is true but ALERT_FROM is empty")
		case len(cfg.AlertTo) == 0:
			return nil, errors.New("ALERT_ENABLED is true but ALERT_TO is empty")
		}
	}

	return &cfg, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid %s: failed %s check (value %v)", fe.Field(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("validate config: %w", err)
}
