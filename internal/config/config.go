// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration. The env tag names the
// variable each field is read from and is also used in validation messages.
type Config struct {
	// Server
	Port int    `env:"PORT" validate:"gte=1,lte=65535"`
	Env  string `env:"ENV" validate:"oneof=development staging production"`

	// Shared key for the prediction endpoints; mandatory in production.
	APIKey string `env:"API_KEY" validate:"required_if=Env production"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" validate:"oneof=json text"`

	// Prediction
	Timezone        string `env:"TIMEZONE" validate:"zone"` // decides what "today" is
	PhasePolicyPath string `env:"PHASE_POLICY_PATH"`        // empty means built-in table
	MaxLogEntries   int    `env:"MAX_LOG_ENTRIES" validate:"min=2"`
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("env")
	})
	// The built-in "timezone" tag refuses "Local", which is our default.
	err := v.RegisterValidation("zone", func(fl validator.FieldLevel) bool {
		_, err := time.LoadLocation(fl.Field().String())
		return err == nil
	})
	if err != nil {
		panic(fmt.Sprintf("config: register zone validation: %v", err))
	}
	return v
}

// Load reads configuration from environment variables, after loading a
// .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvInt("PORT", 8080),
		Env:             getEnv("ENV", EnvDevelopment),
		APIKey:          getEnv("API_KEY", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		Timezone:        getEnv("TIMEZONE", "Local"),
		PhasePolicyPath: getEnv("PHASE_POLICY_PATH", ""),
		MaxLogEntries:   getEnvInt("MAX_LOG_ENTRIES", 120),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, describe(fe))
	}
	return errors.Join(errs...)
}

func describe(fe validator.FieldError) error {
	name := fe.Field()
	switch fe.Tag() {
	case "required_if":
		return fmt.Errorf("%s is required in production", name)
	case "oneof":
		opts := strings.ReplaceAll(fe.Param(), " ", ", ")
		return fmt.Errorf("%s must be one of: %s; got %q", name, opts, fe.Value())
	case "gte", "lte":
		return fmt.Errorf("%s must be between 1 and 65535, got %v", name, fe.Value())
	case "min":
		return fmt.Errorf("%s must be at least %s, got %v", name, fe.Param(), fe.Value())
	case "zone":
		return fmt.Errorf("%s %q is not a known zone", name, fe.Value())
	default:
		return fmt.Errorf("%s failed %q check", name, fe.Tag())
	}
}

// Location returns the configured time zone, falling back to the process
// local zone if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default
// fallback. Unparseable values also fall back.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
