package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds all configuration for the application
type Config struct {
	// Environment: development, production or test
	Environment string `validate:"oneof=development production test"`

	Server   ServerConfig
	Auth     AuthConfig
	Client   ClientConfig
	Relay    RelayConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int `validate:"min=1,max=65535"`
}

// AuthConfig holds credential lifetimes and the token signing secret
type AuthConfig struct {
	JWTSecret     string        `validate:"required"`
	TokenTTL      time.Duration `validate:"required"`
	SessionTTL    time.Duration `validate:"required"`
	SweepSchedule string        `validate:"required,cron_expr"`
}

// ClientConfig holds browser client configuration
type ClientConfig struct {
	Origin string `validate:"required"`
}

// RelayConfig holds upstream endpoints for the bot token relay and the
// workflow-trigger proxy. Both are optional; the handlers report an
// error when called unconfigured.
type RelayConfig struct {
	DirectLineTokenEndpoint string
	PowerAutomateFlowURL    string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string `validate:"required"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// fileConfig mirrors the optional YAML config file. Environment
// variables override file values; file values override defaults.
type fileConfig struct {
	Environment             string `yaml:"environment"`
	Port                    string `yaml:"port"`
	JWTSecret               string `yaml:"jwt_secret"`
	TokenTTL                string `yaml:"token_ttl"`
	SessionTTL              string `yaml:"session_ttl"`
	SweepSchedule           string `yaml:"sweep_schedule"`
	ClientOrigin            string `yaml:"client_origin"`
	DirectLineTokenEndpoint string `yaml:"direct_line_token_endpoint"`
	PowerAutomateFlowURL    string `yaml:"power_automate_flow_url"`
	DatabaseURL             string `yaml:"database_url"`
	LogLevel                string `yaml:"log_level"`
	LogFormat               string `yaml:"log_format"`
}

// Load loads configuration from environment variables and an optional
// YAML config file (ENGAGED_CONFIG, default engaged.yaml)
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	file, err := loadFile()
	if err != nil {
		return nil, err
	}

	environment := resolve("APP_ENV", file.Environment, EnvDevelopment)
	isDevelopment := environment != EnvProduction

	// Production refuses to start without an explicit secret and origin
	if !isDevelopment {
		var missing []string
		if resolve("JWT_SECRET", file.JWTSecret, "") == "" {
			missing = append(missing, "JWT_SECRET")
		}
		if resolve("CLIENT_ORIGIN", file.ClientOrigin, "") == "" {
			missing = append(missing, "CLIENT_ORIGIN")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
		}
	}

	port, err := strconv.Atoi(resolve("PORT", file.Port, "4000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	tokenTTL, err := time.ParseDuration(resolve("TOKEN_TTL", file.TokenTTL, "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	sessionTTL, err := time.ParseDuration(resolve("SESSION_TTL", file.SessionTTL, "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	cfg := &Config{
		Environment: environment,
		Server: ServerConfig{
			Port: port,
		},
		Auth: AuthConfig{
			JWTSecret:     resolve("JWT_SECRET", file.JWTSecret, "demo-secret-key-change-in-production"),
			TokenTTL:      tokenTTL,
			SessionTTL:    sessionTTL,
			SweepSchedule: resolve("SWEEP_SCHEDULE", file.SweepSchedule, "*/15 * * * *"),
		},
		Client: ClientConfig{
			Origin: resolve("CLIENT_ORIGIN", file.ClientOrigin, "http://localhost:3000"),
		},
		Relay: RelayConfig{
			DirectLineTokenEndpoint: resolve("DIRECT_LINE_TOKEN_ENDPOINT", file.DirectLineTokenEndpoint, ""),
			PowerAutomateFlowURL:    resolve("POWER_AUTOMATE_FLOW_URL", file.PowerAutomateFlowURL, ""),
		},
		Database: DatabaseConfig{
			URL: resolve("DATABASE_URL", file.DatabaseURL, "engaged.sqlite"),
		},
		Logging: LoggingConfig{
			Level:  resolve("LOG_LEVEL", file.LogLevel, "info"),
			Format: resolve("LOG_FORMAT", file.LogFormat, "json"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func loadFile() (fileConfig, error) {
	var file fileConfig

	path := os.Getenv("ENGAGED_CONFIG")
	if path == "" {
		path = "engaged.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return file, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return file, nil
}

// resolve picks the environment value, then the config file value, then
// the default
func resolve(envKey, fileValue, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

func validate(cfg *Config) error {
	v := validator.New()

	// Sweep schedules are standard 5-field cron expressions
	if err := v.RegisterValidation("cron_expr", func(fl validator.FieldLevel) bool {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		_, err := parser.Parse(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}

	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
