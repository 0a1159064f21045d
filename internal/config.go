package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Pagination    PaginationConfig    `mapstructure:"pagination"`
	Directory     DirectoryConfig     `mapstructure:"directory"`
	Client        ClientConfig        `mapstructure:"client"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Seed            bool          `mapstructure:"seed"`
}

type SecurityConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"`
	JWTRefreshSecret     string        `mapstructure:"jwt_refresh_secret"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	BCryptCost           int           `mapstructure:"bcrypt_cost"`
	AdminUsername        string        `mapstructure:"admin_username"`
	AdminPassword        string        `mapstructure:"admin_password"`
	AdminEmail           string        `mapstructure:"admin_email"`
}

type PaginationConfig struct {
	DefaultLimit int   `mapstructure:"default_limit"`
	MaxLimit     int   `mapstructure:"max_limit"`
	PageSizes    []int `mapstructure:"page_sizes"`
}

type DirectoryConfig struct {
	Departments []string `mapstructure:"departments"`
}

type ClientConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SessionFile string        `mapstructure:"session_file"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File enables rotating file output next to stdout when set.
	File         string        `mapstructure:"file"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
	MaxAge       time.Duration `mapstructure:"max_age"`
}

var DefaultDepartments = []string{
	"Sistemas",
	"Recursos Humanos",
	"Operaciones",
	"Calidad",
	"Operativo",
	"Juridica",
}

var DefaultPageSizes = []int{10, 25, 50, 100}

// DefaultConfig returns a configuration usable for local development.
func DefaultConfig() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:              8080,
			BaseURL:           "http://localhost:8080",
			AllowedOrigins:    "*",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverMemory,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Seed:            true,
		},
		Security: SecurityConfig{
			JWTSecret:            "dev-access-secret-change-me-please",
			JWTRefreshSecret:     "dev-refresh-secret-change-me-please",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 7 * 24 * time.Hour,
			BCryptCost:           10,
			AdminUsername:        "admin",
			AdminPassword:        "admin123",
			AdminEmail:           "admin@company.com",
		},
		Pagination: PaginationConfig{
			DefaultLimit: 25,
			MaxLimit:     100,
			PageSizes:    append([]int(nil), DefaultPageSizes...),
		},
		Directory: DirectoryConfig{
			Departments: append([]string(nil), DefaultDepartments...),
		},
		Client: ClientConfig{
			BaseURL:     "http://localhost:8080/api/v1",
			Timeout:     10 * time.Second,
			SessionFile: ".aura-session.json",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
			Logging: LoggingConfig{
				Level:        "info",
				Format:       "text",
				RotationTime: 24 * time.Hour,
				MaxAge:       7 * 24 * time.Hour,
			},
		},
	}
}

// LoadConfigFromEnv builds a config from plain environment variables on top of
// DefaultConfig. Used for container deployments without a config file.
func LoadConfigFromEnv() *Config {
	cfg := DefaultConfig()

	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.Server.Port = getEnvAsInt("PORT", cfg.Server.Port)
	cfg.Server.BaseURL = getEnv("BASE_URL", cfg.Server.BaseURL)
	cfg.Server.AllowedOrigins = getEnv("ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Source = getEnv("DATABASE_URL", cfg.Database.Source)
	cfg.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.Seed = getEnvAsBool("DB_SEED", cfg.Database.Seed)

	cfg.Security.JWTSecret = getEnv("JWT_SECRET", cfg.Security.JWTSecret)
	cfg.Security.JWTRefreshSecret = getEnv("JWT_REFRESH_SECRET", cfg.Security.JWTRefreshSecret)
	cfg.Security.AccessTokenDuration = getEnvAsDuration("ACCESS_TOKEN_DURATION", cfg.Security.AccessTokenDuration)
	cfg.Security.RefreshTokenDuration = getEnvAsDuration("REFRESH_TOKEN_DURATION", cfg.Security.RefreshTokenDuration)
	cfg.Security.BCryptCost = getEnvAsInt("BCRYPT_COST", cfg.Security.BCryptCost)
	cfg.Security.AdminUsername = getEnv("ADMIN_USERNAME", cfg.Security.AdminUsername)
	cfg.Security.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.Security.AdminPassword)

	cfg.Pagination.DefaultLimit = getEnvAsInt("PAGE_DEFAULT_LIMIT", cfg.Pagination.DefaultLimit)
	cfg.Pagination.MaxLimit = getEnvAsInt("PAGE_MAX_LIMIT", cfg.Pagination.MaxLimit)

	cfg.Client.BaseURL = getEnv("API_BASE_URL", cfg.Client.BaseURL)
	cfg.Client.SessionFile = getEnv("SESSION_FILE", cfg.Client.SessionFile)

	cfg.Observability.Metrics.Enabled = getEnvAsBool("METRICS_ENABLED", cfg.Observability.Metrics.Enabled)
	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)
	cfg.Observability.Logging.File = getEnv("LOG_FILE", cfg.Observability.Logging.File)

	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}
	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}
	if err := c.Pagination.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("pagination config: %v", err))
	}
	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.AllowedOrigins != "" {
		for _, origin := range strings.Split(c.AllowedOrigins, ",") {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverSQLite, DriverPostgres:
		if c.Source == "" {
			return fmt.Errorf("source is required for driver %q", c.Driver)
		}
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 16 {
		return errors.New("jwt_secret must be at least 16 characters")
	}
	if len(c.JWTRefreshSecret) < 16 {
		return errors.New("jwt_refresh_secret must be at least 16 characters")
	}
	if c.AccessTokenDuration <= 0 || c.RefreshTokenDuration <= 0 {
		return errors.New("token durations must be positive")
	}
	if c.RefreshTokenDuration < c.AccessTokenDuration {
		return errors.New("refresh_token_duration must be >= access_token_duration")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return fmt.Errorf("bcrypt_cost %d out of range", c.BCryptCost)
	}
	return nil
}

func (c *PaginationConfig) Validate() error {
	if c.DefaultLimit < 1 {
		return errors.New("default_limit must be positive")
	}
	if c.MaxLimit < c.DefaultLimit {
		return errors.New("max_limit must be >= default_limit")
	}
	for _, size := range c.PageSizes {
		if size < 1 || size > c.MaxLimit {
			return fmt.Errorf("page size %d outside 1..%d", size, c.MaxLimit)
		}
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
