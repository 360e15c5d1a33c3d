package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// AppName names the data directory under the XDG data home.
const AppName = "worklog"

type Config struct {
	Env         string         `yaml:"env" env:"WORKLOG_ENV" env-default:"local"`
	StoragePath string         `yaml:"storage_path" env:"WORKLOG_STORAGE_PATH"`
	Log         LogConfig      `yaml:"log"`
	HTTP        HTTPConfig     `yaml:"http"`
	Auth        AuthConfig     `yaml:"auth"`
	Ledger      LedgerConfig   `yaml:"ledger"`
	Resolver    ResolverConfig `yaml:"resolver"`
	Mail        MailConfig     `yaml:"mail"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"WORKLOG_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"WORKLOG_LOG_FORMAT" env-default:"auto"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"WORKLOG_HTTP_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"WORKLOG_HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"WORKLOG_HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WORKLOG_HTTP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"WORKLOG_HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"WORKLOG_HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	AllowedOrigin   string        `yaml:"allowed_origin" env:"WORKLOG_HTTP_ALLOWED_ORIGIN" env-default:"*"`
}

// Addr returns the listen address.
func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret" env:"WORKLOG_JWT_SECRET" env-required:"true"`
	TokenTTL    time.Duration `yaml:"token_ttl" env:"WORKLOG_TOKEN_TTL" env-default:"24h"`
	RememberTTL time.Duration `yaml:"remember_ttl" env:"WORKLOG_REMEMBER_TTL" env-default:"720h"`
	ResetTTL    time.Duration `yaml:"reset_ttl" env:"WORKLOG_RESET_TTL" env-default:"24h"`
	BcryptCost  int           `yaml:"bcrypt_cost" env:"WORKLOG_BCRYPT_COST" env-default:"12"`
	AppURL      string        `yaml:"app_url" env:"WORKLOG_APP_URL" env-default:"http://localhost:3000"`
	MaxAttempts int           `yaml:"max_login_attempts" env:"WORKLOG_MAX_LOGIN_ATTEMPTS" env-default:"5"`
	LockoutTTL  time.Duration `yaml:"lockout_ttl" env:"WORKLOG_LOCKOUT_TTL" env-default:"15m"`
}

type LedgerConfig struct {
	DefaultLimit int     `yaml:"default_limit" env:"WORKLOG_DEFAULT_LIMIT" env-default:"50"`
	MaxLimit     int     `yaml:"max_limit" env:"WORKLOG_MAX_LIMIT" env-default:"500"`
	DefaultRate  float64 `yaml:"default_rate" env:"WORKLOG_DEFAULT_RATE" env-default:"25"`
	Timezone     string  `yaml:"timezone" env:"WORKLOG_TIMEZONE"`
}

// Location resolves the configured timezone; empty means the local zone.
func (c LedgerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

type ResolverConfig struct {
	Timeout     time.Duration `yaml:"timeout" env:"WORKLOG_RESOLVER_TIMEOUT" env-default:"2s"`
	MaxAttempts int           `yaml:"max_attempts" env:"WORKLOG_RESOLVER_MAX_ATTEMPTS" env-default:"3"`
	RetryDelay  time.Duration `yaml:"retry_delay" env:"WORKLOG_RESOLVER_RETRY_DELAY" env-default:"50ms"`
}

type MailConfig struct {
	DispatchInterval time.Duration `yaml:"dispatch_interval" env:"WORKLOG_MAIL_DISPATCH_INTERVAL" env-default:"30s"`
	BatchSize        int           `yaml:"batch_size" env:"WORKLOG_MAIL_BATCH_SIZE" env-default:"50"`
}

// LoadConfig reads an optional .env file, then the YAML file at path with
// environment overrides. An empty path reads the environment only.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from environment: %w", err)
		}
	} else {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if cfg.StoragePath == "" {
		cfg.StoragePath = DefaultStoragePath()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultStoragePath returns the database location under the XDG data home.
func DefaultStoragePath() string {
	return filepath.Join(xdg.DataHome, AppName, AppName+".db")
}

func (c *Config) validate() error {
	switch {
	case c.HTTP.Port <= 0 || c.HTTP.Port > 65535:
		return fmt.Errorf("invalid http.port %d", c.HTTP.Port)
	case c.Ledger.DefaultLimit <= 0:
		return fmt.Errorf("ledger.default_limit must be positive")
	case c.Ledger.MaxLimit < c.Ledger.DefaultLimit:
		return fmt.Errorf("ledger.max_limit must be at least ledger.default_limit")
	case c.Ledger.DefaultRate < 0:
		return fmt.Errorf("ledger.default_rate must not be negative")
	case c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31:
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31")
	case c.Resolver.MaxAttempts <= 0:
		return fmt.Errorf("resolver.max_attempts must be positive")
	case c.Resolver.Timeout <= 0:
		return fmt.Errorf("resolver.timeout must be positive")
	case c.Auth.MaxAttempts <= 0:
		return fmt.Errorf("auth.max_login_attempts must be positive")
	case c.Mail.DispatchInterval <= 0 || c.Mail.BatchSize <= 0:
		return fmt.Errorf("mail.dispatch_interval and mail.batch_size must be positive")
	}
	if _, err := c.Ledger.Location(); err != nil {
		return err
	}
	return nil
}
