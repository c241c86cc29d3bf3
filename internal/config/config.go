package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string   `yaml:"port" env:"SERVER_PORT"`
		Mode         string   `yaml:"mode" env:"SERVER_MODE"`
		PublicURL    string   `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
		CORSOrigins  []string `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
		CookieSecure bool     `yaml:"cookie_secure" env:"SERVER_COOKIE_SECURE"`
		MaxUploadMB  int      `yaml:"max_upload_mb" env:"SERVER_MAX_UPLOAD_MB"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	JWT struct {
		Secret          string `yaml:"secret" env:"JWT_SECRET"`
		TokenExpiration string `yaml:"token_expiration" env:"JWT_TOKEN_EXPIRATION"`
		Issuer          string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Storage struct {
		Driver    string `yaml:"driver" env:"STORAGE_DRIVER"`
		LocalPath string `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`
		S3        struct {
			Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
			AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
			SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
			Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
			Region    string `yaml:"region" env:"S3_REGION"`
			UseSSL    bool   `yaml:"use_ssl" env:"S3_USE_SSL"`
			PublicURL string `yaml:"public_url" env:"S3_PUBLIC_URL"`
		} `yaml:"s3"`
	} `yaml:"storage"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
		AdminFullname string `yaml:"admin_fullname" env:"SEED_ADMIN_FULLNAME"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a .env file, a YAML file and the
// environment, in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is the normal case outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			file, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.CORSOrigins = []string{"http://localhost:3000"}
	config.Server.CookieSecure = true
	config.Server.MaxUploadMB = 20

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "edutech"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.AutoMigrate = true

	config.JWT.TokenExpiration = "24h"
	config.JWT.Issuer = "edutech"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Storage.Driver = StorageDriverLocal
	config.Storage.LocalPath = "uploads"

	config.SMTP.Port = 587
	config.SMTP.FromName = "EduTech"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.TokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT token expiration format: %w", err)
	}

	switch config.Storage.Driver {
	case StorageDriverLocal:
		if config.Storage.LocalPath == "" {
			return fmt.Errorf("storage local_path is required for the local driver")
		}
	case StorageDriverS3:
		if config.Storage.S3.Endpoint == "" || config.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage s3 endpoint and bucket are required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if config.Seed.AdminEmail != "" && config.Seed.AdminPassword == "" {
		return fmt.Errorf("seed admin_password is required when admin_email is set")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     "/" + c.Database.DBName,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// MaxUploadBytes is the per-file upload limit, also handed to gin as the
// multipart memory limit
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}
