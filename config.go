package atelier

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs. Values come from a YAML file
// when one exists, with environment variables taking precedence so a
// containerized deploy can override the file without editing it.
type Config struct {
	SiteName   string `yaml:"site_name"`
	Addr       string `yaml:"addr"`
	DataDir    string `yaml:"data_dir"`
	UploadsDir string `yaml:"uploads_dir"`

	// DatabaseURL switches persistence to Postgres when non-empty.
	DatabaseURL string `yaml:"database_url"`

	// AdminPasswordHash is a bcrypt hash and wins over AdminPassword
	// when both are set.
	AdminPassword     string `yaml:"admin_password"`
	AdminPasswordHash string `yaml:"admin_password_hash"`

	SessionSecret string        `yaml:"session_secret"`
	TokenSecret   string        `yaml:"token_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`

	CookieSecure bool `yaml:"cookie_secure"`

	// AnalyticsRetentionDays bounds how far back day records are kept.
	AnalyticsRetentionDays int `yaml:"analytics_retention_days"`
}

const defaultConfigPath = "atelier.yaml"

// LoadConfig reads configuration in three layers: a .env file if present,
// a YAML config file (the given path, or ./atelier.yaml when path is
// empty), then environment variable overrides. Only an explicitly
// requested file is required to exist.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no file, run on env + defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setIfEnv(&c.SiteName, "SITE_NAME")
	setIfEnv(&c.Addr, "ADDR")
	setIfEnv(&c.DataDir, "DATA_DIR")
	setIfEnv(&c.UploadsDir, "UPLOADS_DIR")
	setIfEnv(&c.DatabaseURL, "DATABASE_URL")
	setIfEnv(&c.AdminPassword, "ADMIN_PASSWORD")
	setIfEnv(&c.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	setIfEnv(&c.SessionSecret, "SESSION_SECRET")
	setIfEnv(&c.TokenSecret, "TOKEN_SECRET")

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.TokenTTL = d
		}
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.CookieSecure = b
		}
	}
	if v := os.Getenv("ANALYTICS_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.AnalyticsRetentionDays = n
		}
	}
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.SiteName == "" {
		c.SiteName = "Atelier"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "public/uploads"
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 12 * time.Hour
	}
	if c.AnalyticsRetentionDays <= 0 {
		c.AnalyticsRetentionDays = 365
	}
}

// Validate rejects configurations that would start an unusable or
// unsecurable server.
func (c *Config) Validate() error {
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return errors.New("config: ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}
	if c.SessionSecret == "" {
		return errors.New("config: SESSION_SECRET must be set")
	}
	if c.TokenSecret == "" {
		return errors.New("config: TOKEN_SECRET must be set")
	}
	return nil
}
