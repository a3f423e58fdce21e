package main

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
		Mode string `yaml:"mode"`
	} `yaml:"server"`

	Logging struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Backend backendConfig `yaml:"backend"`

	Notify notifyConfig `yaml:"notify"`

	Database databaseConfig `yaml:"database"`

	Dashboard struct {
		StatusTimeout time.Duration `yaml:"status_timeout"`
		SessionTTL    time.Duration `yaml:"session_ttl"`
		MaxSessions   int           `yaml:"max_sessions"`
	} `yaml:"dashboard"`
}

type backendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type notifyConfig struct {
	// Provider is "emailjs" or "log".
	Provider    string        `yaml:"provider"`
	Endpoint    string        `yaml:"endpoint"`
	ServiceID   string        `yaml:"service_id"`
	TemplateID  string        `yaml:"template_id"`
	PublicKey   string        `yaml:"public_key"`
	AccessToken string        `yaml:"access_token"`
	Timeout     time.Duration `yaml:"timeout"`
}

type databaseConfig struct {
	// Driver is "mysql" or "sqlite".
	Driver string      `yaml:"driver"`
	SQLite string      `yaml:"sqlite"`
	MySQL  mysqlConfig `yaml:"mysql"`
}

const (
	defaultAddr          = ":8869"
	defaultBackendURL    = "http://127.0.0.1:8000"
	defaultEmailJSURL    = "https://api.emailjs.com/api/v1.0/email/send"
	defaultStatusTimeout = 4 * time.Second
	minStatusTimeout     = 3 * time.Second
	maxStatusTimeout     = 5 * time.Second
	defaultMaxSessions   = 10000
)

// loadConfig reads the yaml file at path (a missing file is not an error),
// overlays .env and process environment, then fills defaults.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "GOODROAD_ADDR")
	setString(&cfg.Logging.Level, "GOODROAD_LOG_LEVEL")
	setString(&cfg.Backend.BaseURL, "GOODROAD_BACKEND_URL")
	setString(&cfg.Notify.Provider, "GOODROAD_NOTIFY_PROVIDER")
	setString(&cfg.Notify.ServiceID, "GOODROAD_EMAILJS_SERVICE_ID")
	setString(&cfg.Notify.TemplateID, "GOODROAD_EMAILJS_TEMPLATE_ID")
	setString(&cfg.Notify.PublicKey, "GOODROAD_EMAILJS_PUBLIC_KEY")
	setString(&cfg.Notify.AccessToken, "GOODROAD_EMAILJS_ACCESS_TOKEN")
	setString(&cfg.Database.Driver, "GOODROAD_DB_DRIVER")
	setString(&cfg.Database.SQLite, "GOODROAD_DB_SQLITE")
	setString(&cfg.Database.MySQL.Host, "GOODROAD_DB_HOST")
	setString(&cfg.Database.MySQL.User, "GOODROAD_DB_USER")
	setString(&cfg.Database.MySQL.Pass, "GOODROAD_DB_PASS")
	setString(&cfg.Database.MySQL.DBName, "GOODROAD_DB_NAME")
	if v := strings.TrimSpace(os.Getenv("GOODROAD_DB_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.MySQL.Port = port
		}
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = defaultBackendURL
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 10 * time.Second
	}

	if cfg.Notify.Provider == "" {
		cfg.Notify.Provider = "log"
		if cfg.Notify.ServiceID != "" && cfg.Notify.TemplateID != "" && cfg.Notify.PublicKey != "" {
			cfg.Notify.Provider = "emailjs"
		}
	}
	if cfg.Notify.Endpoint == "" {
		cfg.Notify.Endpoint = defaultEmailJSURL
	}
	if cfg.Notify.Timeout <= 0 {
		cfg.Notify.Timeout = 15 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.SQLite == "" {
		cfg.Database.SQLite = "goodroad.db"
	}
	if cfg.Database.MySQL.Port == 0 {
		cfg.Database.MySQL.Port = 3306
	}

	switch {
	case cfg.Dashboard.StatusTimeout <= 0:
		cfg.Dashboard.StatusTimeout = defaultStatusTimeout
	case cfg.Dashboard.StatusTimeout < minStatusTimeout:
		cfg.Dashboard.StatusTimeout = minStatusTimeout
	case cfg.Dashboard.StatusTimeout > maxStatusTimeout:
		cfg.Dashboard.StatusTimeout = maxStatusTimeout
	}
	if cfg.Dashboard.SessionTTL <= 0 {
		cfg.Dashboard.SessionTTL = 2 * time.Hour
	}
	if cfg.Dashboard.MaxSessions <= 0 {
		cfg.Dashboard.MaxSessions = defaultMaxSessions
	}
}
