package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// AppConfig holds file and environment driven configuration values.
// Secrets (database password, redis password, AWS credentials) should come from the environment.
type AppConfig struct {
	App      AppSection      `json:"app"`
	Gin      GinSection      `json:"gin"`
	Database DatabaseSection `json:"database"`
	Redis    RedisSection    `json:"redis"`
	Log      LogSection      `json:"log"`
	Checkin  CheckinSection  `json:"checkin"`
	Insights InsightsSection `json:"insights"`
}

// AppSection holds HTTP server settings.
type AppSection struct {
	Port               string   `json:"port"                  env:"APP_PORT"              env-default:"8080"`
	TimeZone           string   `json:"time_zone"             env:"APP_TIME_ZONE"`
	AllowedOrigins     []string `json:"allowed_origins"       env:"ALLOWED_ORIGINS"       env-default:"*"`
	RateLimitPerMinute int      `json:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE" env-default:"30"`
}

// GinSection configures the gin engine.
type GinSection struct {
	Mode    string `json:"mode"     env:"GIN_MODE"     env-default:"release"`
	LogPath string `json:"log_path" env:"GIN_LOG_PATH" env-default:"logs/go_gin.log"`
}

// DatabaseSection describes the relational store holding members and check-ins.
type DatabaseSection struct {
	Driver          string        `json:"driver"             env:"DB_DRIVER"             env-default:"mysql"`
	URI             string        `json:"uri"                env:"DATABASE_URI"`
	Host            string        `json:"host"               env:"DB_HOST"               env-default:"127.0.0.1"`
	Port            string        `json:"port"               env:"DB_PORT"`
	User            string        `json:"user"               env:"DB_USER"               env-default:"root"`
	Password        string        `json:"password"           env:"DB_PASSWORD"`
	Name            string        `json:"name"               env:"DB_NAME"               env-default:"gym"`
	MaxIdleConns    int           `json:"max_idle_conns"     env:"DB_MAX_IDLE_CONNS"     env-default:"5"`
	MaxOpenConns    int           `json:"max_open_conns"     env:"DB_MAX_OPEN_CONNS"     env-default:"20"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"  env:"DB_CONN_MAX_LIFETIME"  env-default:"30m"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME" env-default:"10m"`
	AutoMigrate     bool          `json:"auto_migrate"       env:"DB_AUTO_MIGRATE"       env-default:"true"`
}

// RedisSection is optional; an empty host disables redis-backed features.
type RedisSection struct {
	Host     string `json:"host"     env:"REDIS_HOST"`
	Port     int    `json:"port"     env:"REDIS_PORT"     env-default:"6379"`
	DB       int    `json:"db"       env:"REDIS_DB"`
	Password string `json:"password" env:"REDIS_PASSWORD"`
}

// LogSection configures zap and the rolling log files.
type LogSection struct {
	Level      string `json:"level"        env:"LOG_LEVEL"        env-default:"info"`
	Path       string `json:"path"         env:"LOG_PATH"`
	MaxSizeMB  int    `json:"max_size_mb"  env:"LOG_MAX_SIZE_MB"  env-default:"100"`
	MaxBackups int    `json:"max_backups"  env:"LOG_MAX_BACKUPS"  env-default:"3"`
	MaxAgeDays int    `json:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"7"`
	Compress   bool   `json:"compress"     env:"LOG_COMPRESS"`
}

// CheckinSection holds check-in rules.
type CheckinSection struct {
	CooldownSeconds int `json:"cooldown_seconds" env:"CHECKIN_COOLDOWN_SECONDS" env-default:"60"`
	RecentLimit     int `json:"recent_limit"     env:"CHECKIN_RECENT_LIMIT"     env-default:"30"`
	SummaryDays     int `json:"summary_days"     env:"CHECKIN_SUMMARY_DAYS"     env-default:"14"`
}

// InsightsSection configures the Bedrock text generation call.
// Region and ModelID have no defaults on purpose: their absence disables insights.
type InsightsSection struct {
	AWSRegion   string  `json:"aws_region"  env:"AWS_REGION"`
	ModelID     string  `json:"model_id"    env:"BEDROCK_MODEL_ID"`
	MaxTokens   int64   `json:"max_tokens"  env:"INSIGHTS_MAX_TOKENS"  env-default:"250"`
	Temperature float64 `json:"temperature" env:"INSIGHTS_TEMPERATURE" env-default:"0.3"`
	WindowDays  int     `json:"window_days" env:"INSIGHTS_WINDOW_DAYS" env-default:"14"`
	// CacheSeconds reuses generated text for unchanged data when redis is enabled. Off by default.
	CacheSeconds int `json:"cache_seconds" env:"INSIGHTS_CACHE_SECONDS" env-default:"0"`
}

var (
	cfg    AppConfig
	loaded bool
	mu     sync.Mutex
)

// Load loads the application configuration once during boot and exits the process on error.
// Precedence: environment variables -> config file -> env-default tags.
func Load() AppConfig {
	mu.Lock()
	defer mu.Unlock()
	if loaded {
		return cfg
	}

	c, err := LoadFrom(configPath())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg = c
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	mu.Lock()
	ok := loaded
	mu.Unlock()
	if !ok {
		return Load()
	}
	return cfg
}

// LoadFrom reads the given file (when it exists) and the environment into a validated AppConfig.
func LoadFrom(path string) (AppConfig, error) {
	var c AppConfig
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &c); err != nil {
				return AppConfig{}, fmt.Errorf("read %s: %w", path, err)
			}
			return c, c.Validate()
		}
	}
	if err := cleanenv.ReadEnv(&c); err != nil {
		return AppConfig{}, fmt.Errorf("read env: %w", err)
	}
	return c, c.Validate()
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return filepath.Join("config", "config.json")
}

// Validate checks values that cannot be expressed as defaults.
func (c *AppConfig) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be mysql, postgres or sqlite (got %q)", c.Database.Driver)
	}
	if c.Checkin.CooldownSeconds < 0 {
		return fmt.Errorf("checkin.cooldown_seconds must be >= 0 (got %d)", c.Checkin.CooldownSeconds)
	}
	if c.Checkin.SummaryDays < 1 || c.Checkin.SummaryDays > 90 {
		return fmt.Errorf("checkin.summary_days must be within 1..90 (got %d)", c.Checkin.SummaryDays)
	}
	if c.Insights.WindowDays < 1 || c.Insights.WindowDays > 90 {
		return fmt.Errorf("insights.window_days must be within 1..90 (got %d)", c.Insights.WindowDays)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("app.time_zone: %w", err)
	}
	return nil
}

// Location resolves the time zone used for every day/hour boundary. Empty means process local.
func (c AppConfig) Location() (*time.Location, error) {
	if c.App.TimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.App.TimeZone)
}

// CooldownInterval returns the minimum interval between two check-ins of the same member.
func (c AppConfig) CooldownInterval() time.Duration {
	return time.Duration(c.Checkin.CooldownSeconds) * time.Second
}

// InsightsConfigured reports whether both deployment settings for generation are present.
func (c AppConfig) InsightsConfigured() bool {
	return c.Insights.AWSRegion != "" && c.Insights.ModelID != ""
}

// RedisEnabled reports whether a redis host was configured.
func (c AppConfig) RedisEnabled() bool {
	return c.Redis.Host != ""
}
