package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Session    SessionConfig    `yaml:"session"`
	Billing    BillingConfig    `yaml:"billing"`
	Overdue    OverdueConfig    `yaml:"overdue"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// SessionConfig holds the server-side session store configuration.
type SessionConfig struct {
	TTLMinutes     int           `yaml:"ttl_minutes"`
	CleanupMinutes int           `yaml:"cleanup_minutes"`
	CookieName     string        `yaml:"cookie_name"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	TTL            time.Duration `yaml:"-"`
	Cleanup        time.Duration `yaml:"-"`
}

// BillingConfig holds invoice generation defaults. The usage limits flag
// abnormally high consumption for operator confirmation; they never
// block a save outright.
type BillingConfig struct {
	WaterUsageWarnLimit    float64 `yaml:"water_usage_warn_limit"`
	ElectricUsageWarnLimit float64 `yaml:"electric_usage_warn_limit"`
	DueDays                int     `yaml:"due_days"`
}

// OverdueConfig controls the background sweep that marks pending
// invoices past their due date as overdue.
type OverdueConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalMinutes int           `yaml:"interval_minutes"`
	Interval        time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Session.TTLMinutes <= 0 {
		cfg.Session.TTLMinutes = 720
	}
	if cfg.Session.CleanupMinutes <= 0 {
		cfg.Session.CleanupMinutes = 60
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "dorm_session"
	}
	cfg.Session.TTL = time.Duration(cfg.Session.TTLMinutes) * time.Minute
	cfg.Session.Cleanup = time.Duration(cfg.Session.CleanupMinutes) * time.Minute

	if cfg.Billing.WaterUsageWarnLimit <= 0 {
		cfg.Billing.WaterUsageWarnLimit = 50
	}
	if cfg.Billing.ElectricUsageWarnLimit <= 0 {
		cfg.Billing.ElectricUsageWarnLimit = 1000
	}
	if cfg.Billing.DueDays <= 0 {
		cfg.Billing.DueDays = 7
	}

	if cfg.Overdue.IntervalMinutes <= 0 {
		cfg.Overdue.IntervalMinutes = 60
	}
	cfg.Overdue.Interval = time.Duration(cfg.Overdue.IntervalMinutes) * time.Minute

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
