package config

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	Env         string `env:"APP_ENV,default=development"`
	Secret      string `env:"SECRET,default=dev_secret"`
	HTTPPort    string `env:"HTTP_PORT,default=8080"`
	DBDriver    string `env:"DB_DRIVER,default=sqlite"`
	DatabaseDSN string `env:"DATABASE_DSN"`
	RedisURL    string `env:"REDIS_URL"`

	StoreName        string `env:"STORE_NAME,default=Food Truck"`
	StoreWhatsApp    string `env:"STORE_WHATSAPP"`
	PhoneCountryCode string `env:"PHONE_COUNTRY_CODE,default=55"`
	Currency         string `env:"CURRENCY,default=R$"`
	Timezone         string `env:"TIMEZONE,default=America/Sao_Paulo"`

	MenuCSV       string `env:"MENU_CSV,default=assets/menu.csv"`
	AdminEmail    string `env:"ADMIN_EMAIL,default=admin@foodtruck.local"`
	AdminPassword string `env:"ADMIN_PASSWORD,default=admin123"`

	WebOrderRPS   float64 `env:"WEB_ORDER_RPS,default=0.2"`
	WebOrderBurst int     `env:"WEB_ORDER_BURST,default=3"`

	ShiftAutoCloseCron string `env:"SHIFT_AUTOCLOSE_CRON"`
	LowStockCron       string `env:"LOW_STOCK_CRON,default=@every 30m"`
	CORSOrigins        string `env:"CORS_ORIGINS,default=*"`
	TrustedProxies     string `env:"TRUSTED_PROXIES"`
}

// Load reads configuration from .env and environment variables with reasonable defaults.
func Load() Config {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		log.Printf("invalid configuration: %v", err)
	}
	return normalize(cfg)
}

func normalize(cfg Config) Config {
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.Secret == "" {
		cfg.Secret = "dev_secret"
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", cfg.HTTPPort)
		cfg.HTTPPort = "8080"
	}

	switch cfg.DBDriver {
	case "postgres", "postgresql":
		cfg.DBDriver = "pgx"
	case "pgx", "sqlite":
	default:
		log.Printf("unknown DB_DRIVER %q, defaulting to sqlite", cfg.DBDriver)
		cfg.DBDriver = "sqlite"
	}
	if cfg.DatabaseDSN == "" && cfg.DBDriver == "sqlite" {
		cfg.DatabaseDSN = "file:foodtruck.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	}

	if cfg.WebOrderRPS <= 0 {
		cfg.WebOrderRPS = 0.2
	}
	if cfg.WebOrderBurst <= 0 {
		cfg.WebOrderBurst = 3
	}
	return cfg
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("invalid TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	out := splitList(c.CORSOrigins)
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// Proxies lists the TRUSTED_PROXIES addresses or CIDRs whose forwarding
// headers are believed. Empty means requests are keyed on the peer address.
func (c Config) Proxies() []string {
	return splitList(c.TrustedProxies)
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
