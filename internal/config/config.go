package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Gateway drivers
const (
	GatewayMemory   = "memory"
	GatewayPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Gateway   GatewayConfig
	Display   DisplayConfig
	Sales     SalesConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
	MigrationsDir  string
	LogLevel       string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// Addr returns host:port
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type GatewayConfig struct {
	Driver          string
	Latency         time.Duration
	CacheTTL        time.Duration
	RefreshInterval time.Duration
}

type DisplayConfig struct {
	Locale         string
	CurrencySymbol string
	FractionDigits int
}

type SalesConfig struct {
	DefaultTaxPct   float64
	DefaultPageSize int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("GATEWAY_DRIVER", GatewayMemory)
	v.SetDefault("GATEWAY_LATENCY_MS", 300)
	v.SetDefault("CACHE_TTL_SECONDS", 60)
	v.SetDefault("REFRESH_INTERVAL_SECONDS", 0)
	v.SetDefault("LOCALE", "es-CL")
	v.SetDefault("CURRENCY_SYMBOL", "$")
	v.SetDefault("CURRENCY_FRACTION_DIGITS", 0)
	v.SetDefault("DEFAULT_TAX_PCT", 19)
	v.SetDefault("DEFAULT_PAGE_SIZE", 12)
	v.SetDefault("RATE_LIMIT_REQUESTS", 120)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
}

// Load reads configuration from ./.env and the environment
func Load() *Config {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) *Config {
	setDefaults(v)

	var origins []string
	for _, o := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			AllowedOrigins: origins,
			MigrationsDir:  v.GetString("MIGRATIONS_DIR"),
			LogLevel:       v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_DATABASE"),
			Schema:   v.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Enabled:  v.GetBool("REDIS_ENABLED"),
		},
		Gateway: GatewayConfig{
			Driver:          strings.ToLower(v.GetString("GATEWAY_DRIVER")),
			Latency:         time.Duration(v.GetInt("GATEWAY_LATENCY_MS")) * time.Millisecond,
			CacheTTL:        time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
			RefreshInterval: time.Duration(v.GetInt("REFRESH_INTERVAL_SECONDS")) * time.Second,
		},
		Display: DisplayConfig{
			Locale:         v.GetString("LOCALE"),
			CurrencySymbol: v.GetString("CURRENCY_SYMBOL"),
			FractionDigits: v.GetInt("CURRENCY_FRACTION_DIGITS"),
		},
		Sales: SalesConfig{
			DefaultTaxPct:   v.GetFloat64("DEFAULT_TAX_PCT"),
			DefaultPageSize: v.GetInt("DEFAULT_PAGE_SIZE"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
	}
}
