package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	Finance struct {
		// TaxRate is the fraction applied on top of subtotals, e.g. 0.16.
		TaxRate float64 `mapstructure:"tax_rate"`
		// BatchWorkers is the recalculation worker pool size.
		BatchWorkers int `mapstructure:"batch_workers"`
		// BatchLimit caps how many events one batch run picks up. 0 = no cap.
		BatchLimit int `mapstructure:"batch_limit"`
		// SnapshotTTLSeconds is how long cached snapshots stay fresh in Redis.
		SnapshotTTLSeconds int `mapstructure:"snapshot_ttl_seconds"`
	} `mapstructure:"finance"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "eventos_db")
	v.SetDefault("finance.tax_rate", 0.16)
	v.SetDefault("finance.batch_workers", 4)
	v.SetDefault("finance.batch_limit", 0)
	v.SetDefault("finance.snapshot_ttl_seconds", 300)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	// Override tax rate from environment, for per-deployment fiscal regimes
	if rate := os.Getenv("FINANCE_TAX_RATE"); rate != "" {
		if f, err := strconv.ParseFloat(rate, 64); err == nil && f > 0 {
			cfg.Finance.TaxRate = f
		}
	}
	if workers := os.Getenv("FINANCE_BATCH_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			cfg.Finance.BatchWorkers = n
		}
	}

	if cfg.Finance.BatchWorkers <= 0 {
		cfg.Finance.BatchWorkers = 4
	}

	return &cfg
}
