package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings. Values come from environment variables
// (GROUNDWORK_ prefix) with an optional config file for local development.
type Config struct {
	Env      string `mapstructure:"env"`
	HTTPAddr string `mapstructure:"http_addr"`

	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Payroll  PayrollConfig  `mapstructure:"payroll"`
	Queue    QueueConfig    `mapstructure:"queue"`
}

type DatabaseConfig struct {
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// ReferenceTTLSeconds bounds how stale a last-known-good reference
	// snapshot may be before reads fail instead of degrading.
	ReferenceTTLSeconds int `mapstructure:"reference_ttl_seconds"`
}

type PayrollConfig struct {
	// PayDateOffsetMonths is how long after period end payment is due.
	PayDateOffsetMonths int `mapstructure:"pay_date_offset_months"`
}

type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	Depth   int `mapstructure:"depth"`
}

// Load reads configuration from the environment and an optional
// groundwork.yaml in the working directory.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GROUNDWORK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("groundwork")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("env", "development")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_seconds", 1800)
	v.SetDefault("redis.reference_ttl_seconds", 3600)
	v.SetDefault("payroll.pay_date_offset_months", 1)
	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.depth", 64)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
