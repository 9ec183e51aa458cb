package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Sweep      SweepConfig      `mapstructure:"sweep"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

type DeploymentConfig struct {
	Mode string `mapstructure:"mode"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// SweepConfig controls the periodic lesson auto-advance job.
type SweepConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type CacheConfig struct {
	BalanceExpiry time.Duration `mapstructure:"balance_expiry"`
}

// NewConfig loads configuration from config files and TUTORPILOT_* env vars.
// A missing config file is not an error; env vars and defaults suffice.
func NewConfig() (*Configuration, error) {
	// Best effort .env load for local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("tutorpilot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", "api")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "tutorpilot")
	v.SetDefault("postgres.dbname", "tutorpilot")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("logging.level", "info")
	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.interval", time.Hour)
	v.SetDefault("cache.balance_expiry", 30*time.Minute)
}

// DSN renders the Postgres connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
