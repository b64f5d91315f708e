package config

import (
	"fmt"
	"os"
	"time"

	"github.com/flashdeck/flashdeck-api/pkg/validator"
	"github.com/spf13/viper"
)

type Config struct {
	App  AppConfig  `mapstructure:"app" validate:"required"`
	DB   DBConfig   `mapstructure:"db" validate:"required"`
	Auth AuthConfig `mapstructure:"auth" validate:"required"`
	Env  string     `mapstructure:"env" validate:"oneof=development production staging"`
}

type AppConfig struct {
	Port           string        `mapstructure:"port" validate:"required"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	SessionTTL     time.Duration `mapstructure:"session_ttl" validate:"min=1m"`
	RedisAddr      string        `mapstructure:"redis_addr"`
}

type DBConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	DSN             string        `mapstructure:"dsn" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"min=1,max=1000"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"min=0,max=100"`
	ConnMaxLifeTime time.Duration `mapstructure:"conn_max_life_time" validate:"min=0"`
}

type AuthConfig struct {
	Secret       string        `mapstructure:"secret" validate:"required,min=32"`
	Issuer       string        `mapstructure:"issuer" validate:"required"`
	Audience     string        `mapstructure:"audience" validate:"required"`
	TokenTTL     time.Duration `mapstructure:"token_ttl" validate:"min=1m"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

func Init() (*Config, error) {
	v := viper.New()

	v.AutomaticEnv()

	configName := os.Getenv("CONFIG_NAME")
	if configName == "" {
		configName = "default"
	}

	v.AddConfigPath("configs")
	v.SetConfigName(configName)

	v.SetDefault("env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.session_ttl", time.Hour)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_life_time", time.Hour)
	v.SetDefault("auth.issuer", "flashdeck-api")
	v.SetDefault("auth.audience", "flashdeck")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	if err := v.BindEnv("app.port", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind PORT: %w", err)
	}
	if err := v.BindEnv("app.redis_addr", "REDIS_ADDR"); err != nil {
		return nil, fmt.Errorf("failed to bind REDIS_ADDR: %w", err)
	}
	if err := v.BindEnv("db.driver", "DB_DRIVER"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_DRIVER: %w", err)
	}
	if err := v.BindEnv("db.dsn", "DB_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_URL: %w", err)
	}
	if err := v.BindEnv("auth.secret", "JWT_SECRET_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind JWT_SECRET_KEY: %w", err)
	}
	if err := v.BindEnv("env", "APP_ENV"); err != nil {
		return nil, fmt.Errorf("failed to bind APP_ENV: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		// A config file is optional; env vars and defaults carry a
		// deployment without one.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Config{}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.ValidateStruct(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
