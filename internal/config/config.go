// Package config loads the authd server configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration, decoded from YAML. Secrets may
// also arrive via environment variables, which win over the file.
type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	JWT struct {
		Secret     string        `yaml:"secret"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		RefreshTTL time.Duration `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Redis struct {
		Addr      string        `yaml:"addr"`
		Password  string        `yaml:"password"`
		DB        int           `yaml:"db"`
		KeyPrefix string        `yaml:"key_prefix"`
		OpTimeout time.Duration `yaml:"op_timeout"`
	} `yaml:"redis"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`

	Verification struct {
		LinkBase    string `yaml:"link_base"`
		MailSubject string `yaml:"mail_subject"`
	} `yaml:"verification"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Environment variables that override file values.
const (
	EnvJWTSecret     = "ADMINAUTH_JWT_SECRET"
	EnvRedisPassword = "ADMINAUTH_REDIS_PASSWORD"
	EnvPostgresDSN   = "ADMINAUTH_POSTGRES_DSN"
	EnvSMTPPassword  = "ADMINAUTH_SMTP_PASSWORD"
)

// Load reads path, applies defaults and environment overrides, and validates.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv(EnvPostgresDSN); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv(EnvSMTPPassword); v != "" {
		c.SMTP.Password = v
	}
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret not configured; set jwt.secret or " + EnvJWTSecret)
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres dsn not configured; set postgres.dsn or " + EnvPostgresDSN)
	}
	if c.SMTP.Host == "" {
		return errors.New("smtp host not configured")
	}
	if c.SMTP.From == "" {
		return errors.New("smtp from address not configured")
	}
	if c.Verification.LinkBase == "" {
		return errors.New("verification link base not configured")
	}
	return nil
}
