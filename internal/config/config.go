package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	CORS      CORSConfig      `yaml:"cors"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type AuthConfig struct {
	// TokenSecret signs every session credential. Rotating it invalidates
	// all outstanding sessions.
	TokenSecret string `yaml:"token_secret"`
}

type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled"`
	Default int           `yaml:"default"`
	Window  time.Duration `yaml:"window"`
}

type SchedulerConfig struct {
	// ShutdownGrace bounds how long shutdown waits for deferred sends and
	// standup flushes still in flight.
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"` // default: [] (same-origin only when empty; ["*"] for dev)
}

func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Auth.TokenSecret == "" {
		return nil, fmt.Errorf("auth.token_secret must be set (or FLOCKR_TOKEN_SECRET)")
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Default: 120,
			Window:  time.Minute,
		},
		Scheduler: SchedulerConfig{
			ShutdownGrace: 5 * time.Second,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FLOCKR_TOKEN_SECRET"); v != "" {
		cfg.Auth.TokenSecret = v
	}
	if v := os.Getenv("FLOCKR_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FLOCKR_HOST"); v != "" {
		cfg.Server.Host = v
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
