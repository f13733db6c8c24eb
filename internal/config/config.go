package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service settings, loaded from a YAML file with
// environment overrides for secrets and deployment-specific values.
type Config struct {
	Server struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`

	Database struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		User            string        `yaml:"user"`
		Password        string        `yaml:"password"`
		Database        string        `yaml:"database"`
		SSLMode         string        `yaml:"ssl_mode"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Enabled  bool   `yaml:"enabled"`
	} `yaml:"redis"`

	Upstream struct {
		MarineBaseURL string        `yaml:"marine_base_url"`
		TideBaseURL   string        `yaml:"tide_base_url"`
		LLMBaseURL    string        `yaml:"llm_base_url"`
		LLMAPIKey     string        `yaml:"llm_api_key"`
		LLMModel      string        `yaml:"llm_model"`
		MarineTimeout time.Duration `yaml:"marine_timeout"`
		TideTimeout   time.Duration `yaml:"tide_timeout"`
		LLMTimeout    time.Duration `yaml:"llm_timeout"`
	} `yaml:"upstream"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	// Timezone is the service-local timezone used for tide day grouping
	// and scheduled report expiry checkpoints.
	Timezone string `yaml:"timezone"`

	// Tide reference point for the coastal area served by the dashboard.
	Tide struct {
		Latitude  float64 `yaml:"latitude"`
		Longitude float64 `yaml:"longitude"`
	} `yaml:"tide"`

	Spots []SpotLocation `yaml:"spots"`
}

// SpotLocation pairs a registered spot name with its coordinates.
type SpotLocation struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Load reads configuration from the given YAML file, applying defaults
// and environment overrides.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 8080
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.IdleTimeout = 60 * time.Second

	c.Database.Host = "localhost"
	c.Database.Port = 5432
	c.Database.User = "surfcast"
	c.Database.Database = "surfcast"
	c.Database.SSLMode = "disable"
	c.Database.MaxOpenConns = 20
	c.Database.MaxIdleConns = 5
	c.Database.ConnMaxLifetime = 30 * time.Minute
	c.Database.ConnMaxIdleTime = 5 * time.Minute

	c.Redis.Addr = "localhost:6379"

	c.Upstream.MarineBaseURL = "https://marine-api.open-meteo.com/v1/marine"
	c.Upstream.TideBaseURL = "https://marine-api.open-meteo.com/v1/marine"
	c.Upstream.LLMBaseURL = "https://api.openai.com/v1"
	c.Upstream.LLMModel = "gpt-4o-mini"
	c.Upstream.MarineTimeout = 10 * time.Second
	c.Upstream.TideTimeout = 15 * time.Second
	c.Upstream.LLMTimeout = 30 * time.Second

	c.Logging.Level = "info"
	c.Timezone = "Asia/Makassar"

	// Bukit peninsula reference point
	c.Tide.Latitude = -8.829
	c.Tide.Longitude = 115.086

	c.Spots = defaultSpots()
}

// defaultSpots covers the full registry; a config file with its own spots
// list replaces this set entirely.
func defaultSpots() []SpotLocation {
	return []SpotLocation{
		{Name: "uluwatu", Latitude: -8.8290, Longitude: 115.0849},
		{Name: "padang-padang", Latitude: -8.8107, Longitude: 115.0994},
		{Name: "canggu", Latitude: -8.6597, Longitude: 115.1301},
		{Name: "batu-bolong", Latitude: -8.6595, Longitude: 115.1275},
		{Name: "medewi", Latitude: -8.4156, Longitude: 114.8066},
		{Name: "keramas", Latitude: -8.5857, Longitude: 115.3424},
		{Name: "sanur", Latitude: -8.7030, Longitude: 115.2636},
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.Upstream.LLMAPIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for values the service cannot run without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host cannot be empty")
	}
	if c.Upstream.MarineBaseURL == "" {
		return fmt.Errorf("upstream marine_base_url cannot be empty")
	}
	if c.Upstream.TideBaseURL == "" {
		return fmt.Errorf("upstream tide_base_url cannot be empty")
	}
	if c.Upstream.MarineTimeout <= 0 || c.Upstream.TideTimeout <= 0 || c.Upstream.LLMTimeout <= 0 {
		return fmt.Errorf("upstream timeouts must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured service-local timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
