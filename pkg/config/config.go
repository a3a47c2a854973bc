package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Stream struct {
		URL          string        `yaml:"url"`
		APIKey       string        `yaml:"api_key"`
		PingInterval time.Duration `yaml:"ping_interval"`
		BufferSize   int           `yaml:"buffer_size"`
	} `yaml:"stream"`
	Quotes struct {
		BaseURL  string        `yaml:"base_url"`
		APIKey   string        `yaml:"api_key"`
		Timeout  time.Duration `yaml:"timeout"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"quotes"`
	Refresh struct {
		Interval           time.Duration `yaml:"interval"`
		MinStatusVisible   time.Duration `yaml:"min_status_visible"`
		PerSymbolTimeout   time.Duration `yaml:"per_symbol_timeout"`
		MaxTicksPerSecond  int           `yaml:"max_ticks_per_second"`
	} `yaml:"refresh"`
	Forecast struct {
		HorizonDays      int     `yaml:"horizon_days"`
		AnnualVolatility float64 `yaml:"annual_volatility"`
		AnnualDrift      float64 `yaml:"annual_drift"`
		NumSimulations   int     `yaml:"num_simulations"`
		NumSamplePaths   int     `yaml:"num_sample_paths"`
	} `yaml:"forecast"`
	AI struct {
		BaseURL            string        `yaml:"base_url"`
		APIKey             string        `yaml:"api_key"`
		Model              string        `yaml:"model"`
		Timeout            time.Duration `yaml:"timeout"`
		FallbackConfidence int           `yaml:"fallback_confidence"`
	} `yaml:"ai"`
	Cache struct {
		Backend string `yaml:"backend"` // memory or redis
		Redis   struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides secrets with environment
// variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("STREAM_API_KEY"); v != "" {
		c.Stream.APIKey = v
	}
	if v := os.Getenv("QUOTES_API_KEY"); v != "" {
		c.Quotes.APIKey = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Refresh.Interval <= 0 {
		c.Refresh.Interval = 10 * time.Second
	}
	if c.Refresh.MinStatusVisible <= 0 {
		c.Refresh.MinStatusVisible = 500 * time.Millisecond
	}
	if c.Refresh.PerSymbolTimeout <= 0 {
		c.Refresh.PerSymbolTimeout = 5 * time.Second
	}
	if c.Refresh.MaxTicksPerSecond <= 0 {
		c.Refresh.MaxTicksPerSecond = 20
	}
	if c.Stream.BufferSize <= 0 {
		c.Stream.BufferSize = 1024
	}
	if c.Stream.PingInterval <= 0 {
		c.Stream.PingInterval = 30 * time.Second
	}
	if c.Quotes.Timeout <= 0 {
		c.Quotes.Timeout = 5 * time.Second
	}
	if c.Quotes.CacheTTL <= 0 {
		c.Quotes.CacheTTL = 10 * time.Second
	}
	if c.Forecast.HorizonDays <= 0 {
		c.Forecast.HorizonDays = 30
	}
	if c.Forecast.AnnualVolatility <= 0 {
		c.Forecast.AnnualVolatility = 0.25
	}
	if c.Forecast.AnnualDrift == 0 {
		c.Forecast.AnnualDrift = 0.073
	}
	if c.Forecast.NumSimulations <= 0 {
		c.Forecast.NumSimulations = 10000
	}
	if c.Forecast.NumSamplePaths <= 0 {
		c.Forecast.NumSamplePaths = 10
	}
	if c.AI.Model == "" {
		c.AI.Model = "llama3-8b-8192"
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = 15 * time.Second
	}
	if c.AI.FallbackConfidence <= 0 {
		c.AI.FallbackConfidence = 55
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Stream.URL == "" {
		return fmt.Errorf("stream.url is required")
	}
	if c.Quotes.BaseURL == "" {
		return fmt.Errorf("quotes.base_url is required")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if c.Forecast.NumSamplePaths > c.Forecast.NumSimulations {
		return fmt.Errorf("forecast.num_sample_paths cannot exceed forecast.num_simulations")
	}
	return nil
}
