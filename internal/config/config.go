package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/featherlab/rankline/internal/filter"
	"github.com/featherlab/rankline/internal/scoring"
)

type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Database DatabaseConfig       `yaml:"database"`
	Events   EventsConfig         `yaml:"events"`
	Pipeline PipelineConfig       `yaml:"pipeline"`
	Weights  scoring.WeightConfig `yaml:"weights"`
	Logging  LoggingConfig        `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type PipelineConfig struct {
	TopK             int      `yaml:"top_k"`
	MaxTweetAgeHours float64  `yaml:"max_tweet_age_hours"`
	EnabledFilters   []string `yaml:"enabled_filters"`
	DefaultSeed      int64    `yaml:"default_seed"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Events: EventsConfig{
			URL:     "nats://localhost:4222",
			Enabled: true,
		},
		Pipeline: PipelineConfig{
			TopK:             20,
			MaxTweetAgeHours: 48,
			EnabledFilters:   filter.AllIDs(),
			DefaultSeed:      1,
		},
		Weights: scoring.DefaultWeights(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("config weights: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RANKLINE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("RANKLINE_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("RANKLINE_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("RANKLINE_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("RANKLINE_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("RANKLINE_EVENTS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Events.Enabled = b
		}
	}
	if v := os.Getenv("RANKLINE_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.TopK = n
		}
	}
	if v := os.Getenv("RANKLINE_MAX_TWEET_AGE_HOURS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pipeline.MaxTweetAgeHours = f
		}
	}
	if v := os.Getenv("RANKLINE_ENABLED_FILTERS"); v != "" {
		var ids []string
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		cfg.Pipeline.EnabledFilters = ids
	}
	if v := os.Getenv("RANKLINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
