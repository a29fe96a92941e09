package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Sentiment SentimentConfig `mapstructure:"sentiment"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// EntityConfig names one tracked asset and the search term its captures were queried with
type EntityConfig struct {
	Name    string `mapstructure:"name"`
	Keyword string `mapstructure:"keyword"`
}

// SearchKeyword returns the keyword, falling back to the entity name
func (e EntityConfig) SearchKeyword() string {
	if e.Keyword != "" {
		return e.Keyword
	}
	return e.Name
}

// PipelineConfig holds directory layout and scheduling configuration
type PipelineConfig struct {
	Entities      []EntityConfig `mapstructure:"entities"`
	DumpsDir      string         `mapstructure:"dumps_dir"`
	DailyDir      string         `mapstructure:"daily_dir"`
	ScoresDir     string         `mapstructure:"scores_dir"`
	PricesDir     string         `mapstructure:"prices_dir"`
	SeriesDir     string         `mapstructure:"series_dir"`
	Workers       int            `mapstructure:"workers"`
	DayKeyPattern string         `mapstructure:"day_key_pattern"` // optional, one capture group
}

// SentimentConfig holds scorer configuration
type SentimentConfig struct {
	KeywordFilter      bool     `mapstructure:"keyword_filter"`
	InfluenceThreshold int      `mapstructure:"influence_threshold"`
	TextColumn         string   `mapstructure:"text_column"`
	InfluenceColumn    string   `mapstructure:"influence_column"`
	LangColumn         string   `mapstructure:"lang_column"`
	LexiconPath        string   `mapstructure:"lexicon_path"`     // empty = built-in lexicon
	LexiconOverlays    []string `mapstructure:"lexicon_overlays"` // applied in order over the base lexicon
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// MetricsConfig holds run metrics export configuration
type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"` // empty = disabled
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("SENTIDAY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Pipeline defaults
	v.SetDefault("pipeline.dumps_dir", "./data/csv_dumps")
	v.SetDefault("pipeline.daily_dir", "./data/csv_daily")
	v.SetDefault("pipeline.scores_dir", "./data/vader")
	v.SetDefault("pipeline.prices_dir", "./data/ohlcv")
	v.SetDefault("pipeline.series_dir", "./data/series")
	v.SetDefault("pipeline.workers", 1)
	v.SetDefault("pipeline.day_key_pattern", "")

	// Sentiment defaults
	v.SetDefault("sentiment.keyword_filter", true)
	v.SetDefault("sentiment.influence_threshold", 100)
	v.SetDefault("sentiment.text_column", "text")
	v.SetDefault("sentiment.influence_column", "user_followers_count")
	v.SetDefault("sentiment.lang_column", "lang")
	v.SetDefault("sentiment.lexicon_path", "")
	v.SetDefault("sentiment.lexicon_overlays", []string{})

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Metrics defaults
	v.SetDefault("metrics.textfile_path", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Pipeline config
	if len(c.Pipeline.Entities) == 0 {
		return fmt.Errorf("pipeline.entities must contain at least one entity")
	}
	seen := make(map[string]bool)
	for i, e := range c.Pipeline.Entities {
		if e.Name == "" {
			return fmt.Errorf("pipeline.entities[%d].name is required", i)
		}
		if seen[e.Name] {
			return fmt.Errorf("pipeline.entities contains duplicate entity %q", e.Name)
		}
		seen[e.Name] = true
	}
	if c.Pipeline.DumpsDir == "" {
		return fmt.Errorf("pipeline.dumps_dir is required")
	}
	if c.Pipeline.DailyDir == "" {
		return fmt.Errorf("pipeline.daily_dir is required")
	}
	if c.Pipeline.ScoresDir == "" {
		return fmt.Errorf("pipeline.scores_dir is required")
	}
	if c.Pipeline.SeriesDir == "" {
		return fmt.Errorf("pipeline.series_dir is required")
	}
	if c.Pipeline.Workers < 1 || c.Pipeline.Workers > 64 {
		return fmt.Errorf("pipeline.workers must be between 1 and 64")
	}
	if c.Pipeline.DayKeyPattern != "" {
		re, err := regexp.Compile(c.Pipeline.DayKeyPattern)
		if err != nil {
			return fmt.Errorf("pipeline.day_key_pattern is not a valid regexp: %w", err)
		}
		if re.NumSubexp() != 1 {
			return fmt.Errorf("pipeline.day_key_pattern must contain exactly one capture group")
		}
	}

	// Validate Sentiment config
	if c.Sentiment.InfluenceThreshold < 0 {
		return fmt.Errorf("sentiment.influence_threshold must not be negative")
	}
	if c.Sentiment.TextColumn == "" {
		return fmt.Errorf("sentiment.text_column is required")
	}
	if c.Sentiment.InfluenceColumn == "" {
		return fmt.Errorf("sentiment.influence_column is required")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	if c.Telegram.MaxRetries < 0 {
		return fmt.Errorf("telegram.max_retries must not be negative")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
