// Package config loads application configuration from leadscout.yaml
// and LEADSCOUT_* environment variables, and initializes the global
// zap logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SearchConfig configures the SearxNG search capability.
type SearchConfig struct {
	BaseURL  string  `yaml:"base_url" mapstructure:"base_url"`
	MaxPages int     `yaml:"max_pages" mapstructure:"max_pages"`
	RPS      float64 `yaml:"rps" mapstructure:"rps"`
}

// RenderConfig configures the page rendering capability.
type RenderConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// LocalFallback enables a headless-Chrome renderer when the
	// remote service fails or is not configured.
	LocalFallback bool `yaml:"local_fallback" mapstructure:"local_fallback"`
}

// AnthropicConfig configures the Claude models behind the classifier,
// extractor and enrichment capabilities.
type AnthropicConfig struct {
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	FilterModel  string `yaml:"filter_model" mapstructure:"filter_model"`
	ExtractModel string `yaml:"extract_model" mapstructure:"extract_model"`
	EnrichModel  string `yaml:"enrich_model" mapstructure:"enrich_model"`
	MaxTokens    int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// PipelineConfig bounds the discovery pipeline.
type PipelineConfig struct {
	MaxPagesPerSite   int `yaml:"max_pages_per_site" mapstructure:"max_pages_per_site"`
	MinMarkdownChars  int `yaml:"min_markdown_chars" mapstructure:"min_markdown_chars"`
	EnrichSearchLimit int `yaml:"enrich_search_limit" mapstructure:"enrich_search_limit"`
	EnrichSnippetCap  int `yaml:"enrich_snippet_cap" mapstructure:"enrich_snippet_cap"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("leadscout")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.leadscout")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("search.base_url", "https://searx.up.railway.app/search")
	v.SetDefault("search.max_pages", 6)
	v.SetDefault("search.rps", 2.0)
	v.SetDefault("render.base_url", "https://crawle.up.railway.app")
	v.SetDefault("render.local_fallback", false)
	// Empty default so the env-only key is visible to Unmarshal.
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.filter_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.extract_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.enrich_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("pipeline.max_pages_per_site", 3)
	v.SetDefault("pipeline.min_markdown_chars", 100)
	v.SetDefault("pipeline.enrich_search_limit", 40)
	v.SetDefault("pipeline.enrich_snippet_cap", 20)
	v.SetDefault("server.port", 8000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Search.MaxPages < 1 {
		return eris.New("config: search.max_pages must be at least 1")
	}
	if c.Pipeline.MaxPagesPerSite < 1 {
		return eris.New("config: pipeline.max_pages_per_site must be at least 1")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return eris.Errorf("config: invalid server.port %d", c.Server.Port)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
