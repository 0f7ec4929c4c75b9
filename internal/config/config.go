// Package config loads folio's configuration: defaults, then an optional
// TOML file, then environment variable overrides. Secrets (API keys, the
// internal auth token) only ever come from the environment or the file, and
// a backend selected without its required key is a fatal startup error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DefaultLLM string                `toml:"default_llm"`
	LLMs       map[string]*LLMConfig `toml:"llm"`
	Gateway    GatewayConfig         `toml:"gateway"`
	Data       DataConfig            `toml:"data"`
	Agent      AgentConfig           `toml:"agent"`
	Trace      TraceConfig           `toml:"trace"`
}

type LLMConfig struct {
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

type GatewayConfig struct {
	Addr      string `toml:"addr"`
	AuthToken string `toml:"auth_token"`
}

type DataConfig struct {
	Path string `toml:"path"`
}

type AgentConfig struct {
	MaxIterations int    `toml:"max_iterations"`
	LLMTimeout    string `toml:"llm_timeout"`
	MaxRetries    int    `toml:"max_retries"`
}

type TraceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	URLPath  string `toml:"url_path"`
	APIKey   string `toml:"api_key"`
}

// LLMTimeoutDuration parses the configured per-call timeout, falling back to
// 60s on invalid values.
func (a AgentConfig) LLMTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(a.LLMTimeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

func defaults() *Config {
	return &Config{
		DefaultLLM: "openai",
		LLMs: map[string]*LLMConfig{
			"openai": {
				Model: "gpt-4o-mini",
			},
			"ollama": {
				Model:   "llama3.1",
				BaseURL: "http://localhost:11434",
			},
		},
		Gateway: GatewayConfig{
			Addr: ":8787",
		},
		Data: DataConfig{
			Path: "portfolio_data.json",
		},
		Agent: AgentConfig{
			MaxIterations: 5,
			LLMTimeout:    "60s",
			MaxRetries:    2,
		},
	}
}

// Load reads the config file (if present), applies env overrides and
// validates the result.
func Load() (*Config, error) {
	return loadFrom(configPath())
}

func loadFrom(path string) (*Config, error) {
	cfg := defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decoding config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FOLIO_DEFAULT_LLM"); v != "" {
		cfg.DefaultLLM = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if c, ok := cfg.LLMs["openai"]; ok {
			c.APIKey = v
		}
	}
	if v := os.Getenv("INTERNAL_AUTH_TOKEN"); v != "" {
		cfg.Gateway.AuthToken = v
	}
	if v := os.Getenv("FOLIO_DATA_PATH"); v != "" {
		cfg.Data.Path = v
	}
	if v := os.Getenv("FOLIO_GATEWAY_ADDR"); v != "" {
		cfg.Gateway.Addr = v
	}
}

func (c *Config) validate() error {
	llm, ok := c.LLMs[c.DefaultLLM]
	if !ok {
		return fmt.Errorf("default LLM %q not found in config", c.DefaultLLM)
	}
	if c.DefaultLLM == "openai" && llm.APIKey == "" {
		return fmt.Errorf("openai backend selected but no API key configured: set OPENAI_API_KEY")
	}
	if c.Agent.MaxIterations < 1 {
		return fmt.Errorf("agent.max_iterations must be at least 1, got %d", c.Agent.MaxIterations)
	}
	return nil
}

func configPath() string {
	dir, _ := os.UserConfigDir()
	return filepath.Join(dir, "folio", "config.toml")
}
