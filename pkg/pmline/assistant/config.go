// Package assistant – config.go defines the configuration structures
// for the pmline assistant.
package assistant

import "os"

// Config holds all assistant configuration.
type Config struct {
	// Name is the assistant name used in the persona prompt.
	Name string `yaml:"name"`

	// Model is the Ollama model identifier (e.g. "qwen2.5:7b").
	Model string `yaml:"model"`

	// API configures the inference endpoint.
	API APIConfig `yaml:"api"`

	// Knowledge configures the knowledge base directory and refresh.
	Knowledge KnowledgeConfig `yaml:"knowledge"`

	// Line configures the messaging platform webhook credentials.
	Line LineConfig `yaml:"line"`

	// Server configures the webhook HTTP server.
	Server ServerConfig `yaml:"server"`

	// UpdateLog configures the update-request log database.
	UpdateLog UpdateLogConfig `yaml:"update_log"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the inference endpoint.
type APIConfig struct {
	// BaseURL is the Ollama endpoint (e.g. "http://localhost:11434").
	BaseURL string `yaml:"base_url"`
}

// KnowledgeConfig configures the knowledge base.
type KnowledgeConfig struct {
	// Path is the directory containing the section markdown files.
	Path string `yaml:"path"`

	// RefreshCron optionally schedules periodic full reloads
	// (cron expression), as a backstop for filesystems where change
	// notifications are unreliable. Empty disables it.
	RefreshCron string `yaml:"refresh_cron"`
}

// LineConfig holds the messaging platform credentials.
type LineConfig struct {
	// ChannelSecret signs inbound webhook payloads.
	ChannelSecret string `yaml:"channel_secret"`

	// ChannelToken authorizes outbound reply calls.
	ChannelToken string `yaml:"channel_token"`

	// ReplyURL overrides the platform reply endpoint (tests, proxies).
	ReplyURL string `yaml:"reply_url"`
}

// ServerConfig configures the webhook HTTP server.
type ServerConfig struct {
	// Address is the listen address (e.g. ":8080").
	Address string `yaml:"address"`
}

// UpdateLogConfig configures the update-request log.
type UpdateLogConfig struct {
	// Path is the SQLite database file. Empty disables the log.
	Path string `yaml:"path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level"`

	// Format is "json" (default) or "text".
	Format string `yaml:"format"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:  "pmline",
		Model: "qwen2.5:7b",
		API: APIConfig{
			BaseURL: "http://localhost:11434",
		},
		Knowledge: KnowledgeConfig{
			Path: "./knowledge",
		},
		Server: ServerConfig{
			Address: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// applyEnvOverrides lets the externally supplied environment win over
// the config file for the required runtime surface.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("PMLINE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("KNOWLEDGE_DIR"); v != "" {
		cfg.Knowledge.Path = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Address = ":" + v
	}
	if v := os.Getenv("LINE_CHANNEL_SECRET"); v != "" {
		cfg.Line.ChannelSecret = v
	}
	if v := os.Getenv("LINE_CHANNEL_TOKEN"); v != "" {
		cfg.Line.ChannelToken = v
	}
}
