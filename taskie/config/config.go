package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	internal "github.com/taskie-agent/taskie/taskie"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Agent    AgentConfig    `mapstructure:"agent"`
	Database DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig stores database connection details.
type DatabaseConfig struct {
	Path string `mapstructure:"path"` // Path to the embedded libsql file
}

// AgentConfig stores interpreter pipeline configurations.
type AgentConfig struct {
	// Conversation context
	LookbackTurns    int `mapstructure:"lookback_turns"`     // Turns re-read per request for context
	MaxCandidates    int `mapstructure:"max_candidates"`     // Cap on ambiguity choices offered
	MaxWorkflowSteps int `mapstructure:"max_workflow_steps"` // Cap on compound request steps

	// Tool invocation
	ToolTimeout time.Duration `mapstructure:"tool_timeout"` // Per-tool deadline

	// Safety
	ConfirmDestructive bool `mapstructure:"confirm_destructive"` // Gate deletes behind confirmation

	// Telemetry
	EnableTracing bool `mapstructure:"enable_tracing"` // Enable structured logging/tracing
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viper.Reset()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("..")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("database.path", internal.DefaultDatabasePath)

	viper.SetDefault("agent.lookback_turns", 10)
	viper.SetDefault("agent.max_candidates", 5)
	viper.SetDefault("agent.max_workflow_steps", 2)
	viper.SetDefault("agent.tool_timeout", "30s")
	viper.SetDefault("agent.confirm_destructive", true)
	viper.SetDefault("agent.enable_tracing", true)

	viper.SetEnvPrefix(strings.ToUpper(internal.DefaultAppName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Agent.LookbackTurns < 1 {
		return fmt.Errorf("agent.lookback_turns must be at least 1: %d", cfg.Agent.LookbackTurns)
	}
	if cfg.Agent.MaxWorkflowSteps < 1 {
		return fmt.Errorf("agent.max_workflow_steps must be at least 1: %d", cfg.Agent.MaxWorkflowSteps)
	}
	if cfg.Agent.ToolTimeout <= 0 {
		return fmt.Errorf("agent.tool_timeout must be positive: %s", cfg.Agent.ToolTimeout)
	}
	return nil
}
