package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/voocel/copilot/llm"
	"github.com/voocel/copilot/prompts"
)

// EnvPrefix prefixes environment overrides, e.g. COPILOT_GENERAL_MODEL.
const EnvPrefix = "COPILOT"

// Config stores all configuration of the application.
// The values are read by viper from a settings file or environment variables.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Advanced  AdvancedConfig  `mapstructure:"advanced"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Log       LogConfig       `mapstructure:"log"`
}

// GeneralConfig selects the model endpoint.
type GeneralConfig struct {
	Provider string `mapstructure:"provider"` // openai, anthropic, gemini; empty infers from model
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// AdvancedConfig stores sampling parameters.
type AdvancedConfig struct {
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Stream      bool          `mapstructure:"stream"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AssistantConfig stores assistant behavior.
type AssistantConfig struct {
	SystemPrompt        string        `mapstructure:"system_prompt"`
	Language            string        `mapstructure:"language"`
	UseTools            bool          `mapstructure:"use_tools"`
	ContinueOnToolError bool          `mapstructure:"continue_on_tool_error"`
	ToolPrompt          string        `mapstructure:"tool_prompt"`
	ToolTimeout         time.Duration `mapstructure:"tool_timeout"`
	MaxToolOutput       int           `mapstructure:"max_tool_output"` // bytes, 0 for unlimited
}

// LogConfig stores logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration: a local Ollama endpoint.
func Default() Config {
	llmDefaults := llm.DefaultConfig()
	return Config{
		General: GeneralConfig{
			Model:   llmDefaults.Model,
			APIKey:  llmDefaults.APIKey,
			BaseURL: llmDefaults.BaseURL,
		},
		Advanced: AdvancedConfig{
			Temperature: llmDefaults.Temperature,
			MaxTokens:   llmDefaults.MaxTokens,
			Stream:      true,
			Timeout:     2 * time.Minute,
		},
		Assistant: AssistantConfig{
			SystemPrompt:  prompts.Assistant,
			Language:      prompts.DefaultLanguage,
			UseTools:      true,
			ToolPrompt:    prompts.ToolUse,
			ToolTimeout:   30 * time.Second,
			MaxToolOutput: 32 * 1024,
		},
		Log: LogConfig{Level: "info"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("general.provider", d.General.Provider)
	v.SetDefault("general.model", d.General.Model)
	v.SetDefault("general.api_key", d.General.APIKey)
	v.SetDefault("general.base_url", d.General.BaseURL)

	v.SetDefault("advanced.temperature", d.Advanced.Temperature)
	v.SetDefault("advanced.max_tokens", d.Advanced.MaxTokens)
	v.SetDefault("advanced.stream", d.Advanced.Stream)
	v.SetDefault("advanced.timeout", d.Advanced.Timeout)

	v.SetDefault("assistant.system_prompt", d.Assistant.SystemPrompt)
	v.SetDefault("assistant.language", d.Assistant.Language)
	v.SetDefault("assistant.use_tools", d.Assistant.UseTools)
	v.SetDefault("assistant.continue_on_tool_error", d.Assistant.ContinueOnToolError)
	v.SetDefault("assistant.tool_prompt", d.Assistant.ToolPrompt)
	v.SetDefault("assistant.tool_timeout", d.Assistant.ToolTimeout)
	v.SetDefault("assistant.max_tool_output", d.Assistant.MaxToolOutput)

	v.SetDefault("log.level", d.Log.Level)
}

// Load reads configuration from path, or from settings.{json,yaml} in ./settings
// or the working directory when path is empty. A missing file yields the defaults;
// an unreadable or malformed file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("settings")
		v.AddConfigPath(".")
		v.SetConfigName("settings")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.General.Model) == "" {
		errs = append(errs, errors.New("general.model is required"))
	}
	if c.Advanced.Temperature < 0 || c.Advanced.Temperature > 2 {
		errs = append(errs, fmt.Errorf("advanced.temperature %v out of range [0, 2]", c.Advanced.Temperature))
	}
	if c.Advanced.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("advanced.max_tokens must be positive, got %d", c.Advanced.MaxTokens))
	}
	if c.Assistant.MaxToolOutput < 0 {
		errs = append(errs, fmt.Errorf("assistant.max_tool_output must not be negative, got %d", c.Assistant.MaxToolOutput))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// LLM returns the client configuration.
func (c Config) LLM() llm.Config {
	return llm.Config{
		Provider:    c.General.Provider,
		Model:       c.General.Model,
		BaseURL:     c.General.BaseURL,
		APIKey:      c.General.APIKey,
		Temperature: c.Advanced.Temperature,
		MaxTokens:   c.Advanced.MaxTokens,
		Timeout:     c.Advanced.Timeout,
	}
}

// LogLevel returns the parsed log level, info when unset or invalid.
func (c Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
