package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// StorageConfig holds settings for the local persistence store.
type StorageConfig struct {
	// Path is the SQLite database file location.
	Path string `mapstructure:"path" yaml:"path"`
}

// AIConfig holds settings for the insight gateway.
type AIConfig struct {
	Model           string `mapstructure:"model" yaml:"model"`
	MaxOutputTokens int    `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`

	// BaseURL overrides the generative-AI API endpoint; used by tests
	// and for proxy setups. Empty means the public endpoint.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// MailConfig holds settings for reminder mail composition.
type MailConfig struct {
	// OutboxDir is where composed reminder messages are written.
	OutboxDir string `mapstructure:"outbox_dir" yaml:"outbox_dir"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	AI      AIConfig      `mapstructure:"ai" yaml:"ai"`
	Mail    MailConfig    `mapstructure:"mail" yaml:"mail"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/moldtrack/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "moldtrack", "config.yaml")
}

// defaultDataDir returns ~/.local/share/moldtrack, falling back to the
// working directory when the home directory cannot be resolved.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "moldtrack")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dataDir := defaultDataDir()
	return &AppConfig{
		Storage: StorageConfig{Path: filepath.Join(dataDir, "moldtrack.db")},
		AI: AIConfig{
			Model:           "gemini-3-pro-preview",
			MaxOutputTokens: 2048,
		},
		Mail:    MailConfig{OutboxDir: filepath.Join(dataDir, "outbox")},
		Display: DisplayConfig{Theme: "default"},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := defaultAppConfig()
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("ai.model", defaults.AI.Model)
	v.SetDefault("ai.max_output_tokens", defaults.AI.MaxOutputTokens)
	v.SetDefault("mail.outbox_dir", defaults.Mail.OutboxDir)
	v.SetDefault("display.theme", defaults.Display.Theme)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("ai", cfg.AI)
	v.Set("mail", cfg.Mail)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
