package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Client  ClientConfig  `mapstructure:"client"`
	Listing ListingConfig `mapstructure:"listing"`
	Session SessionConfig `mapstructure:"session"`
	Browser BrowserConfig `mapstructure:"browser"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig locates the portal
type ServerConfig struct {
	URL    string `mapstructure:"url"`     // REST backend base URL
	WebURL string `mapstructure:"web_url"` // Web frontend base URL; defaults to URL
}

// ClientConfig tunes the HTTP client
type ClientConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`         // GET retries on 5xx
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 disables throttling
}

// ListingConfig holds procedure listing page sizes
type ListingConfig struct {
	PageSize        int `mapstructure:"page_size"`         // Client page
	BackendPageSize int `mapstructure:"backend_page_size"` // Requested from the backend
}

// SessionConfig holds where the CLI keeps its sign-in
type SessionConfig struct {
	Dir string `mapstructure:"dir"` // Empty keeps the session in memory only
}

// BrowserConfig holds the command used to open items on the web
type BrowserConfig struct {
	Command string   `mapstructure:"command"` // Empty uses the system default
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"` // Empty logs text to stderr
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 2,
		},
		Listing: ListingConfig{
			PageSize:        10,
			BackendPageSize: 50,
		},
		Session: SessionConfig{
			Dir: defaultSessionPath(),
		},
		Browser: BrowserConfig{
			Args: []string{},
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// WebBase returns the base URL for links into the web frontend
func (c *Config) WebBase() string {
	if c.Server.WebURL != "" {
		return c.Server.WebURL
	}
	return c.Server.URL
}

// IsConfigured returns true if a server URL is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "lumen", "lumen.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "lumen", "lumen.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "lumen")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "lumen")
	}
}

// defaultSessionPath returns the default session directory for the current OS
func defaultSessionPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "lumen", "session")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "lumen", "session")
	}
}

// newViper builds a viper instance that knows every key, so environment
// overrides (LUMEN_SERVER_URL, LUMEN_CLIENT_TIMEOUT, ...) apply even when
// the key is absent from the file.
func newViper(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LUMEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.url", defaults.Server.URL)
	v.SetDefault("server.web_url", defaults.Server.WebURL)
	v.SetDefault("client.timeout", defaults.Client.Timeout)
	v.SetDefault("client.max_retries", defaults.Client.MaxRetries)
	v.SetDefault("client.requests_per_second", defaults.Client.RequestsPerSecond)
	v.SetDefault("listing.page_size", defaults.Listing.PageSize)
	v.SetDefault("listing.backend_page_size", defaults.Listing.BackendPageSize)
	v.SetDefault("session.dir", defaults.Session.Dir)
	v.SetDefault("browser.command", defaults.Browser.Command)
	v.SetDefault("browser.args", defaults.Browser.Args)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.level", defaults.Logging.Level)
	return v
}

// LoadConfig loads configuration from the default config directory, the
// working directory, a .env file in the working directory, and the
// environment, in increasing precedence.
func LoadConfig() (*Config, error) {
	return load([]string{defaultConfigPath(), "."}, ".env")
}

// LoadConfigFrom loads configuration from dir only, plus dir/.env
func LoadConfigFrom(dir string) (*Config, error) {
	return load([]string{dir}, filepath.Join(dir, ".env"))
}

func load(paths []string, dotenv string) (*Config, error) {
	// Variables already in the environment win over the .env file
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading %s: %w", dotenv, err)
	}

	cfg := DefaultConfig()
	v := newViper(cfg)
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the default config directory
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(defaultConfigPath(), cfg)
}

// SaveConfigTo writes cfg as dir/config.yaml
func SaveConfigTo(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to get snake_case key names
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.web_url", cfg.Server.WebURL)

	v.Set("client.timeout", cfg.Client.Timeout.String())
	v.Set("client.max_retries", cfg.Client.MaxRetries)
	v.Set("client.requests_per_second", cfg.Client.RequestsPerSecond)

	v.Set("listing.page_size", cfg.Listing.PageSize)
	v.Set("listing.backend_page_size", cfg.Listing.BackendPageSize)

	v.Set("session.dir", cfg.Session.Dir)

	v.Set("browser.command", cfg.Browser.Command)
	v.Set("browser.args", cfg.Browser.Args)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
