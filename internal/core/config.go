package core

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jo-hoe/picundo/internal/backend/storage"
	"github.com/jo-hoe/picundo/internal/backend/webclient"
)

const (
	defaultPort      = 8080
	defaultLogLevel  = "info"
	defaultWorkspace = "images"
)

// CommandConfig represents a generic command configuration
type CommandConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:",inline"`
}

type Storage struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

type Fetch struct {
	Timeout        time.Duration `yaml:"timeout"`
	MaxConcurrency int           `yaml:"maxConcurrency"`
}

type ServiceConfig struct {
	Port      int             `yaml:"port"`
	LogLevel  string          `yaml:"logLevel"`
	Workspace string          `yaml:"workspace"`
	Storage   Storage         `yaml:"storage"`
	Fetch     Fetch           `yaml:"fetch"`
	Commands  []CommandConfig `yaml:"commands"`
}

// LoadConfig loads configuration from the specified YAML file
func LoadConfig(configPath string) (*ServiceConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return config, nil
}

// ParseConfig parses YAML configuration, applies defaults and validates the result
func ParseConfig(data []byte) (*ServiceConfig, error) {
	var config ServiceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *ServiceConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Workspace == "" {
		c.Workspace = defaultWorkspace
	}
	if c.Storage.Type == "" {
		c.Storage.Type = storage.TypeLocal
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = webclient.DefaultTimeout
	}
	for i := range c.Commands {
		if c.Commands[i].Params == nil {
			c.Commands[i].Params = map[string]any{}
		}
	}
}

func (c *ServiceConfig) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.Storage.Type {
	case storage.TypeLocal, storage.TypeSQLite, storage.TypeRedis:
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.Type != storage.TypeLocal && c.Storage.ConnectionString == "" {
		return fmt.Errorf("storage type %s requires a connectionString", c.Storage.Type)
	}
	if c.Fetch.MaxConcurrency < 0 {
		return fmt.Errorf("fetch.maxConcurrency must not be negative, got %d", c.Fetch.MaxConcurrency)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if err := validateCommands(c.Commands); err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}
	return nil
}

// validateCommands ensures all command configurations have required fields.
// Names may repeat since a script can run the same command more than once.
func validateCommands(commands []CommandConfig) error {
	for i, cmd := range commands {
		if cmd.Name == "" {
			return fmt.Errorf("command at index %d has empty name", i)
		}
	}
	return nil
}
