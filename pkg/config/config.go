package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/devassist/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// orderedKeys lists config keys in TOML section order for display.
var orderedKeys = []string{
	"client.base_url",
	"client.timeout",
	"chat.module_id",
	"chat.history_window",
	"chat.markdown",
	"storage.driver",
	"storage.sqlite_path",
	"storage.postgres_dsn",
	"event_stream.provider",
	"event_stream.brokers",
	"event_stream.topic",
	"worker.num_workers",
	"worker.queue_size",
	"dev_server.listen",
	"dev_server.fail_trigger",
	"api.listen",
	"api.disable_mcp",
}

type Configer struct {
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	target, err := dotdir.NewManager().Target(override)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(target, configFile)
	if _, err := os.Stat(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return &Configer{targetPath: path}, nil
}

// ValidConfigKeys returns all supported configuration key names in a stable,
// logical order matching the TOML section layout.
func ValidConfigKeys() []string {
	result := make([]string, 0, len(configKeys))
	for _, k := range orderedKeys {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}
	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// Exists reports whether the config file has been written.
func (c *Configer) Exists() bool {
	_, err := os.Stat(c.targetPath)
	return err == nil
}

// LoadConfig loads the configuration from config.toml in the target .devassist/ directory.
// If the file does not exist, returns NewDefaultConfig() so callers always receive
// a fully-populated Config with sane defaults. Fields explicitly set in the file
// override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
// Booleans and the module ID are left alone since their zero value is meaningful.
func applyDefaults(cfg *Config) {
	d := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = d.Version
	}

	if cfg.Client.BaseURL == "" {
		cfg.Client.BaseURL = d.Client.BaseURL
	}
	if cfg.Client.Timeout == "" {
		cfg.Client.Timeout = d.Client.Timeout
	}

	if cfg.Chat.HistoryWindow == 0 {
		cfg.Chat.HistoryWindow = d.Chat.HistoryWindow
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = d.Storage.Driver
	}

	if cfg.EventStream.Provider == "" {
		cfg.EventStream.Provider = d.EventStream.Provider
	}
	if cfg.EventStream.Topic == "" {
		cfg.EventStream.Topic = d.EventStream.Topic
	}

	if cfg.Worker.NumWorkers == 0 {
		cfg.Worker.NumWorkers = d.Worker.NumWorkers
	}
	if cfg.Worker.QueueSize == 0 {
		cfg.Worker.QueueSize = d.Worker.QueueSize
	}

	if cfg.DevServer.Listen == "" {
		cfg.DevServer.Listen = d.DevServer.Listen
	}
	if cfg.DevServer.FailTrigger == "" {
		cfg.DevServer.FailTrigger = d.DevServer.FailTrigger
	}

	if cfg.API.Listen == "" {
		cfg.API.Listen = d.API.Listen
	}
}

// SaveConfig persists the configuration to config.toml in the target .devassist/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// May hold a postgres DSN with a password.
	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// PresetConfig returns a Config for the named setup preset.
// Supported presets: "local", "sqlite", "kafka".
// Returns an error if the preset name is not recognized.
func PresetConfig(name string) (*Config, error) {
	cfg := NewDefaultConfig()

	switch strings.ToLower(name) {
	case "local":
		return cfg, nil

	case "sqlite":
		cfg.Storage.Driver = StorageSQLite
		return cfg, nil

	case "kafka":
		cfg.Storage.Driver = StorageSQLite
		cfg.EventStream.Provider = EventStreamKafka
		cfg.EventStream.Brokers = "localhost:9092"
		return cfg, nil

	default:
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(ValidPresetNames(), ", "))
	}
}

// ValidPresetNames returns the list of recognized preset names.
func ValidPresetNames() []string {
	return []string{"local", "sqlite", "kafka"}
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
