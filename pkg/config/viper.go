package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/devassist/pkg/dotdir"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "DEVASSIST"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the DEVASSIST_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (DEVASSIST_CLIENT_BASE_URL, DEVASSIST_STORAGE_DRIVER, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	target, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	v.AddConfigPath(target)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes the resolved settings into a Config.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Client: ClientConfig{
			BaseURL: strings.TrimRight(v.GetString("client.base_url"), "/"),
			Timeout: v.GetString("client.timeout"),
		},
		Chat: ChatConfig{
			ModuleID:      v.GetInt("chat.module_id"),
			HistoryWindow: v.GetUint("chat.history_window"),
			Markdown:      v.GetBool("chat.markdown"),
		},
		Storage: StorageConfig{
			Driver:      v.GetString("storage.driver"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		EventStream: EventStreamConfig{
			Provider: v.GetString("event_stream.provider"),
			Brokers:  v.GetString("event_stream.brokers"),
			Topic:    v.GetString("event_stream.topic"),
		},
		Worker: WorkerConfig{
			NumWorkers: v.GetUint("worker.num_workers"),
			QueueSize:  v.GetUint("worker.queue_size"),
		},
		DevServer: DevServerConfig{
			Listen:      v.GetString("dev_server.listen"),
			FailTrigger: v.GetString("dev_server.fail_trigger"),
		},
		API: APIConfig{
			Listen:     v.GetString("api.listen"),
			DisableMCP: v.GetBool("api.disable_mcp"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Client
	v.SetDefault("client.base_url", d.Client.BaseURL)
	v.SetDefault("client.timeout", d.Client.Timeout)

	// Chat
	v.SetDefault("chat.module_id", d.Chat.ModuleID)
	v.SetDefault("chat.history_window", d.Chat.HistoryWindow)
	v.SetDefault("chat.markdown", d.Chat.Markdown)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// Event stream
	v.SetDefault("event_stream.provider", d.EventStream.Provider)
	v.SetDefault("event_stream.brokers", d.EventStream.Brokers)
	v.SetDefault("event_stream.topic", d.EventStream.Topic)

	// Worker
	v.SetDefault("worker.num_workers", d.Worker.NumWorkers)
	v.SetDefault("worker.queue_size", d.Worker.QueueSize)

	// Dev server
	v.SetDefault("dev_server.listen", d.DevServer.Listen)
	v.SetDefault("dev_server.fail_trigger", d.DevServer.FailTrigger)

	// Transcript API
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.disable_mcp", d.API.DisableMCP)
}
