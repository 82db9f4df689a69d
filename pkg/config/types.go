package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent devassist configuration stored as
// config.toml in the .devassist/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Client      ClientConfig      `toml:"client"`
	Chat        ChatConfig        `toml:"chat"`
	Storage     StorageConfig     `toml:"storage"`
	EventStream EventStreamConfig `toml:"event_stream"`
	Worker      WorkerConfig      `toml:"worker"`
	DevServer   DevServerConfig   `toml:"dev_server"`
	API         APIConfig         `toml:"api"`
}

// ClientConfig holds settings for talking to the assistant backend.
type ClientConfig struct {
	// BaseURL is the backend root, scheme + host + port.
	BaseURL string `toml:"base_url,omitempty"`

	// Timeout bounds a whole request, streamed answers included.
	// Go duration syntax, e.g. "5m".
	Timeout string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout. An empty value is zero.
func (c ClientConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Timeout)
}

// ChatConfig holds defaults for "devassist chat" and "devassist ask".
type ChatConfig struct {
	// ModuleID scopes questions to a knowledge module. Zero means none.
	ModuleID int `toml:"module_id,omitempty"`

	// HistoryWindow is how many prior messages are sent as context.
	HistoryWindow uint `toml:"history_window,omitempty"`

	// Markdown re-renders finished answers as terminal markdown.
	Markdown bool `toml:"markdown,omitempty"`
}

// StorageConfig selects where finished turns are recorded locally.
type StorageConfig struct {
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventStreamConfig selects where turn completion events are published.
type EventStreamConfig struct {
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma separated list of kafka bootstrap addresses.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// BrokerList splits Brokers, dropping blanks.
func (e EventStreamConfig) BrokerList() []string {
	var brokers []string
	for b := range strings.SplitSeq(e.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// WorkerConfig sizes the background pool that persists turns.
type WorkerConfig struct {
	NumWorkers uint `toml:"num_workers,omitempty"`
	QueueSize  uint `toml:"queue_size,omitempty"`
}

// DevServerConfig holds settings for "devassist serve mock".
type DevServerConfig struct {
	Listen      string `toml:"listen,omitempty"`
	FailTrigger string `toml:"fail_trigger,omitempty"`
}

// APIConfig holds settings for "devassist serve api".
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`

	// DisableMCP drops the Model Context Protocol endpoint at /mcp.
	DisableMCP bool `toml:"disable_mcp,omitempty"`
}

// Storage driver names.
const (
	StorageInMemory = "inmemory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Event stream provider names.
const (
	EventStreamNop   = "nop"
	EventStreamKafka = "kafka"
)

var (
	storageDrivers       = []string{StorageInMemory, StorageSQLite, StoragePostgres}
	eventStreamProviders = []string{EventStreamNop, EventStreamKafka}
)

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.base_url": {
		get: func(c *Config) string { return c.Client.BaseURL },
		set: func(c *Config, v string) error { c.Client.BaseURL = strings.TrimRight(v, "/"); return nil },
	},
	"client.timeout": {
		get: func(c *Config) string { return c.Client.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for client.timeout: %w", err)
			}
			c.Client.Timeout = v
			return nil
		},
	},
	"chat.module_id": {
		get: func(c *Config) string {
			if c.Chat.ModuleID == 0 {
				return ""
			}
			return strconv.Itoa(c.Chat.ModuleID)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.module_id: %w", err)
			}
			c.Chat.ModuleID = n
			return nil
		},
	},
	"chat.history_window": {
		get: func(c *Config) string { return formatUint(c.Chat.HistoryWindow) },
		set: func(c *Config, v string) error { return parseUint("chat.history_window", v, &c.Chat.HistoryWindow) },
	},
	"chat.markdown": {
		get: func(c *Config) string { return strconv.FormatBool(c.Chat.Markdown) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.markdown: %w", err)
			}
			c.Chat.Markdown = b
			return nil
		},
	},
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			return oneOf("storage.driver", v, storageDrivers, &c.Storage.Driver)
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"event_stream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error {
			return oneOf("event_stream.provider", v, eventStreamProviders, &c.EventStream.Provider)
		},
	},
	"event_stream.brokers": {
		get: func(c *Config) string { return c.EventStream.Brokers },
		set: func(c *Config, v string) error { c.EventStream.Brokers = v; return nil },
	},
	"event_stream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"worker.num_workers": {
		get: func(c *Config) string { return formatUint(c.Worker.NumWorkers) },
		set: func(c *Config, v string) error { return parseUint("worker.num_workers", v, &c.Worker.NumWorkers) },
	},
	"worker.queue_size": {
		get: func(c *Config) string { return formatUint(c.Worker.QueueSize) },
		set: func(c *Config, v string) error { return parseUint("worker.queue_size", v, &c.Worker.QueueSize) },
	},
	"dev_server.listen": {
		get: func(c *Config) string { return c.DevServer.Listen },
		set: func(c *Config, v string) error { c.DevServer.Listen = v; return nil },
	},
	"dev_server.fail_trigger": {
		get: func(c *Config) string { return c.DevServer.FailTrigger },
		set: func(c *Config, v string) error { c.DevServer.FailTrigger = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"api.disable_mcp": {
		get: func(c *Config) string { return strconv.FormatBool(c.API.DisableMCP) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for api.disable_mcp: %w", err)
			}
			c.API.DisableMCP = b
			return nil
		},
	},
}

func formatUint(n uint) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(n), 10)
}

func parseUint(key, v string, target *uint) error {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*target = uint(n)
	return nil
}

func oneOf(key, v string, allowed []string, target *string) error {
	v = strings.ToLower(v)
	if !slices.Contains(allowed, v) {
		return fmt.Errorf("invalid value for %s: %q (available: %s)", key, v, strings.Join(allowed, ", "))
	}
	*target = v
	return nil
}
