package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --base-url
// on "devassist chat", "devassist ask" and "devassist login").
type Flag struct {
	// Name is the long flag name (e.g. "base-url").
	Name string

	// Shorthand is the one-letter short flag (e.g. "b"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "client.base_url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling the Add*Flag helpers and
// BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagBaseURL       = "base-url"
	FlagTimeout       = "timeout"
	FlagModule        = "module"
	FlagHistoryWindow = "history-window"
	FlagMarkdown      = "markdown"
	FlagStorage       = "storage"
	FlagSQLite        = "sqlite"
	FlagPostgresDSN   = "postgres-dsn"
	FlagEventStream   = "event-stream"
	FlagKafkaBrokers  = "kafka-brokers"
	FlagKafkaTopic    = "kafka-topic"
	FlagWorkers       = "workers"
	FlagQueueSize     = "queue-size"
	FlagListen        = "listen"
	FlagFailTrigger   = "fail-trigger"
	FlagAPIListen     = "api-listen"
	FlagDisableMCP    = "disable-mcp"
)

// Flags is the registry shared by every devassist command.
var Flags = FlagSet{
	FlagBaseURL:       {Name: "base-url", Shorthand: "b", ViperKey: "client.base_url", Description: "Assistant backend URL"},
	FlagTimeout:       {Name: "timeout", ViperKey: "client.timeout", Description: "Request timeout, streamed answers included"},
	FlagModule:        {Name: "module", Shorthand: "m", ViperKey: "chat.module_id", Description: "Knowledge module to scope questions to (0 for none)"},
	FlagHistoryWindow: {Name: "history-window", ViperKey: "chat.history_window", Description: "Number of prior messages sent as context"},
	FlagMarkdown:      {Name: "markdown", ViperKey: "chat.markdown", Description: "Re-render finished answers as markdown"},
	FlagStorage:       {Name: "storage", ViperKey: "storage.driver", Description: "Transcript storage driver (inmemory, sqlite, postgres)"},
	FlagSQLite:        {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite transcript database"},
	FlagPostgresDSN:   {Name: "postgres-dsn", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string for transcripts"},
	FlagEventStream:   {Name: "event-stream", ViperKey: "event_stream.provider", Description: "Turn event publisher (nop, kafka)"},
	FlagKafkaBrokers:  {Name: "kafka-brokers", ViperKey: "event_stream.brokers", Description: "Comma separated kafka brokers"},
	FlagKafkaTopic:    {Name: "kafka-topic", ViperKey: "event_stream.topic", Description: "Kafka topic for turn events"},
	FlagWorkers:       {Name: "workers", ViperKey: "worker.num_workers", Description: "Background workers persisting turns"},
	FlagQueueSize:     {Name: "queue-size", ViperKey: "worker.queue_size", Description: "Pending turn queue size"},
	FlagListen:        {Name: "listen", Shorthand: "l", ViperKey: "dev_server.listen", Description: "Address for the mock backend to listen on"},
	FlagFailTrigger:   {Name: "fail-trigger", ViperKey: "dev_server.fail_trigger", Description: "Question substring that makes the mock backend fail mid-stream"},
	FlagAPIListen:     {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the transcript API to listen on"},
	FlagDisableMCP:    {Name: "disable-mcp", ViperKey: "api.disable_mcp", Description: "Do not serve the MCP endpoint"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddPersistentStringFlag is AddStringFlag for a flag inherited by subcommands.
func AddPersistentStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	cmd.PersistentFlags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper holding only NewDefaultConfig values.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
