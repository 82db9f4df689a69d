// Package configcmder provides the config command for managing the
// persistent devassist configuration stored in the .devassist/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/cliui"
	"github.com/papercomputeco/devassist/pkg/config"
)

const configLongDesc string = `Manage persistent devassist configuration.

Configuration is stored as config.toml in the .devassist/ directory and
provides default values for command flags. DEVASSIST_* environment variables
override the file, and CLI flags override both.

Keys use dotted notation matching the TOML section structure:
  client.base_url, client.timeout,
  chat.module_id, chat.history_window, chat.markdown,
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  event_stream.provider, event_stream.brokers, event_stream.topic,
  worker.num_workers, worker.queue_size,
  dev_server.listen, dev_server.fail_trigger,
  api.listen, api.disable_mcp

Examples:
  devassist config set client.base_url https://assist.example.com
  devassist config set storage.driver sqlite
  devassist config get chat.history_window
  devassist config list

Answer preferences (response mode, explanation level and so on) are stored
on the backend instead. Show them with "devassist config remote" and change
them with "devassist config push key=value".`

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage persistent devassist configuration",
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newPushCmd())
	cmd.AddCommand(newRemoteCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func configer(cmd *cobra.Command) (*config.Configer, error) {
	configDir, _ := cmd.Flags().GetString(cmdutil.FlagConfigDir)
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfger, nil
}

func printTarget(w io.Writer, cfger *config.Configer) {
	if cfger.Exists() {
		fmt.Fprintf(w, "\n  %s %s\n\n", cliui.KeyStyle.Render("Config file:"), cliui.DimStyle.Render(cfger.GetTarget()))
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in config.toml.

Values are validated before they are written: numbers must parse, and
storage.driver and event_stream.provider must name a known backend.

Examples:
  devassist config set chat.module_id 2
  devassist config set event_stream.brokers kafka-1:9092,kafka-2:9092`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := checkKey(key); err != nil {
				return err
			}

			cfger, err := configer(cmd)
			if err != nil {
				return err
			}

			if err := cfger.SetConfigValue(key, value); err != nil {
				return err
			}

			// Re-read so the printed value is the normalized one.
			stored, err := cfger.GetConfigValue(key)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printTarget(out, cfger)
			fmt.Fprintf(out, "  %s Set %s = %s\n\n",
				cliui.SuccessMark,
				cliui.KeyStyle.Render(key),
				cliui.ValueStyle.Render(stored),
			)
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "get <key>",
		Short:             "Get a configuration value",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := checkKey(key); err != nil {
				return err
			}

			cfger, err := configer(cmd)
			if err != nil {
				return err
			}

			value, err := cfger.GetConfigValue(key)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printTarget(out, cfger)
			if value == "" {
				fmt.Fprintf(out, "  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.DimStyle.Render("<not set>"))
			} else {
				fmt.Fprintf(out, "  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.ValueStyle.Render(value))
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfger, err := configer(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfger.Exists() {
				fmt.Fprintf(out, "Using config file: %s\n\n", cfger.GetTarget())
			} else {
				fmt.Fprint(out, "No config file found. Using default config.\n\n")
			}

			keys := config.ValidConfigKeys()
			width := 0
			for _, k := range keys {
				width = max(width, len(k))
			}

			for _, key := range keys {
				value, err := cfger.GetConfigValue(key)
				if err != nil {
					return err
				}
				if value == "" {
					fmt.Fprintf(out, "%-*s = <not set>\n", width, key)
				} else {
					fmt.Fprintf(out, "%-*s = %q\n", width, key, value)
				}
			}
			return nil
		},
	}
}
