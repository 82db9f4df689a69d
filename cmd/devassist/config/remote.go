package configcmder

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/cliui"
	"github.com/papercomputeco/devassist/pkg/config"
)

const pushLongDesc string = `Save answer preferences to your backend account.

Preferences live on the backend and are sent with every question, so they
follow you across machines. Each argument is a key=value pair. Pairs are
merged into the preferences already stored; keys you leave out keep their
value.

Examples:
  devassist config push response_mode=detailed
  devassist config push explanation_level=beginner step_by_step_mode=On`

func newPushCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "push <key=value>...",
		Short: "Save answer preferences to the backend",
		Long:  pushLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parsePairs(args)
			if err != nil {
				return err
			}

			env, err := cmdutil.Load(cmd, config.FlagBaseURL)
			if err != nil {
				return err
			}
			defer env.Close()

			cl, err := env.AuthedClient()
			if err != nil {
				return err
			}

			prefs, err := cl.UserConfig(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading preferences: %w", err)
			}
			if prefs == nil {
				prefs = make(map[string]any, len(updates))
			}
			for k, v := range updates {
				prefs[k] = v
			}

			if err := cl.SaveUserConfig(cmd.Context(), prefs); err != nil {
				return fmt.Errorf("saving preferences: %w", err)
			}
			env.Logger.Info("saved preferences", "keys", slices.Sorted(maps.Keys(updates)))

			out := cmd.OutOrStdout()
			for _, k := range slices.Sorted(maps.Keys(updates)) {
				fmt.Fprintf(out, "  %s Set %s = %s\n",
					cliui.SuccessMark,
					cliui.KeyStyle.Render(k),
					cliui.ValueStyle.Render(updates[k]),
				)
			}
			return nil
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &baseURL)

	return cmd
}

func newRemoteCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Show the answer preferences stored on the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdutil.Load(cmd, config.FlagBaseURL)
			if err != nil {
				return err
			}
			defer env.Close()

			cl, err := env.AuthedClient()
			if err != nil {
				return err
			}

			prefs, err := cl.UserConfig(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading preferences: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n  %s %s\n\n", cliui.KeyStyle.Render("Backend:"), cliui.DimStyle.Render(cl.BaseURL()))
			for _, k := range slices.Sorted(maps.Keys(prefs)) {
				fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render(k), cliui.ValueStyle.Render(fmt.Sprint(prefs[k])))
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &baseURL)

	return cmd
}

// parsePairs splits key=value arguments. Keys must be non-empty.
func parsePairs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
