package authcmder

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/cliui"
	"github.com/papercomputeco/devassist/pkg/config"
)

func NewWhoamiCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Long:  "Show the logged in user as reported by the backend.",
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

			info, err := cl.UserInfo(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching user info: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n  %s %s\n\n", cliui.KeyStyle.Render("Backend:"), cliui.DimStyle.Render(cl.BaseURL()))
			for _, k := range slices.Sorted(maps.Keys(info)) {
				fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render(k), cliui.ValueStyle.Render(fmt.Sprint(info[k])))
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &baseURL)

	return cmd
}
