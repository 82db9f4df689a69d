package authcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/cliui"
)

const logoutLongDesc string = `Log out by removing the stored token.

The backend issues opaque tokens that are simply forgotten locally.`

func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the backend",
		Long:  logoutLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdutil.Load(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if !env.State.LoggedIn() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", cliui.DimStyle.Render("Not logged in."))
				return nil
			}

			username := env.State.Username
			if err := env.ClearState(); err != nil {
				return fmt.Errorf("clearing login state: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  %s Logged out %s\n", cliui.SuccessMark, cliui.NameStyle.Render(username))
			return nil
		},
	}
}
