// Package modulescmder provides the modules command for browsing the
// knowledge modules questions can be scoped to and the documents behind them.
package modulescmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/cliui"
	"github.com/papercomputeco/devassist/pkg/config"
)

type modulesCommander struct {
	baseURL string
	teamID  int
}

const modulesLongDesc string = `List the knowledge modules available to you.

Pass a module's ID to "devassist chat --module" or "devassist ask --module"
to scope questions to it, or set it as the default:
  devassist config set chat.module_id 2

Browse what a module was built from with "devassist modules docs" and
"devassist modules stats <id>".`

func NewModulesCmd() *cobra.Command {
	cmder := &modulesCommander{}

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List knowledge modules",
		Long:  modulesLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	cmd.Flags().IntVar(&cmder.teamID, "team", 0, "Only list modules of this team")

	cmd.AddCommand(newDocsCmd())
	cmd.AddCommand(newStatsCmd())

	return cmd
}

func (c *modulesCommander) run(cmd *cobra.Command) error {
	env, err := cmdutil.Load(cmd, config.FlagBaseURL)
	if err != nil {
		return err
	}
	defer env.Close()

	cl, err := env.AuthedClient()
	if err != nil {
		return err
	}

	var team *int
	if c.teamID != 0 {
		team = &c.teamID
	}

	modules, err := cl.ListModules(cmd.Context(), team)
	if err != nil {
		return fmt.Errorf("listing modules: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(modules) == 0 {
		fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render("No modules found."))
		return nil
	}

	for _, m := range modules {
		fmt.Fprintf(out, "  %s  %s", cliui.NameStyle.Render(fmt.Sprintf("%4d", m.ID)), cliui.KeyStyle.Render(m.Name))
		if m.TeamName != "" {
			fmt.Fprintf(out, "  %s", cliui.DimStyle.Render("("+m.TeamName+")"))
		}
		fmt.Fprintln(out)
		if m.Description != "" {
			fmt.Fprintf(out, "        %s\n", cliui.ValueStyle.Render(m.Description))
		}
	}
	return nil
}
