// Package turnscmder provides the turns command for inspecting the local
// transcript store.
package turnscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/cliui"
	"github.com/papercomputeco/devassist/pkg/config"
	"github.com/papercomputeco/devassist/pkg/storage"
	"github.com/papercomputeco/devassist/pkg/utils"
)

// turnsFlagKeys select the transcript store to read.
var turnsFlagKeys = []string{config.FlagStorage, config.FlagSQLite, config.FlagPostgresDSN}

const turnsLongDesc string = `Inspect turns recorded in the local transcript store.

Every question asked through "devassist chat" or "devassist ask" is recorded
with its answer or failure. Only the sqlite and postgres drivers keep turns
between runs.

Examples:
  devassist turns list --session 3
  devassist turns show 2b0e6c1e-...`

func NewTurnsCmd() *cobra.Command {
	var storageDriver, sqlitePath, postgresDSN string

	cmd := &cobra.Command{
		Use:   "turns",
		Short: "Inspect recorded turns",
		Long:  turnsLongDesc,
	}

	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagStorage, &storageDriver)
	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagSQLite, &sqlitePath)
	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &postgresDSN)

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())

	return cmd
}

func withDriver(cmd *cobra.Command, fn func(ctx context.Context, driver storage.Driver) error) error {
	env, err := cmdutil.Load(cmd, turnsFlagKeys...)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	driver, err := env.NewStorageDriver(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	return fn(ctx, driver)
}

func newListCmd() *cobra.Command {
	var sessionID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a session's turns, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDriver(cmd, func(ctx context.Context, driver storage.Driver) error {
				turns, err := driver.List(ctx, sessionID)
				if err != nil {
					return fmt.Errorf("listing turns: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(turns) == 0 {
					fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render("No turns recorded."))
					return nil
				}

				for _, t := range turns {
					var err error
					if t.Outcome != storage.OutcomeAnswered {
						err = fmt.Errorf("%s", t.Outcome)
					}
					fmt.Fprintf(out, "  %s %s  %s  %s\n",
						cliui.Mark(err),
						cliui.DimStyle.Render(t.StartedAt.Local().Format("2006-01-02 15:04:05")),
						cliui.NameStyle.Render(utils.Truncate(t.ID, 8)),
						utils.Truncate(t.Question, 60),
					)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&sessionID, "session", 0, "Session whose turns to list (0 for questions asked outside a session)")

	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cmd, func(ctx context.Context, driver storage.Driver) error {
				t, err := driver.Get(ctx, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				row := func(k, v string) {
					fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-10s", k)), cliui.ValueStyle.Render(v))
				}
				row("ID", t.ID)
				row("Session", fmt.Sprint(t.SessionID))
				if t.ModuleID != nil {
					row("Module", fmt.Sprint(*t.ModuleID))
				}
				row("Outcome", string(t.Outcome))
				row("Started", t.StartedAt.Local().Format("2006-01-02 15:04:05"))
				row("Duration", cliui.FormatDuration(t.Duration()))
				if t.Error != "" {
					row("Error", t.Error)
				}

				fmt.Fprintf(out, "\n%s%s\n", cliui.UserPrompt, t.Question)
				if t.Answer != "" {
					fmt.Fprintf(out, "%s%s\n", cliui.AssistantPrompt, t.Answer)
				}
				return nil
			})
		},
	}
}
