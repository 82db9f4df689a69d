package sessionscmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/client"
	"github.com/papercomputeco/devassist/pkg/cliui"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithClient(cmd, func(ctx context.Context, env *cmdutil.Env, cl *client.Client) error {
				sessions, err := cl.ListSessions(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render("No sessions yet."))
					return nil
				}

				for _, s := range sessions {
					marker := " "
					if s.ID == env.State.SessionID {
						marker = cliui.SuccessMark
					}
					fmt.Fprintf(out, "  %s %s  %s  %s\n",
						marker,
						cliui.NameStyle.Render(fmt.Sprintf("%4d", s.ID)),
						s.Name,
						cliui.DimStyle.Render(s.UpdatedAt),
					)
				}
				return nil
			})
		},
	}
}

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new [name]",
		Short: "Create a session",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(cmd, func(ctx context.Context, env *cmdutil.Env, cl *client.Client) error {
				name := strings.Join(args, " ")
				id, err := cl.CreateSession(ctx, name)
				if err != nil {
					return err
				}
				if err := env.RememberSession(id); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "  %s Created session %s\n", cliui.SuccessMark, cliui.NameStyle.Render(fmt.Sprint(id)))
				return nil
			})
		},
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}
			name := strings.Join(args[1:], " ")

			return runWithClient(cmd, func(ctx context.Context, _ *cmdutil.Env, cl *client.Client) error {
				if err := cl.RenameSession(ctx, id, name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s Renamed session %d to %s\n", cliui.SuccessMark, id, cliui.NameStyle.Render(name))
				return nil
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}

			return runWithClient(cmd, func(ctx context.Context, env *cmdutil.Env, cl *client.Client) error {
				if err := cl.DeleteSession(ctx, id); err != nil {
					return err
				}
				if env.State.SessionID == id {
					if err := env.RememberSession(0); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s Deleted session %d\n", cliui.SuccessMark, id)
				return nil
			})
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show a session's messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}

			return runWithClient(cmd, func(ctx context.Context, _ *cmdutil.Env, cl *client.Client) error {
				history, err := cl.SessionHistory(ctx, id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(history) == 0 {
					fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render("No messages."))
					return nil
				}

				for _, m := range history {
					prompt := cliui.UserPrompt
					if m.Role == client.RoleAssistant {
						prompt = cliui.AssistantPrompt
					}
					fmt.Fprintf(out, "%s %s%s\n", cliui.DimStyle.Render(m.Timestamp), prompt, m.Content)
				}
				return nil
			})
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <id>",
		Short: "Delete a session's messages, keeping the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}

			return runWithClient(cmd, func(ctx context.Context, _ *cmdutil.Env, cl *client.Client) error {
				if err := cl.ClearSessionMessages(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s Cleared session %d\n", cliui.SuccessMark, id)
				return nil
			})
		},
	}
}

func newUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Resume this session in the next chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}

			return runWithClient(cmd, func(ctx context.Context, env *cmdutil.Env, cl *client.Client) error {
				// Fails for sessions that do not exist or belong to someone else.
				if _, err := cl.SessionHistory(ctx, id); err != nil {
					return err
				}
				if err := env.RememberSession(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s Using session %d\n", cliui.SuccessMark, id)
				return nil
			})
		},
	}
}
