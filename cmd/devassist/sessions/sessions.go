// Package sessionscmder provides the sessions command for managing the
// chat sessions stored by the backend.
package sessionscmder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/client"
	"github.com/papercomputeco/devassist/pkg/config"
)

const sessionsLongDesc string = `Manage your chat sessions.

Sessions live on the backend; "devassist chat" resumes the one used last.

Use subcommands to manage sessions:
  devassist sessions list                 List sessions, most recent first
  devassist sessions new [name]           Create a session
  devassist sessions rename <id> <name>   Rename a session
  devassist sessions delete <id>          Delete a session and its messages
  devassist sessions history <id>         Show a session's messages
  devassist sessions clear <id>           Delete a session's messages
  devassist sessions use <id>             Resume this session in the next chat`

const sessionsShortDesc string = "Manage chat sessions"

func NewSessionsCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: sessionsShortDesc,
		Long:  sessionsLongDesc,
	}

	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagBaseURL, &baseURL)

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newNewCmd())
	cmd.AddCommand(newRenameCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newClearCmd())
	cmd.AddCommand(newUseCmd())

	return cmd
}

// runWithClient loads the environment and an authenticated client for fn.
func runWithClient(cmd *cobra.Command, fn func(ctx context.Context, env *cmdutil.Env, cl *client.Client) error) error {
	env, err := cmdutil.Load(cmd, config.FlagBaseURL)
	if err != nil {
		return err
	}
	defer env.Close()

	cl, err := env.AuthedClient()
	if err != nil {
		return err
	}

	return fn(cmd.Context(), env, cl)
}

func parseSessionID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid session id %q", arg)
	}
	return id, nil
}
