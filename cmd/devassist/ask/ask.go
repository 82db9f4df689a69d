// Package askcmder provides the ask command for one-shot questions.
package askcmder

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/cliui"
)

type askCommander struct {
	flags     cmdutil.AskFlags
	sessionID int
}

const askLongDesc string = `Ask a single question and stream the answer to stdout.

By default the question is asked outside any session, so nothing is saved
by the backend. Pass --session to ask within a session and include its recent
history as context. The turn is recorded in the local transcript store either
way. Reads the question from stdin when no argument is given.

Examples:
  devassist ask "how do I rotate the payments api keys?"
  devassist ask --module 2 "where is the onboarding checklist?"
  git diff | devassist ask`

const askShortDesc string = "Ask a single question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: askShortDesc,
		Long:  askLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmder.flags.Register(cmd)
	cmd.Flags().IntVar(&cmder.sessionID, "session", 0, "Ask within this session")

	return cmd
}

func (c *askCommander) run(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading question: %w", err)
		}
		question = strings.TrimSpace(string(b))
	}
	if question == "" {
		return errors.New("no question provided")
	}

	env, err := cmdutil.Load(cmd, cmdutil.AskFlagKeys...)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cl, err := env.AuthedClient()
	if err != nil {
		return err
	}

	recorder, err := env.NewRecorder(ctx)
	if err != nil {
		return err
	}
	defer recorder.Close()

	conv := cmdutil.NewConversation(ctx, env, cl, recorder)
	if c.sessionID != 0 {
		if err := conv.Switch(ctx, c.sessionID); err != nil {
			return err
		}
	}

	printer := &cmdutil.StreamPrinter{W: out}
	update := printer.Update
	if env.Config.Chat.Markdown {
		update = nil
	}

	turn, err := conv.Ask(ctx, question, update)
	if err != nil {
		printer.Fail(err)
		return err
	}

	if env.Config.Chat.Markdown {
		rendered, renderErr := cliui.RenderMarkdown(turn.Answer, cliui.DefaultWrap)
		fmt.Fprint(out, rendered)
		if renderErr != nil {
			fmt.Fprintln(out)
		}
		return nil
	}

	fmt.Fprintln(out)
	return nil
}
