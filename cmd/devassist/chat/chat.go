// Package chatcmder provides the chat command for an interactive session
// with the Developer Assistant.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/chatstream"
	"github.com/papercomputeco/devassist/pkg/client"
	"github.com/papercomputeco/devassist/pkg/cliui"
	"github.com/papercomputeco/devassist/pkg/conversation"
)

type chatCommander struct {
	flags      cmdutil.AskFlags
	sessionID  int
	dumpStream string
}

const chatLongDesc string = `Start an interactive chat with the Developer Assistant.

Answers are streamed as they are generated. The chat resumes the session
used last time (or the most recently updated one); every question and answer
is saved to it by the backend. Finished turns are also recorded locally in
the configured transcript store.

Commands:
  /new [name]     Start a new session
  /sessions       List your sessions
  /switch <id>    Switch to another session
  /module <id>    Scope questions to a module (0 clears)
  /history        Show the current session's messages
  /clear          Delete the current session's messages
  /help           Show this help
  /exit           Quit (or Ctrl+D)

Examples:
  devassist chat
  devassist chat --session 12 --module 2
  devassist chat --markdown
  devassist chat --dump-stream /tmp/stream.txt`

const chatShortDesc string = "Interactive chat with the Developer Assistant"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmder.flags.Register(cmd)
	cmd.Flags().IntVar(&cmder.sessionID, "session", 0, "Session to resume (default: last used)")
	cmd.Flags().StringVar(&cmder.dumpStream, "dump-stream", "", "Write the raw answer streams to this file")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	env, err := cmdutil.Load(cmd, cmdutil.AskFlagKeys...)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var opts []client.Option
	if c.dumpStream != "" {
		dump, err := os.Create(c.dumpStream)
		if err != nil {
			return fmt.Errorf("creating stream dump: %w", err)
		}
		defer dump.Close()
		opts = append(opts, client.WithAssembler(chatstream.New(
			chatstream.WithTee(dump),
			chatstream.WithLogger(env.Logger),
		)))
	}

	cl, err := env.AuthedClient(opts...)
	if err != nil {
		return err
	}

	recorder, err := env.NewRecorder(ctx)
	if err != nil {
		return err
	}
	defer recorder.Close()

	conv := cmdutil.NewConversation(ctx, env, cl, recorder)

	sessionID := c.sessionID
	if sessionID == 0 {
		sessionID = env.State.SessionID
	}
	if err := conv.Open(ctx, sessionID); err != nil {
		if c.sessionID != 0 || !errors.Is(err, client.ErrNotFound) {
			return err
		}
		// The remembered session is gone.
		if err := conv.Open(ctx, 0); err != nil {
			return err
		}
	}

	r := &repl{
		ctx:      ctx,
		out:      out,
		conv:     conv,
		client:   cl,
		markdown: env.Config.Chat.Markdown,
	}
	err = r.loop(cmd.InOrStdin())

	if rememberErr := env.RememberSession(conv.SessionID()); rememberErr != nil {
		env.Logger.Warn("could not remember session", "error", rememberErr)
	}

	return err
}

// repl is the read-ask-print loop of one chat.
type repl struct {
	ctx      context.Context
	out      io.Writer
	conv     *conversation.Conversation
	client   *client.Client
	markdown bool
}

func (r *repl) loop(in io.Reader) error {
	fmt.Fprintln(r.out)
	r.printSession()
	fmt.Fprintf(r.out, "  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /help for commands, /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, cliui.UserPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			exit, err := r.command(input)
			if err != nil {
				fmt.Fprintf(r.out, "  %s %v\n\n", cliui.FailMark, err)
			}
			if exit {
				break
			}
			continue
		}

		r.ask(input)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(r.out)
	return nil
}

func (r *repl) ask(question string) {
	fmt.Fprint(r.out, cliui.AssistantPrompt)

	if r.markdown {
		r.askMarkdown(question)
		return
	}

	printer := &cmdutil.StreamPrinter{W: r.out}
	turn, err := r.conv.Ask(r.ctx, question, printer.Update)
	if err != nil {
		printer.Fail(err)
		return
	}

	fmt.Fprintf(r.out, "\n  %s\n\n", cliui.StepStyle.Render(cliui.FormatDuration(turn.Duration())))
}

// askMarkdown waits for the whole answer so it can be rendered in one piece.
func (r *repl) askMarkdown(question string) {
	fmt.Fprintln(r.out)

	var answer string
	err := cliui.Step(r.out, "Thinking", func() error {
		turn, err := r.conv.Ask(r.ctx, question, nil)
		if turn != nil {
			answer = turn.Answer
		}
		return err
	})
	if err != nil {
		(&cmdutil.StreamPrinter{W: r.out}).Fail(err)
		return
	}

	rendered, err := cliui.RenderMarkdown(answer, cliui.DefaultWrap)
	if err != nil {
		fmt.Fprintln(r.out, answer)
		return
	}
	fmt.Fprint(r.out, rendered)
}
