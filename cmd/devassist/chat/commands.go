package chatcmder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/papercomputeco/devassist/pkg/client"
	"github.com/papercomputeco/devassist/pkg/cliui"
)

const replHelp = `  /new [name]     Start a new session
  /sessions       List your sessions
  /switch <id>    Switch to another session
  /module <id>    Scope questions to a module (0 clears)
  /history        Show the current session's messages
  /clear          Delete the current session's messages
  /exit           Quit`

// command runs one slash command. It reports whether the chat should end.
func (r *repl) command(input string) (bool, error) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/exit", "/quit":
		return true, nil

	case "/help":
		fmt.Fprintf(r.out, "%s\n\n", replHelp)

	case "/new":
		if err := r.conv.NewSession(r.ctx, arg); err != nil {
			return false, err
		}
		r.printSession()
		fmt.Fprintln(r.out)

	case "/sessions":
		return false, r.listSessions()

	case "/switch":
		id, err := parseID(arg)
		if err != nil {
			return false, err
		}
		if err := r.conv.Switch(r.ctx, id); err != nil {
			return false, err
		}
		r.printSession()
		fmt.Fprintln(r.out)

	case "/module":
		id, err := strconv.Atoi(arg)
		if err != nil || id < 0 {
			return false, fmt.Errorf("usage: /module <id>")
		}
		r.conv.SetModule(id)
		fmt.Fprintf(r.out, "  %s %s\n\n", cliui.SuccessMark, moduleLabel(id))

	case "/history":
		r.printHistory()

	case "/clear":
		if err := r.conv.Clear(r.ctx); err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "  %s Cleared session %d\n\n", cliui.SuccessMark, r.conv.SessionID())

	default:
		return false, fmt.Errorf("unknown command %s, try /help", name)
	}

	return false, nil
}

func (r *repl) printSession() {
	fmt.Fprintf(r.out, "  %s %s  %s %s  %s\n",
		cliui.KeyStyle.Render("Session:"),
		cliui.NameStyle.Render(strconv.Itoa(r.conv.SessionID())),
		cliui.KeyStyle.Render("Module:"),
		cliui.ValueStyle.Render(moduleLabel(r.conv.ModuleID())),
		cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(r.conv.History()))),
	)
}

func (r *repl) listSessions() error {
	sessions, err := r.client.ListSessions(r.ctx)
	if err != nil {
		return err
	}

	for _, s := range sessions {
		marker := " "
		if s.ID == r.conv.SessionID() {
			marker = cliui.SuccessMark
		}
		fmt.Fprintf(r.out, "  %s %s  %s  %s\n",
			marker,
			cliui.NameStyle.Render(fmt.Sprintf("%4d", s.ID)),
			s.Name,
			cliui.DimStyle.Render(s.UpdatedAt),
		)
	}
	fmt.Fprintln(r.out)
	return nil
}

func (r *repl) printHistory() {
	history := r.conv.History()
	if len(history) == 0 {
		fmt.Fprintf(r.out, "  %s\n\n", cliui.DimStyle.Render("No messages yet."))
		return
	}

	for _, m := range history {
		prompt := cliui.UserPrompt
		if m.Role == client.RoleAssistant {
			prompt = cliui.AssistantPrompt
		}
		fmt.Fprintf(r.out, "%s%s\n", prompt, m.Content)
	}
	fmt.Fprintln(r.out)
}

func moduleLabel(id int) string {
	if id == 0 {
		return "none"
	}
	return strconv.Itoa(id)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("expected a session id, got %q", arg)
	}
	return id, nil
}
