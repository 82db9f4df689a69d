// Package authcmder provides the login, logout and whoami commands.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/client"
	"github.com/papercomputeco/devassist/pkg/cliui"
	"github.com/papercomputeco/devassist/pkg/config"
	"github.com/papercomputeco/devassist/pkg/dotdir"
)

type loginCommander struct {
	baseURL       string
	username      string
	passwordStdin bool
}

const loginLongDesc string = `Log in to the Developer Assistant backend.

Prompts for the password without echoing it, then stores the issued token
in .devassist/state.json (readable by you only). Pipe the password in with
--password-stdin for scripts.

Examples:
  devassist login --username alice
  devassist login -b https://assist.internal -u alice
  echo "$PASSWORD" | devassist login -u alice --password-stdin`

const loginShortDesc string = "Log in to the backend"

func NewLoginCmd() *cobra.Command {
	cmder := &loginCommander{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: loginShortDesc,
		Long:  loginLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	cmd.Flags().StringVarP(&cmder.username, "username", "u", "", "Username (prompted when omitted)")
	cmd.Flags().BoolVar(&cmder.passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

func (c *loginCommander) run(cmd *cobra.Command) error {
	env, err := cmdutil.Load(cmd, config.FlagBaseURL)
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	username := strings.TrimSpace(c.username)
	if username == "" {
		fmt.Fprint(out, "Username: ")
		if username, err = readLine(in); err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
	}
	if username == "" {
		return errors.New("username is required")
	}

	password, err := readSecret(cmd, in, out, "Password: ", c.passwordStdin)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	cl, err := env.Client()
	if err != nil {
		return err
	}

	var resp *client.LoginResponse
	err = cliui.Step(out, fmt.Sprintf("Logging in to %s as %s", cl.BaseURL(), cliui.NameStyle.Render(username)), func() error {
		var loginErr error
		resp, loginErr = cl.Login(cmd.Context(), username, password)
		return loginErr
	})
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errors.New("invalid username or password")
		}
		return err
	}

	err = env.SaveState(&dotdir.State{
		BaseURL:  cl.BaseURL(),
		Username: username,
		Token:    resp.Token,
		Role:     resp.Role,
	})
	if err != nil {
		return fmt.Errorf("saving login state: %w", err)
	}

	env.Logger.Info("logged in", "username", username, "base_url", cl.BaseURL())

	if resp.MustChangePassword {
		fmt.Fprintf(out, "  %s\n", cliui.ErrorStyle.Render(`Your password must be changed, run "devassist passwd".`))
	}

	return nil
}

// readSecret reads without echo from a terminal, or a plain line otherwise.
func readSecret(cmd *cobra.Command, in *bufio.Reader, out io.Writer, prompt string, plain bool) (string, error) {
	if !plain {
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fmt.Fprint(out, prompt)
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			return string(b), err
		}
	}

	return readLine(in)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
