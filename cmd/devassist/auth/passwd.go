package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/cliui"
	"github.com/papercomputeco/devassist/pkg/config"
)

type passwdCommander struct {
	baseURL       string
	username      string
	passwordStdin bool
}

const passwdLongDesc string = `Change your Developer Assistant password.

Prompts twice for the new password without echoing it. The username
defaults to the logged in user. With --password-stdin the new password and
its confirmation are read as two lines from stdin.

Examples:
  devassist passwd
  devassist passwd -u alice
  printf '%s\n%s\n' "$NEW" "$NEW" | devassist passwd -u alice --password-stdin`

func NewPasswdCmd() *cobra.Command {
	cmder := &passwdCommander{}

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Long:  passwdLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	cmd.Flags().StringVarP(&cmder.username, "username", "u", "", "Username (defaults to the logged in user)")
	cmd.Flags().BoolVar(&cmder.passwordStdin, "password-stdin", false, "Read the new password from stdin")

	return cmd
}

func (c *passwdCommander) run(cmd *cobra.Command) error {
	env, err := cmdutil.Load(cmd, config.FlagBaseURL)
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	username := strings.TrimSpace(c.username)
	if username == "" && env.State != nil {
		username = env.State.Username
	}
	if username == "" {
		fmt.Fprint(out, "Username: ")
		if username, err = readLine(in); err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
	}
	if username == "" {
		return errors.New("username is required")
	}

	password, err := readSecret(cmd, in, out, "New password: ", c.passwordStdin)
	if err != nil {
		return fmt.Errorf("reading new password: %w", err)
	}
	if password == "" {
		return errors.New("new password is required")
	}
	confirm, err := readSecret(cmd, in, out, "Confirm password: ", c.passwordStdin)
	if err != nil {
		return fmt.Errorf("reading password confirmation: %w", err)
	}
	if confirm != password {
		return errors.New("passwords do not match")
	}

	cl, err := env.Client()
	if err != nil {
		return err
	}

	err = cliui.Step(out, fmt.Sprintf("Changing password for %s", cliui.NameStyle.Render(username)), func() error {
		return cl.ChangePassword(cmd.Context(), username, password)
	})
	if err != nil {
		return err
	}

	env.Logger.Info("password changed", "username", username, "base_url", cl.BaseURL())
	return nil
}
