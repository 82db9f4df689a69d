package testutils

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"
)

// ExecuteCommand runs cmd with args and stdin, returning everything written
// to stdout and stderr.
func ExecuteCommand(cmd *cobra.Command, stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}
