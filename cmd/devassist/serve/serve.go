// Package servecmder provides the serve command with subcommands for running
// local services.
package servecmder

import (
	"github.com/spf13/cobra"

	apicmder "github.com/papercomputeco/devassist/cmd/devassist/serve/api"
	mockcmder "github.com/papercomputeco/devassist/cmd/devassist/serve/mock"
)

const serveLongDesc string = `Run local devassist services.

  devassist serve mock    Run an in-memory stand-in for the assistant backend
  devassist serve api     Serve recorded turns over HTTP and MCP`

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run local devassist services",
		Long:  serveLongDesc,
	}

	cmd.AddCommand(mockcmder.NewMockCmd())
	cmd.AddCommand(apicmder.NewAPICmd())

	return cmd
}
