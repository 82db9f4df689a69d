// Package devassistcmder is the root of the devassist command tree.
package devassistcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/devassist/cmd/devassist/ask"
	authcmder "github.com/papercomputeco/devassist/cmd/devassist/auth"
	chatcmder "github.com/papercomputeco/devassist/cmd/devassist/chat"
	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	configcmder "github.com/papercomputeco/devassist/cmd/devassist/config"
	initcmder "github.com/papercomputeco/devassist/cmd/devassist/init"
	modulescmder "github.com/papercomputeco/devassist/cmd/devassist/modules"
	servecmder "github.com/papercomputeco/devassist/cmd/devassist/serve"
	sessionscmder "github.com/papercomputeco/devassist/cmd/devassist/sessions"
	turnscmder "github.com/papercomputeco/devassist/cmd/devassist/turns"
	versioncmder "github.com/papercomputeco/devassist/cmd/version"
)

const devassistLongDesc string = `devassist is a terminal client for the Developer Assistant.

Ask questions and get answers streamed as they are generated, manage chat
sessions, and keep a local transcript of every turn.

Get started:
  devassist login          Log in to the backend
  devassist chat           Start an interactive chat
  devassist ask "..."      Ask a single question
  devassist serve mock     Run a local mock backend`

const devassistShortDesc string = "devassist - Developer Assistant CLI"

func NewDevassistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "devassist",
		Short:         devassistShortDesc,
		Long:          devassistLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmdutil.AddGlobalFlags(cmd)

	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(authcmder.NewLoginCmd())
	cmd.AddCommand(authcmder.NewLogoutCmd())
	cmd.AddCommand(authcmder.NewWhoamiCmd())
	cmd.AddCommand(authcmder.NewPasswdCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(sessionscmder.NewSessionsCmd())
	cmd.AddCommand(modulescmder.NewModulesCmd())
	cmd.AddCommand(turnscmder.NewTurnsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
