// Package versioncmder provides the version command.
package versioncmder

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/pkg/utils"
)

type versionCommander struct {
	short bool
}

func NewVersionCmd() *cobra.Command {
	cmder := &versionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version, commit and build time of this CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().BoolVar(&cmder.short, "short", false, "Print only the version")

	return cmd
}

func (c *versionCommander) run(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if c.short {
		fmt.Fprintln(out, utils.Version)
		return nil
	}

	fmt.Fprintf(out, "Version: %s\nSha: %s\nBuilt at: %s\nGo: %s %s/%s\n",
		utils.Version, utils.Sha, utils.Buildtime,
		runtime.Version(), runtime.GOOS, runtime.GOARCH,
	)
	return nil
}
