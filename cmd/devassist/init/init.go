// Package initcmder provides the init command for initializing a local
// .devassist directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/pkg/cliui"
	"github.com/papercomputeco/devassist/pkg/config"
)

const dirName = ".devassist"

const initLongDesc string = `Initialize a new .devassist/ directory in the current working directory.

Creates a local .devassist/ directory that takes precedence over the default
~/.devassist/ directory for login state, configuration, the transcript store
and the client log. This keeps separate devassist state per project.

With --preset a starter config.toml is written as well:
  local    in-memory transcripts, no event stream
  sqlite   transcripts kept in .devassist/transcripts.db
  kafka    sqlite transcripts, turns published to localhost:9092

Examples:
  devassist init
  devassist init --preset sqlite`

type initCommander struct {
	preset string
	force  bool
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a local .devassist/ directory",
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "",
		"Write a starter config ("+strings.Join(config.ValidPresetNames(), ", ")+")")
	cmd.Flags().BoolVar(&cmder.force, "force", false, "Overwrite an existing config.toml when --preset is given")

	return cmd
}

func (c *initCommander) run(out io.Writer) error {
	// Resolve the preset first so a typo leaves no directory behind.
	var preset *config.Config
	if c.preset != "" {
		var err error
		if preset, err = config.PresetConfig(c.preset); err != nil {
			return err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	dir := filepath.Join(cwd, dirName)

	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		fmt.Fprintf(out, "Already initialized: %s\n", dir)
	} else {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating .devassist directory: %w", err)
		}
		fmt.Fprintf(out, "Initialized .devassist directory: %s\n", dir)
	}

	if preset == nil {
		return nil
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfger.Exists() && !c.force {
		return fmt.Errorf("%s already exists, pass --force to overwrite it", cfger.GetTarget())
	}
	if err := cfger.SaveConfig(preset); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Wrote %s preset to %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(c.preset), cfger.GetTarget())
	return nil
}
