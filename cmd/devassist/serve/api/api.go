// Package apicmder provides the command running the transcript API.
package apicmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/api"
	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/config"
	"github.com/papercomputeco/devassist/pkg/logger"
)

type apiCommander struct {
	listen      string
	disableMCP  bool
	storage     string
	sqlitePath  string
	postgresDSN string
}

// apiFlagKeys are bound through viper so config.toml and DEVASSIST_*
// variables apply.
var apiFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagDisableMCP,
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgresDSN,
}

const apiLongDesc string = `Serve recorded turns over HTTP.

The transcript API is read-only and reads the same store "devassist chat"
and "devassist ask" record into:

  GET /ping                     Health check
  GET /v1/sessions/{id}/turns   A session's turns, oldest first
  GET /v1/turns/{id}            One turn
  POST /mcp                     MCP tools list_turns and get_turn

Examples:
  devassist serve api --storage sqlite
  devassist serve api --listen :9090 --disable-mcp`

func NewAPICmd() *cobra.Command {
	cmder := &apiCommander{}

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Run the transcript API",
		Long:  apiLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddBoolFlag(cmd, config.Flags, config.FlagDisableMCP, &cmder.disableMCP)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorage, &cmder.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)

	return cmd
}

func (c *apiCommander) run(cmd *cobra.Command) error {
	env, err := cmdutil.Load(cmd, apiFlagKeys...)
	if err != nil {
		return err
	}
	defer env.Close()

	log := env.Logger
	if !env.Debug {
		log = logger.Multi(log, logger.New(logger.WithPretty(true), logger.WithWriter(cmd.ErrOrStderr())))
	}

	driver, err := env.NewStorageDriver(cmd.Context())
	if err != nil {
		return err
	}
	defer driver.Close()

	server, err := api.NewServer(api.Config{
		ListenAddr: env.Config.API.Listen,
		DisableMCP: env.Config.API.DisableMCP,
	}, driver, log)
	if err != nil {
		return fmt.Errorf("creating transcript API: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("transcript API error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	case <-cmd.Context().Done():
		return server.Shutdown()
	}
}
