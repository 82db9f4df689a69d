// Package mockcmder provides the command running the mock assistant backend.
package mockcmder

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/config"
	"github.com/papercomputeco/devassist/pkg/devserver"
	"github.com/papercomputeco/devassist/pkg/logger"
)

type mockCommander struct {
	listen      string
	failTrigger string
	users       []string
	mustChange  []string
	chunkDelay  time.Duration
}

const mockLongDesc string = `Run an in-memory stand-in for the Developer Assistant backend.

The mock serves the same HTTP API the CLI uses: login and password change,
user preferences, modules and their documents, chat sessions and the
streamed /api/ask endpoint. Answers are canned and streamed
word by word; a question containing the fail trigger streams a server error
instead. All state is lost when the process exits.

Examples:
  devassist serve mock
  devassist serve mock --listen :9000 --user alice:secret --chunk-delay 50ms
  devassist serve mock --user alice:temp --must-change-password alice`

func NewMockCmd() *cobra.Command {
	cmder := &mockCommander{}

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run the mock assistant backend",
		Long:  mockLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagFailTrigger, &cmder.failTrigger)
	cmd.Flags().StringArrayVarP(&cmder.users, "user", "u", nil, "Accepted login as name:password (repeatable, default dev:dev)")
	cmd.Flags().StringSliceVar(&cmder.mustChange, "must-change-password", nil, "Users whose login asks for a password change")
	cmd.Flags().DurationVar(&cmder.chunkDelay, "chunk-delay", 20*time.Millisecond, "Delay between streamed answer fragments")

	return cmd
}

func (c *mockCommander) run(cmd *cobra.Command) error {
	env, err := cmdutil.Load(cmd, config.FlagListen, config.FlagFailTrigger)
	if err != nil {
		return err
	}
	defer env.Close()

	users, err := ParseUsers(c.users)
	if err != nil {
		return err
	}

	log := env.Logger
	if !env.Debug {
		log = logger.Multi(log, logger.New(logger.WithPretty(true), logger.WithWriter(cmd.ErrOrStderr())))
	}

	server := devserver.NewServer(devserver.Config{
		ListenAddr:         env.Config.DevServer.Listen,
		Users:              users,
		MustChangePassword: c.mustChange,
		FailTrigger:        env.Config.DevServer.FailTrigger,
		ChunkDelay:         c.chunkDelay,
	}, log)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("mock backend error: %w", err)
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

// ParseUsers turns name:password pairs into a user table. An empty list
// yields nil so the server falls back to its default user.
func ParseUsers(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	users := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, password, ok := strings.Cut(pair, ":")
		if !ok || name == "" || password == "" {
			return nil, fmt.Errorf("invalid --user %q, expected name:password", pair)
		}
		users[name] = password
	}
	return users, nil
}
