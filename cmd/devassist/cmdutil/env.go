// Package cmdutil resolves what every devassist command runs with: the
// layered configuration, the login state, the logger and the backend client,
// plus the transcript recording pipeline for commands that ask questions.
package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/pkg/client"
	"github.com/papercomputeco/devassist/pkg/config"
	"github.com/papercomputeco/devassist/pkg/dotdir"
	"github.com/papercomputeco/devassist/pkg/logger"
)

// Persistent flag names registered on the root command.
const (
	FlagConfigDir = "config-dir"
	FlagDebug     = "debug"
)

// ErrNotLoggedIn is returned by commands that need a token when none is stored.
var ErrNotLoggedIn = errors.New(`not logged in, run "devassist login" first`)

// Env is the resolved environment of one command invocation.
type Env struct {
	ConfigDir string
	Config    *config.Config

	// State is nil when logged out.
	State *dotdir.State

	Logger *slog.Logger
	Debug  bool

	dotdir  *dotdir.Manager
	logFile *os.File
}

// Load resolves the environment for cmd, binding the given flag registry keys
// into the precedence chain (flag > env > config file > default).
func Load(cmd *cobra.Command, flagKeys ...string) (*Env, error) {
	configDir, _ := cmd.Flags().GetString(FlagConfigDir)
	debug, _ := cmd.Flags().GetBool(FlagDebug)

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)

	env := &Env{
		ConfigDir: configDir,
		Config:    config.FromViper(v),
		Debug:     debug,
		dotdir:    dotdir.NewManager(),
	}

	env.State, err = env.dotdir.LoadState(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading login state: %w", err)
	}

	if err := env.openLogger(cmd.ErrOrStderr()); err != nil {
		return nil, err
	}

	return env, nil
}

// openLogger writes JSON logs to .devassist/devassist.log and, with --debug,
// pretty logs to stderr as well.
func (e *Env) openLogger(stderr io.Writer) error {
	path, err := e.dotdir.LogPath(e.ConfigDir)
	if err != nil {
		return fmt.Errorf("resolving log path: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	e.logFile = f

	fileLogger := logger.New(logger.WithJSON(true), logger.WithDebug(e.Debug), logger.WithWriter(f))
	if !e.Debug {
		e.Logger = fileLogger
		return nil
	}

	e.Logger = logger.Multi(
		fileLogger,
		logger.New(logger.WithPretty(true), logger.WithDebug(true), logger.WithWriter(stderr)),
	)
	return nil
}

// Close releases the log file. Later calls are no-ops.
func (e *Env) Close() error {
	if e.logFile == nil {
		return nil
	}
	f := e.logFile
	e.logFile = nil
	return f.Close()
}

// Dir is the resolved .devassist directory.
func (e *Env) Dir() (string, error) {
	return e.dotdir.Target(e.ConfigDir)
}

// LoggedIn reports whether a token is stored for the configured backend.
func (e *Env) LoggedIn() bool {
	return e.State.LoggedIn() && e.State.BaseURL == e.Config.Client.BaseURL
}

// Client builds a backend client, authenticated when a token for the
// configured backend is stored.
func (e *Env) Client(opts ...client.Option) (*client.Client, error) {
	timeout, err := e.Config.Client.TimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid client.timeout: %w", err)
	}

	base := []client.Option{
		client.WithTimeout(timeout),
		client.WithLogger(e.Logger),
	}
	if e.LoggedIn() {
		base = append(base, client.WithToken(e.State.Token))
	}

	return client.New(e.Config.Client.BaseURL, append(base, opts...)...)
}

// AuthedClient is Client for commands that require a login.
func (e *Env) AuthedClient(opts ...client.Option) (*client.Client, error) {
	if !e.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	return e.Client(opts...)
}

// SaveState persists state for this environment's config dir.
func (e *Env) SaveState(state *dotdir.State) error {
	if err := e.dotdir.SaveState(state, e.ConfigDir); err != nil {
		return err
	}
	e.State = state
	return nil
}

// ClearState logs out.
func (e *Env) ClearState() error {
	if err := e.dotdir.ClearState(e.ConfigDir); err != nil {
		return err
	}
	e.State = nil
	return nil
}

// RememberSession stores the session "devassist chat" resumes next time.
func (e *Env) RememberSession(id int) error {
	if !e.State.LoggedIn() || e.State.SessionID == id {
		return nil
	}
	state := *e.State
	state.SessionID = id
	return e.SaveState(&state)
}

// AddGlobalFlags registers the persistent flags every command reads.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolP(FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().String(FlagConfigDir, "", "Override path to .devassist/ config directory")
}
