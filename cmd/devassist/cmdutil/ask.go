package cmdutil

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/pkg/client"
	"github.com/papercomputeco/devassist/pkg/cliui"
	"github.com/papercomputeco/devassist/pkg/config"
	"github.com/papercomputeco/devassist/pkg/conversation"
)

// AskFlagKeys are the registry flags shared by commands that ask questions.
var AskFlagKeys = []string{
	config.FlagBaseURL,
	config.FlagTimeout,
	config.FlagModule,
	config.FlagHistoryWindow,
	config.FlagMarkdown,
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagEventStream,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
	config.FlagWorkers,
	config.FlagQueueSize,
}

// AskFlags holds the flag targets for AskFlagKeys. Values are read back
// through viper after binding, so the fields only anchor the flags.
type AskFlags struct {
	baseURL     string
	timeout     string
	module      int
	window      uint
	markdown    bool
	storage     string
	sqlite      string
	postgresDSN string
	eventStream string
	brokers     string
	topic       string
	workers     uint
	queueSize   uint
}

// Register adds the shared ask flags to cmd.
func (f *AskFlags) Register(cmd *cobra.Command) {
	fs := config.Flags
	config.AddStringFlag(cmd, fs, config.FlagBaseURL, &f.baseURL)
	config.AddStringFlag(cmd, fs, config.FlagTimeout, &f.timeout)
	config.AddIntFlag(cmd, fs, config.FlagModule, &f.module)
	config.AddUintFlag(cmd, fs, config.FlagHistoryWindow, &f.window)
	config.AddBoolFlag(cmd, fs, config.FlagMarkdown, &f.markdown)
	config.AddStringFlag(cmd, fs, config.FlagStorage, &f.storage)
	config.AddStringFlag(cmd, fs, config.FlagSQLite, &f.sqlite)
	config.AddStringFlag(cmd, fs, config.FlagPostgresDSN, &f.postgresDSN)
	config.AddStringFlag(cmd, fs, config.FlagEventStream, &f.eventStream)
	config.AddStringFlag(cmd, fs, config.FlagKafkaBrokers, &f.brokers)
	config.AddStringFlag(cmd, fs, config.FlagKafkaTopic, &f.topic)
	config.AddUintFlag(cmd, fs, config.FlagWorkers, &f.workers)
	config.AddUintFlag(cmd, fs, config.FlagQueueSize, &f.queueSize)
}

// NewConversation builds a conversation from the resolved settings. The
// user's backend config is forwarded with questions when it can be fetched.
func NewConversation(ctx context.Context, env *Env, cl *client.Client, recorder conversation.Recorder) *conversation.Conversation {
	userConfig, err := cl.UserConfig(ctx)
	if err != nil {
		env.Logger.Warn("could not fetch user config, asking without it", "error", err)
	}

	return conversation.New(cl,
		conversation.WithRecorder(recorder),
		conversation.WithSource(env.Source()),
		conversation.WithModule(env.Config.Chat.ModuleID),
		conversation.WithHistoryWindow(int(env.Config.Chat.HistoryWindow)),
		conversation.WithUserConfig(userConfig),
		conversation.WithLogger(env.Logger),
	)
}

// StreamPrinter writes the growth of a streamed answer as it arrives.
type StreamPrinter struct {
	W io.Writer

	printed int
}

// Update is a chatstream.UpdateFunc.
func (p *StreamPrinter) Update(message string) {
	if len(message) <= p.printed {
		return
	}
	fmt.Fprint(p.W, message[p.printed:])
	p.printed = len(message)
}

// Fail prints the fallback reply for err and the error itself.
func (p *StreamPrinter) Fail(err error) {
	if p.printed > 0 {
		fmt.Fprintln(p.W)
	}
	fmt.Fprintf(p.W, "%s\n  %s\n\n",
		cliui.ErrorStyle.Render(conversation.Fallback(err)),
		cliui.DimStyle.Render(err.Error()),
	)
}
