package modulescmder

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	"github.com/papercomputeco/devassist/pkg/cliui"
	"github.com/papercomputeco/devassist/pkg/client"
	"github.com/papercomputeco/devassist/pkg/config"
)

func newDocsCmd() *cobra.Command {
	var (
		baseURL  string
		moduleID int
	)

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "List knowledge-base documents",
		Long:  "List the documents uploaded to the knowledge base, grouped by module.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cl, closeEnv, err := authedClient(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()

			docs, err := cl.ListDocuments(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing documents: %w", err)
			}
			if moduleID != 0 {
				docs = filterDocuments(docs, moduleID)
			}

			printDocuments(cmd, docs)
			return nil
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &baseURL)
	cmd.Flags().IntVar(&moduleID, "module", 0, "Only list documents of this module")

	return cmd
}

func newStatsCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "stats <module-id>",
		Short: "Show what is indexed for a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid module id %q", args[0])
			}

			cl, closeEnv, err := authedClient(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()

			stats, err := cl.ModuleStats(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("loading module stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  %s   %s\n", cliui.KeyStyle.Render("Module:"), cliui.NameStyle.Render(strconv.Itoa(stats.ModuleID)))
			fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render("Documents:"), cliui.ValueStyle.Render(strconv.Itoa(stats.DocumentCount)))
			fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Embeddings:"), cliui.ValueStyle.Render(strconv.Itoa(stats.TotalEmbeddings)))
			return nil
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &baseURL)

	return cmd
}

func authedClient(cmd *cobra.Command) (*client.Client, func() error, error) {
	env, err := cmdutil.Load(cmd, config.FlagBaseURL)
	if err != nil {
		return nil, nil, err
	}
	cl, err := env.AuthedClient()
	if err != nil {
		env.Close()
		return nil, nil, err
	}
	return cl, env.Close, nil
}

func filterDocuments(docs []client.Document, moduleID int) []client.Document {
	var out []client.Document
	for _, d := range docs {
		if d.ModuleID == moduleID {
			out = append(out, d)
		}
	}
	return out
}

// printDocuments prints docs under a heading per module. docs arrive
// ordered by module name.
func printDocuments(cmd *cobra.Command, docs []client.Document) {
	out := cmd.OutOrStdout()
	if len(docs) == 0 {
		fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render("No documents found."))
		return
	}

	current := -1
	for _, d := range docs {
		if d.ModuleID != current {
			current = d.ModuleID
			fmt.Fprintf(out, "\n  %s  %s\n", cliui.NameStyle.Render(fmt.Sprintf("%4d", d.ModuleID)), cliui.KeyStyle.Render(d.ModuleName))
		}
		fmt.Fprintf(out, "        %s  %s\n", cliui.ValueStyle.Render(d.Title), cliui.DimStyle.Render(d.FilePath))
		fmt.Fprintf(out, "        %s\n", cliui.DimStyle.Render(fmt.Sprintf("uploaded by %s at %s", d.UploadedBy, d.UploadedAt)))
	}
	fmt.Fprintln(out)
}
