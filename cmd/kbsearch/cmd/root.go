// Package cmd provides the CLI commands for kbsearch.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/kbsearch/internal/logging"
	"github.com/Aman-CERP/kbsearch/pkg/version"
)

// globalOptions holds persistent flags shared by every command.
type globalOptions struct {
	root       string
	configPath string
	logFile    string
	debug      bool
	noColor    bool
}

// NewRootCmd creates the root command for the kbsearch CLI.
func NewRootCmd() *cobra.Command {
	a := &app{opts: &globalOptions{}}

	cmd := &cobra.Command{
		Use:   "kbsearch",
		Short: "Multilingual BM25 search over a local knowledge base",
		Long: `kbsearch indexes Markdown and text documents plus JSON Lines knowledge
packs into an in-memory BM25 index and answers questions in English,
Chinese, Japanese, French, Portuguese, Spanish and Indonesian.

Documents are read from data/knowledge_base and packs from
data/knowledge_packs/processed unless configured otherwise.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupLogging(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.close()
		},
	}

	cmd.SetVersionTemplate("kbsearch version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.root, "root", ".", "Directory relative source paths are resolved against")
	flags.StringVarP(&a.opts.configPath, "config", "c", "", "Config file (default: .kbsearch.yaml in --root, then user config)")
	flags.StringVar(&a.opts.logFile, "log-file", logging.DefaultLogPath(), "Log file path")
	flags.BoolVar(&a.opts.debug, "debug", false, "Enable debug logging (also written to stderr)")
	flags.BoolVar(&a.opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newSearchCmd(a))
	cmd.AddCommand(newIndexCmd(a))
	cmd.AddCommand(newLangCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newTUICmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newLogsCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// ExecuteContext runs the root command with ctx, typically cancelled on SIGINT.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
