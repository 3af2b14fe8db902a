package cmd

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	kberrors "github.com/Aman-CERP/kbsearch/internal/errors"
	"github.com/Aman-CERP/kbsearch/internal/logging"
	"github.com/Aman-CERP/kbsearch/internal/output"
)

type logsOptions struct {
	lines  int
	follow bool
	level  string
	filter string
	file   string
}

func newLogsCmd(a *app) *cobra.Command {
	opts := &logsOptions{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View kbsearch logs",
		Long: `Show recent entries from the JSON log file, optionally following new ones.

Without --file the log written by --log-file (default ~/.kbsearch/logs/kbsearch.log)
is used.`,
		Example: `  kbsearch logs -n 100
  kbsearch logs -f --level warn
  kbsearch logs --filter "search_complete|watch_reload"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, a, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow new entries until interrupted")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Only show lines matching this regular expression")
	cmd.Flags().StringVar(&opts.file, "file", "", "Log file to read")

	return cmd
}

func runLogs(cmd *cobra.Command, a *app, opts *logsOptions) error {
	explicit := opts.file
	if explicit == "" && cmd.Flags().Changed("log-file") {
		explicit = a.opts.logFile
	}
	path, err := logging.FindLogFile(explicit)
	if err != nil {
		return kberrors.ValidationError(err.Error(), nil)
	}

	cfg := logging.ViewerConfig{
		Level:   opts.level,
		NoColor: a.opts.noColor || output.DetectNoColor() || !output.IsTTY(cmd.OutOrStdout()),
	}
	if opts.filter != "" {
		re, err := regexp.Compile(opts.filter)
		if err != nil {
			return kberrors.ValidationError(fmt.Sprintf("invalid filter %q", opts.filter), err)
		}
		cfg.Pattern = re
	}

	viewer := logging.NewViewer(cfg, cmd.OutOrStdout())
	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return err
	}
	viewer.Print(entries)

	if !opts.follow {
		return nil
	}

	ch := make(chan logging.Entry, 64)
	errc := make(chan error, 1)
	go func() {
		errc <- viewer.Follow(cmd.Context(), path, ch)
		close(ch)
	}()
	for e := range ch {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), viewer.Format(e))
	}
	return <-errc
}
