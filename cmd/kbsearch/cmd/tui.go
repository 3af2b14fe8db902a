package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/kbsearch/internal/output"
	"github.com/Aman-CERP/kbsearch/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Search interactively in the terminal",
		Long: `Open a full-screen search prompt. Type a question and press Enter;
use the arrow keys to move between results and ctrl+l to pick the query
language. The best-matching sentence of each result is highlighted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, root, err := a.loadConfig()
			if err != nil {
				return err
			}
			if k == 0 {
				k = cfg.Search.DefaultK
			}
			styles := output.GetStyles(a.opts.noColor || output.DetectNoColor())
			return tui.Run(cmd.Context(), a.newEngine(cfg, root), k, styles)
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 0, "Number of results per query (default from config)")

	return cmd
}
