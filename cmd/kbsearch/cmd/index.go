package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/kbsearch/internal/profiling"
	"github.com/Aman-CERP/kbsearch/internal/search"
)

func newIndexCmd(a *app) *cobra.Command {
	var (
		top        int
		jsonOutput bool
		prof       profiling.Options
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the index and report its statistics",
		Long: `Load every document and knowledge pack, build the BM25 index, and print
its size, average chunk length, what was skipped, and the most frequent terms.

The index lives in memory only; this command is a dry run of what the
server and search commands load.`,
		Example: `  kbsearch index
  kbsearch index --top 20 --json
  kbsearch index --cpu-profile cpu.prof --mem-profile heap.prof`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, root, err := a.loadConfig()
			if err != nil {
				return err
			}

			engine := a.newEngine(cfg, root)
			session, err := profiling.Start(prof)
			if err != nil {
				return err
			}
			engine.Load()
			if err := session.Stop(); err != nil {
				return err
			}
			st := engine.Stats(top)
			heap := profiling.HeapInUse()

			out := a.writer(cmd)
			if jsonOutput {
				return out.JSON(indexResponse{
					KnowledgeBase: cfg.KnowledgeBaseDir(root),
					Packs:         cfg.PacksDir(root),
					Stats:         st,
					HeapBytes:     heap,
				})
			}

			out.Statusf("📁", "Documents: %s", cfg.KnowledgeBaseDir(root))
			out.Statusf("📦", "Packs:     %s", cfg.PacksDir(root))
			out.Newline()
			out.Stats(st)
			out.Newline()
			out.Statusf("🧠", "Heap in use: %s", profiling.FormatBytes(heap))
			if prof.Enabled() {
				out.Status("📈", "Profiles written")
			}
			if st.Skipped.Sources > 0 {
				out.Newline()
				out.Warningf("%d sources were skipped; see the log for details", st.Skipped.Sources)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "Number of most frequent terms to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&prof.CPU, "cpu-profile", "", "Write a CPU profile of the build to this file")
	cmd.Flags().StringVar(&prof.Heap, "mem-profile", "", "Write a heap profile after the build to this file")
	cmd.Flags().StringVar(&prof.Trace, "trace", "", "Write an execution trace of the build to this file")

	return cmd
}

type indexResponse struct {
	KnowledgeBase string       `json:"knowledge_base"`
	Packs         string       `json:"packs"`
	Stats         search.Stats `json:"stats"`
	HeapBytes     uint64       `json:"heap_bytes"`
}
