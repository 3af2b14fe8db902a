package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/kbsearch/internal/lang"
)

func newLangCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Inspect language detection",
	}
	cmd.AddCommand(newLangDetectCmd(a))
	cmd.AddCommand(newLangListCmd(a))
	return cmd
}

type detectResponse struct {
	Text       string  `json:"text"`
	Detected   string  `json:"detected"`
	Confidence float64 `json:"confidence"`
	Resolved   string  `json:"resolved"`
}

func newLangDetectCmd(a *app) *cobra.Command {
	var (
		hint       string
		threshold  float64
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "detect <text>",
		Short: "Detect the language of text",
		Long: `Detect the language of text and show the language a search would use.

A detection below --threshold confidence resolves to English.`,
		Example: `  kbsearch lang detect "Apa itu pembelajaran mesin?"
  kbsearch lang detect "hello" --hint pt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			r := lang.NewResolver()
			g := r.Detect(text)
			resolved := lang.Resolve(r, hint, text, threshold)

			out := a.writer(cmd)
			if jsonOutput {
				return out.JSON(detectResponse{
					Text:       text,
					Detected:   string(g.Tag),
					Confidence: g.Confidence,
					Resolved:   string(resolved),
				})
			}

			st := out.Styles()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", st.Label.Render("detected  "), g.Tag, lang.Name(g.Tag))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %.2f\n", st.Label.Render("confidence"), g.Confidence)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", st.Label.Render("resolved  "), st.Header.Render(string(resolved)), lang.Name(resolved))
			return nil
		},
	}

	cmd.Flags().StringVar(&hint, "hint", "", "Explicit language code; overrides detection when supported")
	cmd.Flags().Float64Var(&threshold, "threshold", lang.DefaultDetectThreshold, "Minimum detection confidence")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newLangListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List supported languages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.writer(cmd).Styles()
			for _, t := range lang.Tags() {
				marker := ""
				if t == lang.Base {
					marker = st.Dim.Render("  (fallback)")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s%s\n", st.Header.Render(string(t)), lang.Name(t), marker)
			}
			return nil
		},
	}
}
