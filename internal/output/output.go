// Package output provides consistent CLI output formatting.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/kbsearch/internal/search"
)

// Writer provides formatted output for the CLI.
type Writer struct {
	out    io.Writer
	styles Styles
}

// New creates a Writer. Color is enabled only for terminals without NO_COLOR.
func New(out io.Writer) *Writer {
	return NewWithColor(out, IsTTY(out) && !DetectNoColor())
}

// NewWithColor creates a Writer with explicit color choice.
func NewWithColor(out io.Writer, color bool) *Writer {
	return &Writer{out: out, styles: GetStyles(!color)}
}

// Styles returns the writer's styles.
func (w *Writer) Styles() Styles { return w.styles }

// Status prints a message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Status(w.styles.Success.Render("✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.styles.Warning.Render("!"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.styles.Error.Render("✗"), msg)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// JSON writes v as indented JSON.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Results renders ranked results with the best-matching sentence marked.
func (w *Writer) Results(query string, results []search.Result) {
	if len(results) == 0 {
		w.Status(w.styles.Dim.Render("·"), fmt.Sprintf("No results for %q", query))
		return
	}

	for i, r := range results {
		_, _ = fmt.Fprintf(w.out, "%s %s %s\n",
			w.styles.Header.Render(fmt.Sprintf("%d.", i+1)),
			w.styles.Title.Render(r.Title),
			w.styles.Score.Render(fmt.Sprintf("(%.4f)", r.Score)))
		_, _ = fmt.Fprintf(w.out, "   %s\n",
			w.styles.Label.Render(fmt.Sprintf("%s · %s · %s", r.ChunkID, r.Source, r.Lang)))
		_, _ = fmt.Fprintf(w.out, "   %s\n", w.highlight(r, query))
		if i < len(results)-1 {
			w.Newline()
		}
	}
}

// highlight returns the chunk text with its best sentence marked.
func (w *Writer) highlight(r search.Result, query string) string {
	return HighlightBest(r, query, w.styles.Mark)
}

// HighlightBest renders r's text with the sentence that best matches query
// drawn in mark.
func HighlightBest(r search.Result, query string, mark lipgloss.Style) string {
	sentences := search.Sentences(r.Text)
	best := search.BestSentence(sentences, query, r.Lang)
	if best < 0 {
		return r.Text
	}
	parts := make([]string, len(sentences))
	for i, s := range sentences {
		if i == best {
			s = mark.Render(s)
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}

// Stats renders an index summary.
func (w *Writer) Stats(st search.Stats) {
	row := func(label, value string) {
		_, _ = fmt.Fprintf(w.out, "  %s %s\n", w.styles.Label.Render(fmt.Sprintf("%-12s", label)), value)
	}

	_, _ = fmt.Fprintln(w.out, w.styles.Header.Render("Index"))
	row("state", st.State)
	row("generation", fmt.Sprint(st.Generation))
	row("chunks", fmt.Sprint(st.Chunks))
	row("terms", fmt.Sprint(st.Terms))
	row("avgdl", fmt.Sprintf("%.2f", st.AvgDL))
	if !st.BuiltAt.IsZero() {
		row("built", st.BuiltAt.Format(time.RFC3339))
		row("duration", st.Duration.Round(time.Microsecond).String())
	}
	row("skipped", fmt.Sprintf("%d sources, %d empty chunks", st.Skipped.Sources, st.Skipped.EmptyChunks))

	if len(st.TopTerms) > 0 {
		w.Newline()
		_, _ = fmt.Fprintln(w.out, w.styles.Header.Render("Top terms"))
		for _, ts := range st.TopTerms {
			_, _ = fmt.Fprintf(w.out, "  %-20s df=%-6d idf=%.4f\n", ts.Term, ts.DF, ts.IDF)
		}
	}
}
