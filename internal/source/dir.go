package source

import (
	"iter"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	kberrors "github.com/Aman-CERP/kbsearch/internal/errors"
)

// documentExts are the file extensions read as documents.
var documentExts = map[string]bool{
	".md":  true,
	".txt": true,
}

// DirProvider reads flat documents from a single directory (no recursion).
type DirProvider struct {
	Dir string
}

// NewDirProvider returns a provider for the documents in dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{Dir: dir}
}

// Items implements Provider. Files are yielded in name order. A missing
// directory yields nothing. Whitespace-only files are skipped.
func (p *DirProvider) Items() iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		for _, name := range listFiles(p.Dir, func(n string) bool {
			return documentExts[strings.ToLower(filepath.Ext(n))]
		}) {
			it := Item{
				Kind:     KindDocument,
				SourceID: name,
				Stem:     Stem(name),
			}

			data, err := os.ReadFile(filepath.Join(p.Dir, name))
			if err != nil {
				if !yield(it, sourceError(name, err)) {
					return
				}
				continue
			}

			text := string(data)
			if strings.TrimSpace(text) == "" {
				continue
			}
			it.Title = TitleFromStem(it.Stem)
			it.Text = text
			if !yield(it, nil) {
				return
			}
		}
	}
}

// TitleFromStem turns "getting_started-guide" into "Getting Started Guide".
func TitleFromStem(stem string) string {
	s := strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return cases.Title(language.Und).String(strings.Join(strings.Fields(s), " "))
}

// listFiles returns the sorted regular file names in dir accepted by keep.
func listFiles(dir string, keep func(string) bool) []string {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !keep(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	// os.ReadDir already sorts by file name
	return names
}

func sourceError(name string, err error) error {
	if os.IsPermission(err) {
		return kberrors.New(kberrors.ErrCodeSourcePermission, "permission denied reading "+name, err).
			WithDetail("source", name)
	}
	return kberrors.SourceReadError(name, err)
}

var _ Provider = (*DirProvider)(nil)
