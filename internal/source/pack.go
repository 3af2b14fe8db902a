package source

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/tidwall/gjson"

	kberrors "github.com/Aman-CERP/kbsearch/internal/errors"
)

// maxRecordBytes bounds a single pack line.
const maxRecordBytes = 16 * 1024 * 1024

// PackProvider reads line-delimited JSON record packs (*.jsonl, *.jsonl.gz).
//
// Each non-blank line is an object with "text" and optional "title" and
// "lang" fields. Lines that are not valid JSON objects are yielded as
// ERR_206_RECORD_CORRUPT errors; the rest of the pack is still read.
type PackProvider struct {
	Dir string
}

// NewPackProvider returns a provider for the record packs in dir.
func NewPackProvider(dir string) *PackProvider {
	return &PackProvider{Dir: dir}
}

// IsPackFile reports whether name looks like a record pack.
func IsPackFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".jsonl") || strings.HasSuffix(lower, ".jsonl.gz")
}

// Items implements Provider.
func (p *PackProvider) Items() iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		for _, name := range listFiles(p.Dir, IsPackFile) {
			if !readPack(filepath.Join(p.Dir, name), name, yield) {
				return
			}
		}
	}
}

// readPack streams one pack. It returns false when the consumer stopped.
func readPack(path, name string, yield func(Item, error) bool) bool {
	stem := Stem(name)

	f, err := os.Open(path)
	if err != nil {
		return yield(Item{Kind: KindRecord, SourceID: name, Stem: stem}, sourceError(name, err))
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return yield(Item{Kind: KindRecord, SourceID: name, Stem: stem}, sourceError(name, err))
		}
		defer zr.Close()
		r = zr
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)

	for line := 0; sc.Scan(); line++ {
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}

		it := Item{Kind: KindRecord, SourceID: name, Stem: stem, Line: line}
		rec, err := ParseRecord(raw)
		if err != nil {
			if !yield(it, kberrors.RecordCorruptError(name, line, err)) {
				return false
			}
			continue
		}
		if rec.Text == "" {
			continue
		}

		it.Title = rec.Title
		it.Lang = rec.Lang
		it.Text = rec.Text
		if !yield(it, nil) {
			return false
		}
	}

	if err := sc.Err(); err != nil {
		return yield(Item{Kind: KindRecord, SourceID: name, Stem: stem}, sourceError(name, err))
	}
	return true
}

// Record is the parsed form of one pack line.
type Record struct {
	Title string
	Lang  string
	Text  string
}

// ParseRecord decodes one pack line. Text and title are trimmed; a missing
// or blank title becomes DefaultRecordTitle. Lang is returned as written.
func ParseRecord(line string) (Record, error) {
	if !gjson.Valid(line) {
		return Record{}, fmt.Errorf("invalid JSON")
	}
	doc := gjson.Parse(line)
	if !doc.IsObject() {
		return Record{}, fmt.Errorf("record is not an object")
	}

	fields := doc.Map()
	rec := Record{
		Text:  strings.TrimSpace(fields["text"].String()),
		Title: strings.TrimSpace(fields["title"].String()),
		Lang:  strings.TrimSpace(fields["lang"].String()),
	}
	if rec.Title == "" {
		rec.Title = DefaultRecordTitle
	}
	return rec, nil
}

var _ Provider = (*PackProvider)(nil)
