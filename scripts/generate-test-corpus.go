//go:build ignore

// Package main generates a synthetic multilingual knowledge base for benchmarking.
// Usage: go run scripts/generate-test-corpus.go -docs 500 -records 5000 -output testdata/bench
//
// The output has the layout kbsearch expects under --root:
//
//	<output>/data/knowledge_base/*.md
//	<output>/data/knowledge_packs/processed/*.jsonl.gz
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

var (
	numDocs    = flag.Int("docs", 500, "Number of Markdown documents to generate")
	numRecords = flag.Int("records", 5000, "Number of pack records to generate")
	perPack    = flag.Int("per-pack", 1000, "Records per pack file")
	outputDir  = flag.String("output", "testdata/bench", "Output root directory")
	seed       = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// Sentence templates per language; %s slots take a topic and a property.
var sentences = map[string][]string{
	"en": {
		"The %s is widely used because of its %s.",
		"Researchers compared every %s by measuring its %s.",
		"A good %s balances cost against %s.",
	},
	"fr": {
		"Le %s est apprécié pour sa %s.",
		"Chaque %s a été comparé selon sa %s.",
	},
	"pt": {
		"O %s é conhecido pela sua %s.",
		"Cada %s foi avaliado pela %s.",
	},
	"es": {
		"El %s es conocido por su %s.",
		"Cada %s fue evaluado por su %s.",
	},
	"id": {
		"%s dikenal karena %s yang tinggi.",
		"Setiap %s diuji berdasarkan %s.",
	},
	"zh": {
		"%s因其%s而被广泛使用。",
		"研究人员比较了每个%s的%s。",
	},
	"ja": {
		"%sはその%sで知られています。",
		"研究者はそれぞれの%sの%sを比較しました。",
	},
}

var topics = map[string][]string{
	"en": {"index", "ranking model", "search engine", "tokenizer", "knowledge base", "cache"},
	"fr": {"moteur", "modèle", "classement", "dictionnaire"},
	"pt": {"motor", "modelo", "índice", "dicionário"},
	"es": {"motor", "modelo", "índice", "diccionario"},
	"id": {"Mesin pencari", "Model", "Indeks", "Kamus"},
	"zh": {"搜索引擎", "排序模型", "索引", "词典"},
	"ja": {"検索エンジン", "ランキング", "索引", "辞書"},
}

var properties = map[string][]string{
	"en": {"precision", "recall", "latency", "memory footprint", "simplicity"},
	"fr": {"précision", "rapidité", "simplicité"},
	"pt": {"precisão", "rapidez", "simplicidade"},
	"es": {"precisión", "rapidez", "sencillez"},
	"id": {"ketepatan", "kecepatan", "kesederhanaan"},
	"zh": {"准确率", "速度", "简洁性"},
	"ja": {"精度", "速度", "簡潔さ"},
}

var languages = []string{"en", "fr", "pt", "es", "id", "zh", "ja"}

func main() {
	flag.Parse()
	rand.Seed(*seed)

	kbDir := filepath.Join(*outputDir, "data", "knowledge_base")
	packDir := filepath.Join(*outputDir, "data", "knowledge_packs", "processed")
	for _, dir := range []string{kbDir, packDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory %s: %v\n", dir, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Generating %d documents and %d records in %s (seed %d)\n", *numDocs, *numRecords, *outputDir, *seed)

	for i := 0; i < *numDocs; i++ {
		if err := generateDoc(kbDir, i); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating document %d: %v\n", i, err)
			os.Exit(1)
		}
	}

	packs := 0
	for start := 0; start < *numRecords; start += *perPack {
		n := min(*perPack, *numRecords-start)
		if err := generatePack(packDir, packs, n); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating pack %d: %v\n", packs, err)
			os.Exit(1)
		}
		packs++
	}

	fmt.Printf("Generated %d documents and %d packs successfully.\n", *numDocs, packs)
}

func randomWord(pool []string) string {
	return pool[rand.Intn(len(pool))]
}

// paragraph returns n sentences in language l.
func paragraph(l string, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 && l != "zh" && l != "ja" {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, randomWord(sentences[l]), randomWord(topics[l]), randomWord(properties[l]))
	}
	return sb.String()
}

func generateDoc(dir string, index int) error {
	l := randomWord(languages)
	var sb strings.Builder
	for p := 0; p < 2+rand.Intn(6); p++ {
		if p > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(paragraph(l, 2+rand.Intn(5)))
	}
	sb.WriteByte('\n')

	name := fmt.Sprintf("%s_topic_%d.md", l, index)
	return os.WriteFile(filepath.Join(dir, name), []byte(sb.String()), 0o644)
}

type record struct {
	Title string `json:"title"`
	Lang  string `json:"lang"`
	Text  string `json:"text"`
}

func generatePack(dir string, index, n int) error {
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("pack_%03d.jsonl.gz", index)))
	if err != nil {
		return err
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	enc := json.NewEncoder(zw)
	for i := 0; i < n; i++ {
		l := randomWord(languages)
		rec := record{
			Title: randomWord(topics[l]),
			Lang:  l,
			Text:  paragraph(l, 1+rand.Intn(4)),
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return zw.Close()
}
