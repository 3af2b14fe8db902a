package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_EmptyInput(t *testing.T) {
	assert.Empty(t, Split("", 850))
	assert.Empty(t, Split("  \n\n \t\n  ", 850))
}

func TestSplit_ThreeBlocksRespectLimit(t *testing.T) {
	// Given: three ~400 character blocks separated by blank lines
	text := strings.Join([]string{
		strings.Repeat("A", 400),
		strings.Repeat("B", 400),
		strings.Repeat("C", 400),
	}, "\n\n")

	// When: chunking with an 850 character bound
	chunks := Split(text, 850)

	// Then: at least two chunks, none larger than ~900 characters
	require.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 900)
	}
	assert.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("A", 400)+" "+strings.Repeat("B", 400), chunks[0])
	assert.Equal(t, strings.Repeat("C", 400), chunks[1])
}

func TestSplit_PacksSmallBlocks(t *testing.T) {
	text := "first paragraph\n\nsecond paragraph\n\nthird paragraph"

	chunks := Split(text, 850)

	require.Len(t, chunks, 1)
	assert.Equal(t, "first paragraph second paragraph third paragraph", chunks[0])
}

func TestSplit_OversizedBlockStaysWhole(t *testing.T) {
	big := strings.Repeat("x", 120)
	text := "small\n\n" + big + "\n\ntail"

	chunks := Split(text, 50)

	require.Len(t, chunks, 3)
	assert.Equal(t, "small", chunks[0])
	assert.Equal(t, big, chunks[1], "oversized block is never split")
	assert.Equal(t, "tail", chunks[2])
}

func TestSplit_BoundIsInclusive(t *testing.T) {
	// "aaaa" + "\n\n" + "bbbb" is exactly 10 characters
	chunks := Split("aaaa\n\nbbbb", 10)
	require.Len(t, chunks, 1)

	chunks = Split("aaaa\n\nbbbb", 9)
	require.Len(t, chunks, 2)
}

func TestSplit_BlankLinesWithWhitespace(t *testing.T) {
	text := "alpha\n   \t\nbeta"

	blocks := Blocks(text)

	assert.Equal(t, []string{"alpha", "beta"}, blocks)
}

func TestSplit_CollapsesInternalWhitespace(t *testing.T) {
	chunks := Split("line one\nline   two\tthree", 850)
	require.Len(t, chunks, 1)
	assert.Equal(t, "line one line two three", chunks[0])
}

func TestSplit_CountsCharactersNotBytes(t *testing.T) {
	// Each block is 5 runes but 15 bytes
	text := "量子力学史\n\n相対性理論"

	chunks := Split(text, 12)

	require.Len(t, chunks, 1)
}

func TestSplit_DefaultLimit(t *testing.T) {
	text := strings.Repeat("word ", 100) + "\n\n" + strings.Repeat("more ", 100)
	assert.Equal(t, Split(text, DefaultMaxChars), Split(text, 0))
}

func TestSplit_ChunkBoundProperty(t *testing.T) {
	blocks := []string{
		strings.Repeat("a", 10),
		strings.Repeat("b", 300),
		strings.Repeat("c", 45),
		strings.Repeat("d", 999),
		strings.Repeat("e", 1),
		strings.Repeat("f", 200),
	}
	text := strings.Join(blocks, "\n\n")

	for _, limit := range []int{20, 50, 100, 400, 850} {
		for _, c := range Split(text, limit) {
			n := utf8.RuneCountInString(c)
			if n > limit {
				// Only a single oversized source block may exceed the bound
				assert.NotContains(t, c, " ", "oversized chunk must come from one block")
			}
		}
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeWhitespace("  a\n\nb \t c  "))
	assert.Equal(t, "", NormalizeWhitespace(" \n "))
}
