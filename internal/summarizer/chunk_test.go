package summarizer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		size       int
		wantChunks int
	}{
		{"empty input", "", 10, 0},
		{"whitespace only", "  \n\t ", 10, 0},
		{"single word", "olá", 10, 1},
		{"exact boundary", "a b c d", 2, 2},
		{"one over boundary", "a b c d e", 2, 3},
		{"everything fits", "a b c", 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkText(tt.text, tt.size)
			assert.Len(t, chunks, tt.wantChunks)
			for _, c := range chunks {
				assert.LessOrEqual(t, len(strings.Fields(c)), tt.size)
			}
		})
	}
}

// Rejoining chunks with single spaces must reproduce the whitespace-normalized
// input exactly: chunking never drops or reorders words.
func TestChunkTextRoundTrip(t *testing.T) {
	inputs := []string{
		"o vereador  abriu\na sessão\t\tcom a leitura   da ata anterior",
		strings.Repeat("palavra ", 5000),
		"uma única frase curta",
	}

	for i, text := range inputs {
		t.Run(fmt.Sprintf("input_%d", i), func(t *testing.T) {
			for _, size := range []int{1, 7, 2000} {
				chunks := ChunkText(text, size)
				normalized := strings.Join(strings.Fields(text), " ")
				assert.Equal(t, normalized, strings.Join(chunks, " "), "size %d", size)
			}
		})
	}
}
