package summarizer

import "strings"

// ChunkText splits text into chunks of at most size whitespace-delimited
// words. Boundaries are word-count based, not sentence-aware, so a chunk may
// end mid-sentence. Joining the chunks with single spaces reproduces the
// whitespace-normalized input.
func ChunkText(text string, size int) []string {
	if size <= 0 {
		size = defaultChunkWords
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
