package summarizer

import (
	"strings"
	"unicode"
)

// SplitWords partitions text into chunks of at most size whitespace-delimited words.
// Word order is preserved and only the final chunk may be shorter. Empty input yields nil.
func SplitWords(text string, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	chunks := make([]Chunk, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  strings.Join(words[start:end], " "),
			Words: end - start,
		})
	}
	chunks[len(chunks)-1].Last = true
	return chunks
}

func normalize(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Map(func(r rune) rune {
		// Whitespace controls such as \r, \f and \v separate words and must survive.
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return text
}
