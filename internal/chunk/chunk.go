// Package chunk splits source text into sentence-aligned chunks sized for
// one LLM prompt each. The splitter is a best-effort heuristic over period
// boundaries, not a grammar-aware segmenter.
package chunk

import "strings"

// minSentenceLen is the trimmed length below which a period-delimited
// fragment is treated as noise (abbreviations, initials) rather than a
// sentence.
const minSentenceLen = 10

// Split divides text into at most targetChunks roughly equal groups of
// consecutive sentences. The result is never empty for non-empty input: if
// no sentence-like content is found, the original text is returned as a
// single chunk.
func Split(text string, targetChunks int) []string {
	if targetChunks < 1 {
		targetChunks = 1
	}

	var sentences []string
	for _, frag := range strings.Split(text, ".") {
		frag = strings.TrimSpace(frag)
		if len(frag) > minSentenceLen {
			sentences = append(sentences, frag)
		}
	}

	chunkSize := max(1, len(sentences)/targetChunks)

	var chunks []string
	for i := 0; i < len(sentences); i += chunkSize {
		end := min(i+chunkSize, len(sentences))
		joined := strings.Join(sentences[i:end], ". ")
		if joined != "" {
			chunks = append(chunks, joined+".")
		}
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
