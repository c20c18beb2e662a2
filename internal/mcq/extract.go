package mcq

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoJSON is returned when no JSON payload can be isolated from the raw
// completion text. Callers treat it as a zero-question outcome, not a
// request failure.
var ErrNoJSON = eris.New("mcq: no JSON payload found in completion")

var (
	// A bracketed array of objects, possibly spanning lines.
	arrayPattern = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)
	// An object wrapping a "question"/"questions" array.
	wrapperPattern = regexp.MustCompile(`(?s)\{\s*"questions?"\s*:\s*\[.*\]\s*\}`)
)

// extractStrategy attempts to isolate a JSON candidate from raw text.
// Returns the candidate and whether the strategy applied.
type extractStrategy func(raw string) (string, bool)

// strategies is the ordered list applied by ExtractJSON; first success wins.
// New heuristics for other model quirks append here.
var strategies = []extractStrategy{
	directArray,
	regexArray,
	regexWrapper,
	fencedBlock("```json"),
	fencedBlock("```"),
}

// ExtractJSON locates the JSON payload embedded in a raw LLM completion,
// tolerating markdown fences, wrapper objects, and surrounding prose.
func ExtractJSON(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoJSON
	}

	for _, strategy := range strategies {
		if candidate, ok := strategy(raw); ok {
			return stripFences(candidate), nil
		}
	}

	return "", ErrNoJSON
}

func directArray(raw string) (string, bool) {
	if strings.HasPrefix(raw, "[") {
		return raw, true
	}
	return "", false
}

func regexArray(raw string) (string, bool) {
	if m := arrayPattern.FindString(raw); m != "" {
		return m, true
	}
	return "", false
}

func regexWrapper(raw string) (string, bool) {
	if m := wrapperPattern.FindString(raw); m != "" {
		return m, true
	}
	return "", false
}

// fencedBlock returns a strategy taking the interior of the first code block
// opened by marker.
func fencedBlock(marker string) extractStrategy {
	return func(raw string) (string, bool) {
		start := strings.Index(raw, marker)
		if start < 0 {
			return "", false
		}
		start += len(marker)
		end := strings.Index(raw[start:], "```")
		if end < 0 {
			return "", false
		}
		interior := strings.TrimSpace(raw[start : start+end])
		if interior == "" {
			return "", false
		}
		return interior, true
	}
}

// stripFences removes residual fence markers a strategy may have left at the
// candidate's edges.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
