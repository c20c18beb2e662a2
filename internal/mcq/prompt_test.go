package mcq

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptContainsChunkAndFormat(t *testing.T) {
	t.Parallel()

	chunkText := "Paris is the capital of France."
	prompt := BuildPrompt(chunkText, 1, 4000)

	assert.Contains(t, prompt, chunkText)
	assert.Contains(t, prompt, "exactly 1 high-quality multiple-choice question")
	assert.Contains(t, prompt, `"correctAnswer": 2`)
	assert.Contains(t, prompt, "correctAnswer: (number) Index of correct answer (0-3)")
	assert.Contains(t, prompt, "MUST be valid JSON")
}

func TestBuildPromptQuestionCount(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt("Some text about something.", 3, 4000)
	assert.Contains(t, prompt, "Generate exactly 3 high-quality")
	assert.Contains(t, prompt, "containing exactly 3 question object(s)")
}

func TestBuildPromptTruncatesOverBudget(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("All work and no play makes for dull prose. ", 500) // ~21k chars
	prompt := BuildPrompt(long, 1, 4000)

	overhead := len(promptTemplate)/charsPerToken + promptOverheadTokens
	maxTextLen := (4000 - overhead) * charsPerToken
	assert.NotContains(t, prompt, long)
	assert.LessOrEqual(t, len(prompt), len(promptTemplate)+maxTextLen+8)
}

func TestBuildPromptKeepsShortTextIntact(t *testing.T) {
	t.Parallel()

	text := "A short chunk that fits comfortably in the budget."
	prompt := BuildPrompt(text, 1, 4000)
	assert.Contains(t, prompt, text)
}
