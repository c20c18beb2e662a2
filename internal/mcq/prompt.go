// Package mcq turns chunks of source text into validated multiple-choice
// questions via an external completion endpoint. The value of the package
// is on the way back: coercing loosely structured model output into the
// question schema.
package mcq

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// charsPerToken is the rough chars-per-token estimate used for the prompt
// budget. Good enough for English prose against small local models.
const charsPerToken = 4

// promptOverheadTokens buffers the estimate against template variations.
const promptOverheadTokens = 100

const promptTemplate = `Generate exactly %d high-quality multiple-choice question(s) based on the following text.

RULES:
1. Each question tests understanding of a key concept
2. Each question MUST have exactly 4 options
3. Only one option is correct (correctAnswer: 0-3)
4. Include a clear, concise explanation for the correct answer
5. Questions must be specific and based ONLY on the provided text
6. Make questions challenging but fair

TEXT TO USE:

%s

FORMAT REQUIREMENTS:
- Respond with a JSON array containing exactly %d question object(s)
- Each object MUST have these exact fields:
  - question: (string) The question text
  - options: (array) Exactly 4 answer choices as strings
  - correctAnswer: (number) Index of correct answer (0-3)
  - explanation: (string) Brief explanation of why this is correct

EXAMPLE RESPONSE:
[
  {
    "question": "What protocol is primarily used for loading websites?",
    "options": ["FTP", "SMTP", "HTTP", "SSH"],
    "correctAnswer": 2,
    "explanation": "HTTP (Hypertext Transfer Protocol) is the standard protocol for web communication."
  }
]

IMPORTANT:
- Every question must be directly answerable from the given text
- Make all options plausible but only one correct
- The response MUST be valid JSON

Now generate the question(s) based on the text above:`

// BuildPrompt renders the instruction prompt for one chunk, truncating the
// chunk text to keep the whole prompt within maxModelTokens. Truncation is
// at a character boundary, not sentence-aware.
func BuildPrompt(chunkText string, numQuestions, maxModelTokens int) string {
	overheadTokens := len(promptTemplate)/charsPerToken + promptOverheadTokens
	maxTextTokens := maxModelTokens - overheadTokens
	maxTextLen := maxTextTokens * charsPerToken

	if maxTextLen > 0 && len(chunkText) > maxTextLen {
		zap.L().Warn("chunk text exceeds prompt budget, truncating",
			zap.Int("original_len", len(chunkText)),
			zap.Int("truncated_len", maxTextLen),
		)
		chunkText = strings.TrimSpace(chunkText[:maxTextLen])
	}

	return fmt.Sprintf(promptTemplate, numQuestions, chunkText, numQuestions)
}
