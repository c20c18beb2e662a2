package model

const (
	// MaxOptions caps the number of answer options per question.
	MaxOptions = 4
	// MinOptions is the minimum number of usable options; elements with
	// fewer are discarded rather than padded.
	MinOptions = 2

	// FallbackQuestionText replaces an empty question field.
	FallbackQuestionText = "What is the main topic of the text?"
	// FallbackExplanation replaces an empty explanation field.
	FallbackExplanation = "The correct answer is derived from the provided text."
)

// Question is a validated multiple-choice question. Every Question surfaced
// by the service satisfies Valid; partially-valid questions are never
// returned.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Valid reports whether q satisfies the question schema: non-empty text,
// 2-4 options, an in-range correct-answer index, and a non-empty
// explanation.
func (q Question) Valid() bool {
	if q.Question == "" || q.Explanation == "" {
		return false
	}
	if len(q.Options) < MinOptions || len(q.Options) > MaxOptions {
		return false
	}
	return q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options)
}

// Transcript is the result of transcribing a media file.
type Transcript struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration,omitempty"`
	Language string  `json:"language,omitempty"`
}
