package mcq

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lecturelab/quizforge/internal/model"
)

// ValidateQuestions parses a JSON candidate and returns the questions that
// survive schema enforcement. Malformed content yields fewer questions,
// never an error: dropping an element must not abort its siblings.
func ValidateQuestions(candidate string) []model.Question {
	var parsed any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		zap.L().Debug("question candidate is not valid JSON",
			zap.String("candidate", candidate),
			zap.Error(err),
		)
		return nil
	}

	elements := toElementList(parsed)

	var questions []model.Question
	for _, el := range elements {
		obj, ok := el.(map[string]any)
		if !ok {
			zap.L().Debug("skipping non-object question element")
			continue
		}
		if q, ok := normalizeQuestion(obj); ok {
			questions = append(questions, q)
		}
	}
	return questions
}

// toElementList coerces the parsed payload into a list of candidate
// elements: arrays pass through, a wrapper object contributes its
// "questions" array, and any other single object wraps to one element.
func toElementList(parsed any) []any {
	switch v := parsed.(type) {
	case []any:
		return v
	case map[string]any:
		for _, key := range []string{"questions", "question"} {
			if inner, ok := v[key].([]any); ok {
				return inner
			}
		}
		return []any{v}
	default:
		return nil
	}
}

// normalizeQuestion enforces the question schema on one parsed object.
func normalizeQuestion(obj map[string]any) (model.Question, bool) {
	for _, key := range []string{"question", "options", "correctAnswer"} {
		if _, ok := obj[key]; !ok {
			zap.L().Debug("question element missing required key", zap.String("key", key))
			return model.Question{}, false
		}
	}

	rawOptions, ok := obj["options"].([]any)
	if !ok {
		return model.Question{}, false
	}

	var options []string
	for _, raw := range rawOptions {
		if s := stringifyOption(raw); s != "" {
			options = append(options, s)
		}
	}
	if len(options) < model.MinOptions {
		zap.L().Debug("question element has too few usable options", zap.Int("count", len(options)))
		return model.Question{}, false
	}
	if len(options) > model.MaxOptions {
		options = options[:model.MaxOptions]
	}

	correct := coerceIndex(obj["correctAnswer"])
	if correct < 0 || correct >= len(options) {
		correct = 0
	}

	text := strings.TrimSpace(stringifyOption(obj["question"]))
	if text == "" {
		text = model.FallbackQuestionText
	}

	explanation := strings.TrimSpace(stringifyOption(obj["explanation"]))
	if explanation == "" {
		explanation = model.FallbackExplanation
	}

	return model.Question{
		Question:      text,
		Options:       options,
		CorrectAnswer: correct,
		Explanation:   explanation,
	}, true
}

// stringifyOption renders a scalar JSON value as trimmed text. Objects and
// arrays are not plausible answer options and yield "".
func stringifyOption(raw any) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return ""
	}
}

// coerceIndex converts a JSON value to an answer index, tolerating numeric
// strings. Anything unusable maps to -1 so the caller applies the default.
func coerceIndex(raw any) int {
	switch v := raw.(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return -1
}
