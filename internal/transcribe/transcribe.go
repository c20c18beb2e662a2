// Package transcribe is the boundary to the external speech-recognition
// model. The model is a black box: a media file goes in, timed text
// segments come out. Failures surface as-is; transcription is never
// retried here.
package transcribe

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/lecturelab/quizforge/internal/config"
)

// Segment is one timed piece of transcribed speech, in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the complete output of transcribing one media file.
type Result struct {
	Text     string    `json:"text"`
	Duration float64   `json:"duration"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments,omitempty"`
}

// Transcriber converts a media file on disk into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (*Result, error)
}

// New creates a Transcriber based on config.
func New(cfg config.WhisperConfig) (Transcriber, error) {
	switch cfg.Provider {
	case "local", "":
		return NewWhisperCpp(cfg.BinPath, cfg.ModelPath, cfg.Language), nil
	case "server":
		if cfg.ServerBaseURL == "" {
			return nil, eris.New("transcribe: server provider requires whisper.server_base_url")
		}
		return NewServerClient(cfg.ServerBaseURL, cfg.Language), nil
	default:
		return nil, eris.Errorf("transcribe: unknown provider %q", cfg.Provider)
	}
}

// supportedExtensions is the allow-list of media container extensions the
// service accepts for transcription.
var supportedExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true,
	".wmv": true, ".flv": true, ".webm": true,
	".mp3": true, ".wav": true, ".m4a": true, ".ogg": true, ".flac": true,
}

// SupportedExtension reports whether the file's extension is on the
// allow-list. Matching is case-insensitive.
func SupportedExtension(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SupportedExtensions returns the allow-list for error messages, sorted.
func SupportedExtensions() []string {
	out := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// joinSegments builds the transcript text: non-empty trimmed segment texts
// joined with single spaces, in time order.
func joinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
