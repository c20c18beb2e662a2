package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// WhisperCpp transcribes media files by shelling out to the whisper.cpp
// CLI (whisper-cli). The CLI writes a JSON sidecar file which is parsed
// into a Result.
type WhisperCpp struct {
	binPath   string
	modelPath string
	language  string
}

// NewWhisperCpp creates a WhisperCpp transcriber. If binPath is empty,
// "whisper-cli" is used.
func NewWhisperCpp(binPath, modelPath, language string) *WhisperCpp {
	if binPath == "" {
		binPath = "whisper-cli"
	}
	return &WhisperCpp{binPath: binPath, modelPath: modelPath, language: language}
}

// whisperOutput mirrors the JSON file whisper.cpp emits with -oj.
// Offsets are milliseconds from the start of the media.
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// Transcribe runs whisper-cli on the given media file and parses its JSON
// output.
func (w *WhisperCpp) Transcribe(ctx context.Context, path string) (*Result, error) {
	outDir, err := os.MkdirTemp("", "quizforge-whisper-")
	if err != nil {
		return nil, eris.Wrap(err, "transcribe: create output dir")
	}
	defer os.RemoveAll(outDir)

	// -of is the output prefix; -oj makes the CLI write <prefix>.json.
	outPrefix := filepath.Join(outDir, "transcript")
	args := []string{"-m", w.modelPath, "-f", path, "-oj", "-of", outPrefix}
	if w.language != "" {
		args = append(args, "-l", w.language)
	}
	cmd := exec.CommandContext(ctx, w.binPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "transcribe: %s failed for %s: %s", w.binPath, path, strings.TrimSpace(stderr.String()))
	}

	data, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, eris.Wrap(err, "transcribe: read whisper output")
	}
	return parseWhisperOutput(data)
}

func parseWhisperOutput(data []byte) (*Result, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "transcribe: parse whisper output")
	}

	res := &Result{Language: out.Result.Language}
	for _, seg := range out.Transcription {
		res.Segments = append(res.Segments, Segment{
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	if n := len(res.Segments); n > 0 {
		res.Duration = res.Segments[n-1].End
	}
	res.Text = joinSegments(res.Segments)
	return res, nil
}
