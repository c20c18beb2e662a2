package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ServerClient transcribes media files via a running whisper.cpp server
// (POST /inference with a multipart body).
type ServerClient struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

// NewServerClient creates a ServerClient for the given base URL.
func NewServerClient(baseURL, language string) *ServerClient {
	return &ServerClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		httpClient: &http.Client{
			// Transcription of long media is slow; the server streams
			// nothing back until it is done.
			Timeout: 10 * time.Minute,
		},
	}
}

// serverResponse mirrors the verbose_json response of the whisper.cpp
// server, which follows the OpenAI transcription shape.
type serverResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads the media file to the server and parses the
// verbose_json response.
func (c *ServerClient) Transcribe(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "transcribe: open media file")
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, eris.Wrap(err, "transcribe: build multipart body")
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, eris.Wrap(err, "transcribe: copy media into request")
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, eris.Wrap(err, "transcribe: build multipart body")
	}
	if c.language != "" {
		if err := mw.WriteField("language", c.language); err != nil {
			return nil, eris.Wrap(err, "transcribe: build multipart body")
		}
	}
	if err := mw.Close(); err != nil {
		return nil, eris.Wrap(err, "transcribe: finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/inference", &body)
	if err != nil {
		return nil, eris.Wrap(err, "transcribe: create request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "transcribe: whisper server request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "transcribe: read whisper server response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("transcribe: whisper server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var sr serverResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, eris.Wrap(err, "transcribe: parse whisper server response")
	}

	res := &Result{Language: sr.Language, Duration: sr.Duration}
	for _, seg := range sr.Segments {
		res.Segments = append(res.Segments, Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	if len(res.Segments) > 0 {
		res.Text = joinSegments(res.Segments)
	} else {
		res.Text = strings.TrimSpace(sr.Text)
	}
	return res, nil
}
