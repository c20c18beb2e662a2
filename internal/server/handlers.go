package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lecturelab/quizforge/internal/model"
	"github.com/lecturelab/quizforge/internal/transcribe"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type generateRequest struct {
	Text string `json:"text"`
	// Raw so that a non-numeric count degrades to the default instead of
	// failing the whole request.
	NumQuestions json.RawMessage `json:"num_questions"`
}

type generateResponse struct {
	Questions []model.Question `json:"questions"`
}

// coerceCount converts a raw num_questions value to an int, tolerating
// numeric strings. Anything unusable maps to 0 so the caller applies the
// default.
func coerceCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}

func (s *Server) handleGenerateMCQ(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	n := coerceCount(req.NumQuestions)
	if n <= 0 {
		n = s.cfg.Generator.DefaultQuestions
	}
	if n > s.cfg.Generator.MaxQuestions {
		n = s.cfg.Generator.MaxQuestions
	}

	questions, err := s.generator.Generate(r.Context(), req.Text, n)
	if err != nil {
		zap.L().Error("question generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "question generation failed")
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}
	writeJSON(w, http.StatusOK, generateResponse{Questions: questions})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "transcription is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds the %d byte limit", maxErr.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	if !transcribe.SupportedExtension(header.Filename) {
		writeError(w, http.StatusBadRequest,
			"unsupported file type; allowed: "+strings.Join(transcribe.SupportedExtensions(), ", "))
		return
	}

	tmpPath, err := saveUpload(file, header.Filename)
	if err != nil {
		zap.L().Error("saving upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	defer os.Remove(tmpPath)

	res, err := s.transcriber.Transcribe(r.Context(), tmpPath)
	if err != nil {
		zap.L().Error("transcription failed",
			zap.String("filename", header.Filename),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "transcription failed")
		return
	}

	writeJSON(w, http.StatusOK, model.Transcript{
		Text:     res.Text,
		Duration: res.Duration,
		Language: res.Language,
	})
}

// saveUpload writes the uploaded media to a temp file, keeping the
// original extension so the transcriber can identify the container.
func saveUpload(file io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "quizforge-upload-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
