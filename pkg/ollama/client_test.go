package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecturelab/quizforge/internal/resilience"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantErr       string
		wantTransient bool
		wantResponse  string
	}{
		{
			name:         "success",
			status:       http.StatusOK,
			body:         `{"model":"gemma:2b","response":"[{\"question\":\"Q\"}]","done":true,"eval_count":42}`,
			wantResponse: `[{"question":"Q"}]`,
		},
		{
			name:          "server_error",
			status:        http.StatusInternalServerError,
			body:          `{"error": "model failed to load"}`,
			wantErr:       "unexpected status 500",
			wantTransient: true,
		},
		{
			name:          "rate_limit",
			status:        http.StatusTooManyRequests,
			body:          `{"error": "busy"}`,
			wantErr:       "unexpected status 429",
			wantTransient: true,
		},
		{
			name:    "not_found_is_permanent",
			status:  http.StatusNotFound,
			body:    `{"error": "model not found"}`,
			wantErr: "unexpected status 404",
		},
		{
			name:    "missing_response_field",
			status:  http.StatusOK,
			body:    `{"model":"gemma:2b","done":true}`,
			wantErr: "missing response field",
		},
		{
			name:    "malformed_envelope",
			status:  http.StatusOK,
			body:    `{invalid json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/generate", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(WithBaseURL(srv.URL))

			resp, err := client.Generate(context.Background(), GenerateRequest{
				Prompt: "Generate one question.",
				Format: "json",
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, resp)
				var te *resilience.TransientError
				assert.Equal(t, tt.wantTransient, errors.As(err, &te))
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantResponse, resp.Response)
			assert.True(t, resp.Done)
		})
	}
}

func TestGenerateDefaultModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "gemma:2b", req.Model)
		assert.False(t, req.Stream)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gemma:2b","response":"ok","done":true}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "test"})
	require.NoError(t, err)
}

func TestWithModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "llama3.1", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.1","response":"ok","done":true}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithModel("llama3.1"))
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "test"})
	require.NoError(t, err)
}

func TestGenerateConnectionFailureIsTransient(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithTimeout(time.Second))
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "test"})
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestWithRateLimitZeroIsUnlimited(t *testing.T) {
	c := NewClient(WithRateLimit(0)).(*httpClient)
	assert.Nil(t, c.limiter)

	c = NewClient(WithRateLimit(2)).(*httpClient)
	assert.NotNil(t, c.limiter)
}
