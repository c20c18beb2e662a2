// Package llm abstracts the completion endpoint behind a single interface
// so the generator does not care which backend produced the text.
package llm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/lecturelab/quizforge/internal/config"
	"github.com/lecturelab/quizforge/pkg/anthropic"
	"github.com/lecturelab/quizforge/pkg/ollama"
)

// CompletionClient issues a prompt and returns the raw text completion.
// Implementations never retry; retry policy lives in the generator.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// New creates a CompletionClient based on config.
func New(cfg *config.Config) (CompletionClient, error) {
	switch cfg.LLM.Provider {
	case "ollama", "":
		opts := []ollama.Option{
			ollama.WithBaseURL(cfg.Ollama.BaseURL),
			ollama.WithModel(cfg.Ollama.Model),
			ollama.WithRateLimit(cfg.Ollama.RequestsPerSec),
		}
		if cfg.Ollama.TimeoutSecs > 0 {
			opts = append(opts, ollama.WithTimeout(time.Duration(cfg.Ollama.TimeoutSecs)*time.Second))
		}
		return &ollamaCompleter{client: ollama.NewClient(opts...)}, nil
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("llm: anthropic provider requires anthropic.key")
		}
		return &anthropicCompleter{
			client:    anthropic.NewClient(cfg.Anthropic.Key),
			model:     cfg.Anthropic.Model,
			maxTokens: cfg.Anthropic.MaxTokens,
		}, nil
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.LLM.Provider)
	}
}

type ollamaCompleter struct {
	client ollama.Client
}

func (c *ollamaCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Generate(ctx, ollama.GenerateRequest{
		Prompt: prompt,
		Format: "json",
		Stream: false,
	})
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}

type anthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func (c *anthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
