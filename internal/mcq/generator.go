package mcq

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lecturelab/quizforge/internal/chunk"
	"github.com/lecturelab/quizforge/internal/config"
	"github.com/lecturelab/quizforge/internal/llm"
	"github.com/lecturelab/quizforge/internal/model"
	"github.com/lecturelab/quizforge/internal/resilience"
)

// errEmptyPass signals that a full chunk pass produced zero questions.
// It is retryable at the pass level and never escapes Generate.
var errEmptyPass = eris.New("mcq: chunk pass produced no questions")

// Generator drives chunk -> prompt -> completion -> extraction -> validation
// and aggregates questions up to the requested count.
type Generator struct {
	client llm.CompletionClient
	cfg    config.GeneratorConfig
}

// New creates a Generator using the given completion backend.
func New(client llm.CompletionClient, cfg config.GeneratorConfig) *Generator {
	if cfg.ChunkAttempts < 1 {
		cfg.ChunkAttempts = 2
	}
	if cfg.QuestionsPerChunk < 1 {
		cfg.QuestionsPerChunk = 1
	}
	if cfg.MaxModelTokens < 1 {
		cfg.MaxModelTokens = 4000
	}
	if cfg.PassBackoffSecs < 1 {
		cfg.PassBackoffSecs = 1
	}
	return &Generator{client: client, cfg: cfg}
}

// Generate produces up to numQuestions validated questions from text. An
// unusable LLM is a degraded outcome, not a failure: when every pass comes
// back empty, the result is an empty list and a nil error. Errors are
// reserved for context cancellation and programming faults.
func (g *Generator) Generate(ctx context.Context, text string, numQuestions int) ([]model.Question, error) {
	genID := uuid.NewString()
	log := zap.L().With(zap.String("generation_id", genID))

	questions, err := resilience.DoVal(ctx, resilience.RetryConfig{
		MaxAttempts:    g.cfg.PassRetries + 1,
		InitialBackoff: time.Duration(g.cfg.PassBackoffSecs) * time.Second,
		Multiplier:     2.0,
		ShouldRetry: func(err error) bool {
			return eris.Is(err, errEmptyPass)
		},
		OnRetry: func(attempt int, err error) {
			log.Info("no questions generated, retrying full pass",
				zap.Int("attempt", attempt),
			)
		},
	}, func(ctx context.Context) ([]model.Question, error) {
		qs := g.chunkPass(ctx, log, text, numQuestions)
		if len(qs) == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, errEmptyPass
		}
		return qs, nil
	})

	switch {
	case err == nil:
		log.Info("question generation complete",
			zap.Int("requested", numQuestions),
			zap.Int("generated", len(questions)),
		)
		return questions, nil
	case eris.Is(err, errEmptyPass):
		log.Warn("question generation exhausted retries with no questions")
		return []model.Question{}, nil
	default:
		return nil, eris.Wrap(err, "mcq: generate")
	}
}

// chunkPass runs one sequential pass over the chunked text. Later chunks
// are skipped once the requested count is reached.
func (g *Generator) chunkPass(ctx context.Context, log *zap.Logger, text string, numQuestions int) []model.Question {
	chunks := chunk.Split(text, numQuestions)
	log.Debug("split text into chunks",
		zap.Int("chunks", len(chunks)),
		zap.Int("text_len", len(text)),
	)

	var accumulated []model.Question
	for i, c := range chunks {
		if ctx.Err() != nil {
			break
		}

		qs := g.generateFromChunk(ctx, log, c, i)
		accumulated = append(accumulated, qs...)
		if len(accumulated) >= numQuestions {
			accumulated = accumulated[:numQuestions]
			break
		}
	}
	return accumulated
}

// generateFromChunk attempts one chunk up to the configured attempt ceiling.
// Transport failures, extraction failures, and empty validation results all
// consume an attempt; exhausting attempts moves on to the next chunk. There
// is no sleep between chunk attempts; backoff belongs to the pass layer.
func (g *Generator) generateFromChunk(ctx context.Context, log *zap.Logger, chunkText string, chunkIndex int) []model.Question {
	prompt := BuildPrompt(chunkText, g.cfg.QuestionsPerChunk, g.cfg.MaxModelTokens)

	for attempt := 1; attempt <= g.cfg.ChunkAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil
		}

		raw, err := g.client.Complete(ctx, prompt)
		if err != nil {
			log.Warn("completion call failed",
				zap.Int("chunk", chunkIndex),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		candidate, err := ExtractJSON(raw)
		if err != nil {
			log.Debug("no JSON payload in completion",
				zap.Int("chunk", chunkIndex),
				zap.Int("attempt", attempt),
				zap.String("raw", raw),
			)
			continue
		}

		questions := ValidateQuestions(candidate)
		if len(questions) == 0 {
			log.Debug("no valid questions in candidate",
				zap.Int("chunk", chunkIndex),
				zap.Int("attempt", attempt),
				zap.String("candidate", candidate),
			)
			continue
		}

		if !g.cfg.KeepAllQuestions {
			questions = questions[:1]
		}
		log.Debug("chunk produced questions",
			zap.Int("chunk", chunkIndex),
			zap.Int("attempt", attempt),
			zap.Int("questions", len(questions)),
		)
		return questions
	}

	log.Warn("chunk exhausted attempts without a valid question",
		zap.Int("chunk", chunkIndex),
		zap.Int("attempts", g.cfg.ChunkAttempts),
	)
	return nil
}
