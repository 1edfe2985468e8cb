package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"github.com/coastal7-sdlc/user-story-agent/common/llm"
	"github.com/coastal7-sdlc/user-story-agent/common/logger"
	"github.com/coastal7-sdlc/user-story-agent/internal/model"
	"github.com/coastal7-sdlc/user-story-agent/internal/store"
	"github.com/coastal7-sdlc/user-story-agent/internal/story"
)

const MinRequirementsLength = 10

type GenerationConfig struct {
	MaxTokens        int
	Temperature      float64
	MaxRetries       int
	StructuredOutput bool
}

type GenerationService interface {
	// GenerateStories turns requirements into stories without persisting them.
	GenerateStories(ctx context.Context, requirements string) ([]model.Story, error)
	// Generate produces a batch and persists it when a store is available.
	Generate(ctx context.Context, requirements string) (*model.Batch, error)
	Analyze(ctx context.Context, requirements string) (*model.ComplexityAssessment, error)
	Available() bool
	Model() string
}

type generationService struct {
	llm   llm.Client
	store store.BatchStore
	cfg   GenerationConfig
	now   func() time.Time
}

// NewGenerationService accepts a nil client (generation unavailable) and a nil
// store (batches are not persisted).
func NewGenerationService(client llm.Client, batches store.BatchStore, cfg GenerationConfig) GenerationService {
	return &generationService{
		llm:   client,
		store: batches,
		cfg:   cfg,
		now:   time.Now,
	}
}

// ValidateRequirements enforces a non-blank text of at least MinRequirementsLength runes.
func ValidateRequirements(requirements string) error {
	trimmed := strings.TrimSpace(requirements)
	if trimmed == "" {
		return &ValidationError{Message: "Requirements must be a non-empty string"}
	}
	if utf8.RuneCountInString(trimmed) < MinRequirementsLength {
		return &ValidationError{Message: "Requirements must be at least 10 characters long"}
	}
	return nil
}

func (s *generationService) Available() bool {
	return s.llm != nil
}

func (s *generationService) Model() string {
	if s.llm == nil {
		return ""
	}
	return s.llm.Model()
}

func (s *generationService) GenerateStories(ctx context.Context, requirements string) ([]model.Story, error) {
	if err := ValidateRequirements(requirements); err != nil {
		return nil, err
	}
	if s.llm == nil {
		return nil, &ServiceUnavailableError{Service: "completion provider"}
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Provider:  logger.Ptr(s.llm.Provider()),
		Component: "agent.service.generation",
	})
	sc := logger.StartSpan(ctx, "service.generate_stories")
	defer sc.End()
	ctx = sc.Context()

	slog.InfoContext(ctx, "generating user stories",
		"model", s.llm.Model(),
		"requirements", logger.Truncate(requirements, 100))

	req := llm.Request{
		SystemPrompt: story.SystemPrompt,
		UserPrompt:   story.BuildPrompt(requirements, s.cfg.StructuredOutput),
		MaxTokens:    s.cfg.MaxTokens,
		Temperature:  llm.Temp(s.cfg.Temperature),
	}
	if s.cfg.StructuredOutput {
		req.SchemaName = story.ResponseSchemaName
		req.Schema = story.ResponseSchema()
	}

	resp, err := llm.CompleteWithRetry(ctx, s.llm, req, s.cfg.MaxRetries)
	if err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "completion request failed", "error", err)
		return nil, &GenerationError{Message: "Failed to generate user stories", Err: err}
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		err := errors.New("completion provider returned no content")
		sc.RecordError(err)
		slog.ErrorContext(ctx, "empty completion", "finish_reason", resp.FinishReason)
		return nil, &GenerationError{Message: "Failed to generate user stories", Err: err}
	}

	slog.DebugContext(ctx, "received completion", "content", logger.Truncate(content, 200))

	stories, usedFallback := story.Parse(content)
	if usedFallback {
		slog.WarnContext(ctx, "completion was not a JSON story array, used fallback parser",
			"stories", len(stories))
	}
	if len(stories) == 0 {
		return nil, &GenerationError{Message: "No user stories were generated"}
	}

	sc.SetAttributes(
		attribute.Int("stories.count", len(stories)),
		attribute.Bool("stories.fallback", usedFallback),
		attribute.Int("llm.prompt_tokens", resp.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.CompletionTokens),
	)
	slog.InfoContext(ctx, "user stories generated",
		"stories", len(stories),
		"fallback", usedFallback)

	return stories, nil
}

func (s *generationService) Generate(ctx context.Context, requirements string) (*model.Batch, error) {
	stories, err := s.GenerateStories(ctx, requirements)
	if err != nil {
		return nil, err
	}

	batch := model.NewBatch(stories, requirements, s.llm.Model(), s.now())

	if s.store == nil {
		batch.ID = localBatchID(batch.CreatedAt)
		return batch, nil
	}

	if err := s.store.Create(ctx, batch); err != nil {
		batch.ID = localBatchID(batch.CreatedAt)
		slog.WarnContext(ctx, "failed to persist user stories, using local id",
			"error", err,
			"store", s.store.Backend(),
			"batch_id", batch.ID)
		return batch, nil
	}

	slog.InfoContext(logger.WithLogFields(ctx, logger.LogFields{BatchID: logger.Ptr(batch.ID)}),
		"user stories persisted", "store", s.store.Backend())
	return batch, nil
}

func (s *generationService) Analyze(ctx context.Context, requirements string) (*model.ComplexityAssessment, error) {
	if err := ValidateRequirements(requirements); err != nil {
		return nil, err
	}
	assessment := story.Estimate(requirements)
	slog.DebugContext(ctx, "requirements analyzed",
		"word_count", assessment.WordCount,
		"complexity_score", assessment.ComplexityScore)
	return &assessment, nil
}

func localBatchID(t time.Time) string {
	return fmt.Sprintf("story_%s", t.UTC().Format("20060102_150405"))
}
