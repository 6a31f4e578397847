package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"storybook-server/internal/domain"
)

// Generation strategies reported by ProduceStory.
const (
	StrategyAI   = "ai"
	StrategyMock = "mock"
)

// credentialPrefix is the cheap local shape check applied to
// request-supplied credentials before spending a network call.
const credentialPrefix = "sk-"

// StoryService is the top-level entry point of the generation pipeline.
// It picks a generation strategy from credential availability and falls
// back to the mock generator on any failure, so that producing a story
// never fails the caller.
type StoryService struct {
	textGen       TextGenerator
	mock          *MockGenerator
	defaultAPIKey string
	logger        *zap.Logger
}

// NewStoryService wires the orchestrator. The default credential is
// resolved once at process start and injected here; deep call paths
// never read the environment.
func NewStoryService(textGen TextGenerator, mock *MockGenerator, defaultAPIKey string, logger *zap.Logger) *StoryService {
	return &StoryService{
		textGen:       textGen,
		mock:          mock,
		defaultAPIKey: defaultAPIKey,
		logger:        logger,
	}
}

// ProduceStory returns a schema-valid StoryBook for the request along
// with the strategy that produced it. It has no error return: every
// internal failure degrades to deterministic mock content.
func (s *StoryService) ProduceStory(ctx context.Context, req domain.StoryRequest) (*domain.StoryBook, string) {
	apiKey := req.APIKey
	source := "request"
	if apiKey == "" {
		apiKey = s.defaultAPIKey
		source = "default"
	}

	if apiKey == "" {
		s.logger.Info("no generation credential resolved, using mock generator")
		return s.mock.Generate(req), StrategyMock
	}

	if source == "request" && !strings.HasPrefix(apiKey, credentialPrefix) {
		s.logger.Warn("request credential failed format check, using mock generator")
		return s.mock.Generate(req), StrategyMock
	}

	book, err := s.textGen.GenerateStory(ctx, req, apiKey)
	if err != nil {
		s.logger.Warn("AI generation failed, falling back to mock generator",
			zap.String("credential_source", source),
			zap.Error(err),
		)
		return s.mock.Generate(req), StrategyMock
	}

	s.logger.Info("story produced by AI generation", zap.String("credential_source", source))
	return book, StrategyAI
}
