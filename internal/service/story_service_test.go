package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storybook-server/internal/domain"
	"storybook-server/internal/mocks"
	"storybook-server/internal/service"
)

func aiBook() *domain.StoryBook {
	return &domain.StoryBook{
		StoryTitle:        "AI Story",
		StoryDescription:  "Produced by the model",
		IllustrationStyle: "watercolor",
		StoryCharacters: []domain.CharacterDescription{
			{CharacterName: "Robo", CharacterDescription: "A friendly robot"},
		},
		StoryBook: []domain.StoryBookPage{
			{Page: 1, StoryText: "Hello.", IllustrationDescription: "watercolor: Robo"},
		},
	}
}

func TestStoryServiceProduceStory(t *testing.T) {
	ctx := context.Background()
	req := domain.StoryRequest{ShortDescription: "Robo the robot", Pages: 1}

	t.Run("uses AI with a request-supplied key", func(t *testing.T) {
		textGen := mocks.NewMockTextGenerator(t)
		svc := service.NewStoryService(textGen, service.NewMockGenerator(zap.NewNop()), "", zap.NewNop())

		keyedReq := req
		keyedReq.APIKey = "sk-test-key"
		textGen.On("GenerateStory", ctx, keyedReq, "sk-test-key").Return(aiBook(), nil).Once()

		book, strategy := svc.ProduceStory(ctx, keyedReq)

		require.NotNil(t, book)
		assert.Equal(t, service.StrategyAI, strategy)
		assert.Equal(t, "AI Story", book.StoryTitle)
		textGen.AssertExpectations(t)
	})

	t.Run("uses the default key when the request has none", func(t *testing.T) {
		textGen := mocks.NewMockTextGenerator(t)
		svc := service.NewStoryService(textGen, service.NewMockGenerator(zap.NewNop()), "sk-default", zap.NewNop())

		textGen.On("GenerateStory", ctx, req, "sk-default").Return(aiBook(), nil).Once()

		_, strategy := svc.ProduceStory(ctx, req)

		assert.Equal(t, service.StrategyAI, strategy)
		textGen.AssertExpectations(t)
	})

	t.Run("falls back to mock without any credential", func(t *testing.T) {
		textGen := mocks.NewMockTextGenerator(t)
		svc := service.NewStoryService(textGen, service.NewMockGenerator(zap.NewNop()), "", zap.NewNop())

		book, strategy := svc.ProduceStory(ctx, req)

		require.NotNil(t, book)
		assert.Equal(t, service.StrategyMock, strategy)
		assert.NoError(t, domain.ValidateStoryBook(book))
		textGen.AssertNotCalled(t, "GenerateStory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a malformed request key without a network call", func(t *testing.T) {
		textGen := mocks.NewMockTextGenerator(t)
		svc := service.NewStoryService(textGen, service.NewMockGenerator(zap.NewNop()), "sk-default", zap.NewNop())

		badReq := req
		badReq.APIKey = "not-a-real-key"
		book, strategy := svc.ProduceStory(ctx, badReq)

		require.NotNil(t, book)
		assert.Equal(t, service.StrategyMock, strategy)
		textGen.AssertNotCalled(t, "GenerateStory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("falls back to mock when AI generation fails", func(t *testing.T) {
		textGen := mocks.NewMockTextGenerator(t)
		svc := service.NewStoryService(textGen, service.NewMockGenerator(zap.NewNop()), "sk-default", zap.NewNop())

		textGen.On("GenerateStory", ctx, req, "sk-default").Return(nil, domain.ErrGenerationFailed).Once()

		book, strategy := svc.ProduceStory(ctx, req)

		require.NotNil(t, book)
		assert.Equal(t, service.StrategyMock, strategy)
		assert.NoError(t, domain.ValidateStoryBook(book))
		assert.Contains(t, book.StoryTitle, "(Sample Story)")
		textGen.AssertExpectations(t)
	})
}
