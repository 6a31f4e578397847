package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"storybook-server/internal/domain"
)

const storyPromptFile = "story_book_builder.md"

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_ai_requests_total",
			Help: "Total number of requests to the text-generation API.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_ai_request_duration_seconds",
			Help:    "Histogram of text-generation request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.LinearBuckets(250, 250, 20),
		},
		[]string{"model"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(100, 100, 20),
		},
		[]string{"model"},
	)
)

// TextGenerator turns a story request into a validated StoryBook using
// an external text-generation backend.
type TextGenerator interface {
	GenerateStory(ctx context.Context, req domain.StoryRequest, apiKey string) (*domain.StoryBook, error)
}

// OpenAIStoryClient is the TextGenerator implementation backed by the
// OpenAI chat-completions API. The prompt template is loaded once at
// construction and treated as static configuration.
type OpenAIStoryClient struct {
	modelName   string
	temperature float32
	timeout     time.Duration
	template    string
	logger      *zap.Logger
}

// OpenAIConfig configures the story client.
type OpenAIConfig struct {
	PromptsDir  string
	ModelName   string
	Temperature float32
	Timeout     time.Duration
}

func NewOpenAIStoryClient(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIStoryClient, error) {
	if cfg.ModelName == "" {
		cfg.ModelName = openai.GPT4o
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}

	templatePath := filepath.Join(cfg.PromptsDir, storyPromptFile)
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt template %s: %w", templatePath, err)
	}

	return &OpenAIStoryClient{
		modelName:   cfg.ModelName,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		template:    string(content),
		logger:      logger,
	}, nil
}

// GenerateStory renders the prompt, performs a single completion call
// and parses the result through the schema validator. Any failure is
// reported as ErrGenerationFailed; retries belong to the transport, not
// this layer.
func (c *OpenAIStoryClient) GenerateStory(ctx context.Context, req domain.StoryRequest, apiKey string) (*domain.StoryBook, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, domain.ErrNoCredential)
	}

	prompt := c.renderPrompt(req)
	c.observePromptTokens(prompt)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client := openai.NewClient(apiKey)
	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompt,
			},
		},
		Temperature: c.temperature,
	})
	duration := time.Since(start)

	if err != nil {
		aiRequestsTotal.With(prometheus.Labels{"model": c.modelName, "status": "error"}).Inc()
		c.logger.Error("text generation request failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.modelName, "status": "error_empty_response"}).Inc()
		return nil, fmt.Errorf("%w: empty completion", domain.ErrGenerationFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.modelName, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.modelName}).Observe(duration.Seconds())
	if resp.Usage.CompletionTokens > 0 {
		aiCompletionTokens.With(prometheus.Labels{"model": c.modelName}).Observe(float64(resp.Usage.CompletionTokens))
	}

	raw := extractJSONObject(resp.Choices[0].Message.Content)
	book, err := domain.ParseStoryBook([]byte(raw))
	if err != nil {
		c.logger.Warn("completion failed schema validation",
			zap.Int("completion_bytes", len(raw)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	c.logger.Info("story book generated",
		zap.String("model", c.modelName),
		zap.Duration("duration", duration),
		zap.Int("pages", len(book.StoryBook)),
		zap.Int("characters", len(book.StoryCharacters)),
	)
	return book, nil
}

// renderPrompt substitutes the request fields and the format contract
// into the template's named slots.
func (c *OpenAIStoryClient) renderPrompt(req domain.StoryRequest) string {
	replacer := strings.NewReplacer(
		"{age}", req.Age,
		"{topic}", req.Topic,
		"{short_description}", req.ShortDescription,
		"{pages}", strconv.Itoa(req.Pages),
		"{language}", req.Language,
		"{illustration_style}", req.IllustrationStyle,
		"{format_instructions}", domain.FormatInstructions(),
	)
	return replacer.Replace(c.template)
}

func (c *OpenAIStoryClient) observePromptTokens(prompt string) {
	enc, err := tiktoken.EncodingForModel(c.modelName)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		c.logger.Debug("failed to resolve tokenizer for prompt accounting", zap.Error(err))
		return
	}
	aiPromptTokens.With(prometheus.Labels{"model": c.modelName}).Observe(float64(len(enc.Encode(prompt, nil, nil))))
}

// extractJSONObject trims anything around the outermost JSON object,
// such as markdown fences some models insist on emitting.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
