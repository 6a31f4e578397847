package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"storybook-server/internal/domain"
)

const imageEditsEndpoint = "https://api.openai.com/v1/images/edits"

// ImageBackend abstracts the image-generation service. Both operations
// return decoded image bytes. Failures are reported as
// *domain.ImageGenerationError so callers can tell transient failures
// (retryable) from validation/quota failures (not retryable).
type ImageBackend interface {
	// Generate creates a fresh image from the prompt.
	Generate(ctx context.Context, prompt, size, quality string) ([]byte, error)
	// Edit composes an image from the prompt plus reference images read
	// from the given paths.
	Edit(ctx context.Context, prompt, size, quality string, refPaths []string) ([]byte, error)
}

// OpenAIImageBackend implements ImageBackend against the OpenAI images
// API. Plain generation goes through go-openai; the multi-reference
// edit call is issued as a raw multipart request because the SDK only
// accepts a single input image.
type OpenAIImageBackend struct {
	apiKey     string
	model      string
	client     *openai.Client
	httpClient *http.Client
	logger     *zap.Logger
}

func NewOpenAIImageBackend(apiKey, model string, timeout time.Duration, logger *zap.Logger) *OpenAIImageBackend {
	if model == "" {
		model = "gpt-image-1"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIImageBackend{
		apiKey:     apiKey,
		model:      model,
		client:     openai.NewClient(apiKey),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Generate creates one image and returns its decoded bytes.
func (b *OpenAIImageBackend) Generate(ctx context.Context, prompt, size, quality string) ([]byte, error) {
	req := openai.ImageRequest{
		Model:   b.model,
		Prompt:  prompt,
		Size:    size,
		Quality: quality,
		N:       1,
	}
	// dall-e models return URLs unless asked for base64; gpt-image-1
	// always returns base64 and rejects the parameter.
	if strings.HasPrefix(b.model, "dall-e") {
		req.ResponseFormat = openai.CreateImageResponseFormatB64JSON
	}

	resp, err := b.client.CreateImage(ctx, req)
	if err != nil {
		return nil, b.classify(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, &domain.ImageGenerationError{Transient: true, Err: errors.New("empty image payload")}
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, &domain.ImageGenerationError{Transient: false, Err: fmt.Errorf("decode image payload: %w", err)}
	}
	return data, nil
}

// Edit composes an image using up to several reference images.
func (b *OpenAIImageBackend) Edit(ctx context.Context, prompt, size, quality string, refPaths []string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"model":   b.model,
		"prompt":  prompt,
		"size":    size,
		"quality": quality,
		"n":       "1",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, &domain.ImageGenerationError{Transient: false, Err: fmt.Errorf("build request: %w", err)}
		}
	}

	for _, refPath := range refPaths {
		if err := b.attachReference(writer, refPath); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, &domain.ImageGenerationError{Transient: false, Err: fmt.Errorf("build request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, imageEditsEndpoint, body)
	if err != nil {
		return nil, &domain.ImageGenerationError{Transient: false, Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, b.classify(err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		b.logger.Warn("image edit returned non-OK status",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("response_body", respBody),
		)
		return nil, &domain.ImageGenerationError{
			Transient: resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusRequestTimeout,
			Err:       fmt.Errorf("images API returned status %d", resp.StatusCode),
		}
	}
	if readErr != nil {
		return nil, &domain.ImageGenerationError{Transient: true, Err: fmt.Errorf("read response body: %w", readErr)}
	}

	var parsed struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &domain.ImageGenerationError{Transient: false, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		return nil, &domain.ImageGenerationError{Transient: true, Err: errors.New("empty image payload")}
	}

	data, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
	if err != nil {
		return nil, &domain.ImageGenerationError{Transient: false, Err: fmt.Errorf("decode image payload: %w", err)}
	}
	return data, nil
}

func (b *OpenAIImageBackend) attachReference(writer *multipart.Writer, refPath string) error {
	file, err := os.Open(refPath)
	if err != nil {
		return &domain.ImageGenerationError{Transient: false, Err: fmt.Errorf("open reference image: %w", err)}
	}
	defer file.Close()

	part, err := writer.CreateFormFile("image[]", filepath.Base(refPath))
	if err != nil {
		return &domain.ImageGenerationError{Transient: false, Err: fmt.Errorf("build request: %w", err)}
	}
	if _, err := io.Copy(part, file); err != nil {
		return &domain.ImageGenerationError{Transient: false, Err: fmt.Errorf("read reference image: %w", err)}
	}
	return nil
}

// classify maps transport and API errors onto the retry taxonomy:
// network and server-side failures are transient, everything the caller
// did wrong (validation, auth, quota) is permanent.
func (b *OpenAIImageBackend) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ImageGenerationError{
			Transient: apiErr.HTTPStatusCode >= http.StatusInternalServerError ||
				apiErr.HTTPStatusCode == http.StatusRequestTimeout,
			Err: err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.ImageGenerationError{Transient: true, Err: err}
	}

	// Unrecognized transport failures count as transient.
	return &domain.ImageGenerationError{Transient: true, Err: err}
}
