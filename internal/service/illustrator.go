package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storybook-server/internal/domain"
)

// maxReferenceImages caps how many character references are passed to a
// page compose call.
const maxReferenceImages = 5

var illustrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storybook_illustrations_total",
		Help: "Total number of illustration tasks by entity kind and outcome.",
	},
	[]string{"kind", "outcome"},
)

// IllustratorConfig configures the illustration pipeline.
type IllustratorConfig struct {
	OutputDir        string
	CharacterSize    string
	PageSize         string
	Quality          string
	CharacterWorkers int
	PageWorkers      int

	// Retry policy for transient backend failures.
	RetryMaxAttempts     int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

func (c *IllustratorConfig) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "story_illustrations"
	}
	if c.CharacterSize == "" {
		c.CharacterSize = "1024x1024"
	}
	if c.PageSize == "" {
		c.PageSize = "1024x1024"
	}
	if c.Quality == "" {
		c.Quality = "low"
	}
	if c.CharacterWorkers <= 0 {
		c.CharacterWorkers = 5
	}
	if c.PageWorkers <= 0 {
		c.PageWorkers = 5
	}
	if c.RetryMaxAttempts <= 0 {
		c.RetryMaxAttempts = 3
	}
	if c.RetryInitialInterval <= 0 {
		c.RetryInitialInterval = 2 * time.Second
	}
	if c.RetryMaxInterval <= 0 {
		c.RetryMaxInterval = 10 * time.Second
	}
}

// Illustrator attaches images to a story's characters and pages. Phase
// one renders every character portrait; phase two renders every page,
// passing the finished portraits as visual references. Page tasks never
// start before every character task has joined.
type Illustrator struct {
	backend ImageBackend
	cfg     IllustratorConfig
	logger  *zap.Logger
}

func NewIllustrator(backend ImageBackend, cfg IllustratorConfig, logger *zap.Logger) *Illustrator {
	cfg.applyDefaults()
	return &Illustrator{
		backend: backend,
		cfg:     cfg,
		logger:  logger,
	}
}

// Illustrate mutates the given story in place, filling image paths on
// characters and pages, and returns it. A single entity's failure
// leaves that entity's image fields empty; it never aborts the batch.
func (il *Illustrator) Illustrate(ctx context.Context, book *domain.StoryBook) (*domain.StoryBook, error) {
	charactersDir := filepath.Join(il.cfg.OutputDir, "characters")
	pagesDir := filepath.Join(il.cfg.OutputDir, "pages")
	for _, dir := range []string{charactersDir, pagesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create illustration directory %s: %w", dir, err)
		}
	}

	characterPaths := il.illustrateCharacters(ctx, book, charactersDir)
	il.illustratePages(ctx, book, pagesDir, characterPaths)
	return book, nil
}

// illustrateCharacters runs phase one and returns the name-to-path map
// for phase two. The map also carries failure placeholders: every
// character has been decided, one way or the other, by the time this
// returns.
func (il *Illustrator) illustrateCharacters(ctx context.Context, book *domain.StoryBook, dir string) map[string]string {
	characterPaths := make(map[string]string, len(book.StoryCharacters))
	var mu sync.Mutex

	g := &errgroup.Group{}
	g.SetLimit(il.cfg.CharacterWorkers)

	for i := range book.StoryCharacters {
		character := &book.StoryCharacters[i]
		g.Go(func() error {
			path, ok := il.illustrateCharacter(ctx, book.IllustrationStyle, character, dir)
			if ok {
				mu.Lock()
				characterPaths[character.CharacterName] = path
				mu.Unlock()
			}
			return nil
		})
	}

	// Join barrier: phase two must not observe a partially populated map.
	_ = g.Wait()
	return characterPaths
}

func (il *Illustrator) illustrateCharacter(ctx context.Context, style string, character *domain.CharacterDescription, dir string) (string, bool) {
	log := il.logger.With(zap.String("character", character.CharacterName))

	if character.CharacterName == "" || character.CharacterDescription == "" {
		log.Warn("skipping character with missing name or description")
		illustrationsTotal.With(prometheus.Labels{"kind": "character", "outcome": "skipped"}).Inc()
		return "", false
	}

	path := filepath.Join(dir, sanitizeName(character.CharacterName)+".png")
	if fileExists(path) {
		log.Info("reusing existing character illustration", zap.String("path", path))
		illustrationsTotal.With(prometheus.Labels{"kind": "character", "outcome": "cache_hit"}).Inc()
		character.CharacterImagePath = path
		return path, true
	}

	prompt := composePrompt(style, character.CharacterDescription)
	data, err := il.generateWithRetry(ctx, func(ctx context.Context) ([]byte, error) {
		return il.backend.Generate(ctx, prompt, il.cfg.CharacterSize, il.cfg.Quality)
	})
	if err != nil {
		log.Error("character illustration failed", zap.Error(err))
		illustrationsTotal.With(prometheus.Labels{"kind": "character", "outcome": "failed"}).Inc()
		return "", false
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Error("failed to save character illustration", zap.String("path", path), zap.Error(err))
		illustrationsTotal.With(prometheus.Labels{"kind": "character", "outcome": "failed"}).Inc()
		return "", false
	}

	log.Info("character illustration saved", zap.String("path", path), zap.Int("size_bytes", len(data)))
	illustrationsTotal.With(prometheus.Labels{"kind": "character", "outcome": "generated"}).Inc()
	character.CharacterImagePath = path
	return path, true
}

// illustratePages runs phase two. characterPaths is read-only here.
func (il *Illustrator) illustratePages(ctx context.Context, book *domain.StoryBook, dir string, characterPaths map[string]string) {
	g := &errgroup.Group{}
	g.SetLimit(il.cfg.PageWorkers)

	for i := range book.StoryBook {
		page := &book.StoryBook[i]
		g.Go(func() error {
			il.illustratePage(ctx, book.IllustrationStyle, page, dir, characterPaths)
			return nil
		})
	}
	_ = g.Wait()
}

func (il *Illustrator) illustratePage(ctx context.Context, style string, page *domain.StoryBookPage, dir string, characterPaths map[string]string) {
	log := il.logger.With(zap.Int("page", page.Page))

	if page.IllustrationDescription == "" {
		log.Warn("skipping page with missing illustration description")
		illustrationsTotal.With(prometheus.Labels{"kind": "page", "outcome": "skipped"}).Inc()
		return
	}

	path := filepath.Join(dir, fmt.Sprintf("page_%03d.png", page.Page))
	if fileExists(path) {
		log.Info("reusing existing page illustration", zap.String("path", path))
		illustrationsTotal.With(prometheus.Labels{"kind": "page", "outcome": "cache_hit"}).Inc()
		page.IllustrationPath = path
		return
	}

	refs := make([]string, 0, maxReferenceImages)
	for _, character := range page.Characters {
		if refPath, ok := characterPaths[character.CharacterName]; ok {
			refs = append(refs, refPath)
			if len(refs) == maxReferenceImages {
				break
			}
		}
	}

	prompt := composePrompt(style, page.IllustrationDescription)
	data, err := il.generateWithRetry(ctx, func(ctx context.Context) ([]byte, error) {
		if len(refs) > 0 {
			return il.backend.Edit(ctx, prompt, il.cfg.PageSize, il.cfg.Quality, refs)
		}
		return il.backend.Generate(ctx, prompt, il.cfg.PageSize, il.cfg.Quality)
	})
	if err != nil {
		log.Error("page illustration failed", zap.Int("reference_count", len(refs)), zap.Error(err))
		illustrationsTotal.With(prometheus.Labels{"kind": "page", "outcome": "failed"}).Inc()
		return
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Error("failed to save page illustration", zap.String("path", path), zap.Error(err))
		illustrationsTotal.With(prometheus.Labels{"kind": "page", "outcome": "failed"}).Inc()
		return
	}

	log.Info("page illustration saved", zap.String("path", path), zap.Int("reference_count", len(refs)))
	illustrationsTotal.With(prometheus.Labels{"kind": "page", "outcome": "generated"}).Inc()
	page.IllustrationPath = path
	page.IllustrationBase64 = base64.StdEncoding.EncodeToString(data)
}

// generateWithRetry retries transient backend failures up to the
// configured attempt budget with exponential backoff. Permanent
// failures abort immediately.
func (il *Illustrator) generateWithRetry(ctx context.Context, call func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = il.cfg.RetryInitialInterval
	policy.MaxInterval = il.cfg.RetryMaxInterval
	policy.MaxElapsedTime = 0

	var result []byte
	operation := func() error {
		data, err := call(ctx)
		if err != nil {
			var igErr *domain.ImageGenerationError
			if errors.As(err, &igErr) && !igErr.Transient {
				return backoff.Permanent(err)
			}
			return err
		}
		result = data
		return nil
	}

	retries := uint64(il.cfg.RetryMaxAttempts - 1)
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func composePrompt(style, description string) string {
	return fmt.Sprintf("Illustration Style: %s\nIllustration Description: %s", style, description)
}

// sanitizeName maps a character name onto a filesystem-safe key; the
// derived filename doubles as the cache index.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
