package handler

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storybook-server/internal/domain"
	"storybook-server/internal/pdfbook"
	"storybook-server/internal/repository"
)

// StoryProducer is the generation pipeline as seen by the HTTP layer.
type StoryProducer interface {
	ProduceStory(ctx context.Context, req domain.StoryRequest) (*domain.StoryBook, string)
}

// StoryIllustrator attaches images to an existing story document.
type StoryIllustrator interface {
	Illustrate(ctx context.Context, book *domain.StoryBook) (*domain.StoryBook, error)
}

type StorybookHandler struct {
	producer    StoryProducer
	illustrator StoryIllustrator
	repo        repository.StoryRepository
	pdf         *pdfbook.Extractor
	uploadsDir  string
	logger      *zap.Logger
}

func NewStorybookHandler(
	producer StoryProducer,
	illustrator StoryIllustrator,
	repo repository.StoryRepository,
	pdf *pdfbook.Extractor,
	uploadsDir string,
	logger *zap.Logger,
) *StorybookHandler {
	return &StorybookHandler{
		producer:    producer,
		illustrator: illustrator,
		repo:        repo,
		pdf:         pdf,
		uploadsDir:  uploadsDir,
		logger:      logger,
	}
}

func (h *StorybookHandler) RegisterRoutes(router *gin.Engine) {
	storybookGroup := router.Group("/storybook")
	{
		storybookGroup.POST("/get_stories", h.getStories)
		storybookGroup.POST("/illustrate", h.illustrate)

		storybookGroup.GET("/stories", h.listStories)
		storybookGroup.GET("/stories/:id", h.getStory)
		storybookGroup.DELETE("/stories/:id", h.deleteStory)

		storybookGroup.GET("/sample/pdf-list", h.listSamplePDFs)
		storybookGroup.GET("/sample/pdf-data/:pdf_id", h.getSamplePDFData)
		// Legacy route kept for clients predating multi-PDF support.
		storybookGroup.GET("/sample/pdf-data", h.getLegacySamplePDFData)
		storybookGroup.POST("/upload-pdf", h.uploadPDF)
	}
}

// getStories produces a story for the request and persists it. The
// generation itself never fails; only request binding and storage can.
func (h *StorybookHandler) getStories(c *gin.Context) {
	var req domain.StoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    ErrCodeBadRequest,
			Message: fmt.Sprintf("invalid story request: %v", err),
		})
		return
	}

	book, strategy := h.producer.ProduceStory(c.Request.Context(), req)
	storiesGeneratedTotal.WithLabelValues(strategy).Inc()

	record, err := h.repo.Insert(c.Request.Context(), book)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.logger.Info("story generated",
		zap.String("story_id", record.ID.String()),
		zap.String("strategy", strategy),
		zap.Int("pages", len(book.StoryBook)),
	)
	c.JSON(http.StatusOK, record)
}

// illustrate runs the illustration pipeline over a caller-supplied
// story document and returns the enriched document.
func (h *StorybookHandler) illustrate(c *gin.Context) {
	var book domain.StoryBook
	if err := c.ShouldBindJSON(&book); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    ErrCodeBadRequest,
			Message: fmt.Sprintf("invalid story book: %v", err),
		})
		return
	}
	if err := domain.ValidateStoryBook(&book); err != nil {
		handleServiceError(c, err)
		return
	}

	illustrated, err := h.illustrator.Illustrate(c.Request.Context(), &book)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, illustrated)
}

func (h *StorybookHandler) listStories(c *gin.Context) {
	records, err := h.repo.FindAll(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *StorybookHandler) getStory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeBadRequest, Message: "invalid story id"})
		return
	}

	record, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *StorybookHandler) deleteStory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeBadRequest, Message: "invalid story id"})
		return
	}

	if err := h.repo.DeleteByID(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Story deleted successfully"})
}

func (h *StorybookHandler) listSamplePDFs(c *gin.Context) {
	infos, err := h.pdf.ListSamples()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pdfs": infos})
}

func (h *StorybookHandler) getSamplePDFData(c *gin.Context) {
	c.JSON(http.StatusOK, h.pdf.SampleData(c.Param("pdf_id")))
}

func (h *StorybookHandler) getLegacySamplePDFData(c *gin.Context) {
	c.JSON(http.StatusOK, h.pdf.SampleData(pdfbook.DefaultSampleID))
}

// uploadPDF saves the uploaded file and returns its extracted pages.
func (h *StorybookHandler) uploadPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeBadRequest, Message: "missing file upload"})
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeBadRequest, Message: "only PDF files are accepted"})
		return
	}

	name := filepath.Base(file.Filename)
	destination := filepath.Join(h.uploadsDir, name)
	if err := c.SaveUploadedFile(file, destination); err != nil {
		h.logger.Error("failed to save uploaded PDF", zap.String("path", destination), zap.Error(err))
		handleServiceError(c, err)
		return
	}
	pdfUploadsTotal.Inc()

	id := strings.TrimSuffix(name, filepath.Ext(name))
	doc, err := h.pdf.Extract(destination, id)
	if err != nil {
		h.logger.Warn("uploaded PDF could not be extracted, serving mock document",
			zap.String("pdf_id", id),
			zap.Error(err),
		)
		doc = pdfbook.MockDocument(id)
	}
	c.JSON(http.StatusOK, doc)
}
