package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storybook-server/internal/domain"
	"storybook-server/internal/handler"
	"storybook-server/internal/mocks"
	"storybook-server/internal/pdfbook"
	"storybook-server/internal/repository"
	"storybook-server/internal/service"
)

type handlerFixture struct {
	producer    *mocks.MockStoryProducer
	illustrator *mocks.MockStoryIllustrator
	repo        *mocks.MockStoryRepository
	router      *gin.Engine
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	gin.SetMode(gin.TestMode)

	f := &handlerFixture{
		producer:    mocks.NewMockStoryProducer(t),
		illustrator: mocks.NewMockStoryIllustrator(t),
		repo:        mocks.NewMockStoryRepository(t),
	}

	h := handler.NewStorybookHandler(
		f.producer,
		f.illustrator,
		f.repo,
		pdfbook.NewExtractor(t.TempDir(), zap.NewNop()),
		t.TempDir(),
		zap.NewNop(),
	)

	f.router = gin.New()
	h.RegisterRoutes(f.router)
	return f
}

func (f *handlerFixture) do(method, path string, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func sampleBook() *domain.StoryBook {
	return &domain.StoryBook{
		StoryTitle:        "The Brave Fox",
		StoryDescription:  "A fox learns to be brave.",
		IllustrationStyle: "watercolor",
		StoryCharacters: []domain.CharacterDescription{
			{CharacterName: "Felix", CharacterDescription: "A small orange fox"},
		},
		StoryBook: []domain.StoryBookPage{
			{Page: 1, StoryText: "Felix woke up.", IllustrationDescription: "watercolor: Felix"},
		},
	}
}

func TestGetStories(t *testing.T) {
	t.Run("generates and persists a story", func(t *testing.T) {
		f := newHandlerFixture(t)
		book := sampleBook()
		record := &repository.StoryRecord{
			ID:        uuid.New(),
			Title:     book.StoryTitle,
			Book:      *book,
			CreatedAt: time.Now(),
		}

		f.producer.On("ProduceStory", mock.Anything, mock.MatchedBy(func(req domain.StoryRequest) bool {
			return req.ShortDescription == "A fox story" && req.Pages == 1
		})).Return(book, service.StrategyMock).Once()
		f.repo.On("Insert", mock.Anything, book).Return(record, nil).Once()

		body := []byte(`{"short_description": "A fox story", "pages": 1}`)
		w := f.do(http.MethodPost, "/storybook/get_stories", body)

		require.Equal(t, http.StatusOK, w.Code)
		var got repository.StoryRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, record.ID, got.ID)
		assert.Equal(t, "The Brave Fox", got.Book.StoryTitle)
		f.producer.AssertExpectations(t)
		f.repo.AssertExpectations(t)
	})

	t.Run("rejects a request without pages", func(t *testing.T) {
		f := newHandlerFixture(t)

		w := f.do(http.MethodPost, "/storybook/get_stories", []byte(`{"short_description": "no pages"}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.producer.AssertNotCalled(t, "ProduceStory", mock.Anything, mock.Anything)
	})

	t.Run("reports a storage failure", func(t *testing.T) {
		f := newHandlerFixture(t)
		book := sampleBook()

		f.producer.On("ProduceStory", mock.Anything, mock.Anything).Return(book, service.StrategyMock).Once()
		f.repo.On("Insert", mock.Anything, book).Return(nil, context.DeadlineExceeded).Once()

		w := f.do(http.MethodPost, "/storybook/get_stories", []byte(`{"short_description": "A fox story", "pages": 1}`))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestIllustrate(t *testing.T) {
	t.Run("illustrates a valid book", func(t *testing.T) {
		f := newHandlerFixture(t)
		book := sampleBook()
		illustrated := sampleBook()
		illustrated.StoryBook[0].IllustrationPath = "story_illustrations/pages/page_001.png"

		f.illustrator.On("Illustrate", mock.Anything, book).Return(illustrated, nil).Once()

		body, err := json.Marshal(book)
		require.NoError(t, err)
		w := f.do(http.MethodPost, "/storybook/illustrate", body)

		require.Equal(t, http.StatusOK, w.Code)
		var got domain.StoryBook
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "story_illustrations/pages/page_001.png", got.StoryBook[0].IllustrationPath)
		f.illustrator.AssertExpectations(t)
	})

	t.Run("rejects a book with broken page numbering", func(t *testing.T) {
		f := newHandlerFixture(t)
		book := sampleBook()
		book.StoryBook[0].Page = 7

		body, err := json.Marshal(book)
		require.NoError(t, err)
		w := f.do(http.MethodPost, "/storybook/illustrate", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp handler.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, handler.ErrCodeValidation, resp.Code)
		f.illustrator.AssertNotCalled(t, "Illustrate", mock.Anything, mock.Anything)
	})
}

func TestStoryCRUD(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		f := newHandlerFixture(t)
		records := []repository.StoryRecord{
			{ID: uuid.New(), Title: "One"},
			{ID: uuid.New(), Title: "Two"},
		}
		f.repo.On("FindAll", mock.Anything).Return(records, nil).Once()

		w := f.do(http.MethodGet, "/storybook/stories", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var got []repository.StoryRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("get by id", func(t *testing.T) {
		f := newHandlerFixture(t)
		id := uuid.New()
		f.repo.On("FindByID", mock.Anything, id).Return(&repository.StoryRecord{ID: id, Title: "One"}, nil).Once()

		w := f.do(http.MethodGet, "/storybook/stories/"+id.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("get unknown id", func(t *testing.T) {
		f := newHandlerFixture(t)
		id := uuid.New()
		f.repo.On("FindByID", mock.Anything, id).Return(nil, domain.ErrStoryNotFound).Once()

		w := f.do(http.MethodGet, "/storybook/stories/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var resp handler.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, handler.ErrCodeStoryNotFound, resp.Code)
	})

	t.Run("get with malformed id", func(t *testing.T) {
		f := newHandlerFixture(t)

		w := f.do(http.MethodGet, "/storybook/stories/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("delete", func(t *testing.T) {
		f := newHandlerFixture(t)
		id := uuid.New()
		f.repo.On("DeleteByID", mock.Anything, id).Return(nil).Once()

		w := f.do(http.MethodDelete, "/storybook/stories/"+id.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete unknown id", func(t *testing.T) {
		f := newHandlerFixture(t)
		id := uuid.New()
		f.repo.On("DeleteByID", mock.Anything, id).Return(domain.ErrStoryNotFound).Once()

		w := f.do(http.MethodDelete, "/storybook/stories/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSamplePDFEndpoints(t *testing.T) {
	t.Run("list is empty without sample files", func(t *testing.T) {
		f := newHandlerFixture(t)

		w := f.do(http.MethodGet, "/storybook/sample/pdf-list", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			PDFs []pdfbook.Info `json:"pdfs"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.PDFs)
	})

	t.Run("sample data falls back to the mock document", func(t *testing.T) {
		f := newHandlerFixture(t)

		w := f.do(http.MethodGet, "/storybook/sample/pdf-data/ocean_story", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var doc pdfbook.Document
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "The Underwater Kingdom", doc.Title)
		assert.Equal(t, 6, doc.TotalPages)
	})

	t.Run("legacy route serves the default sample", func(t *testing.T) {
		f := newHandlerFixture(t)

		w := f.do(http.MethodGet, "/storybook/sample/pdf-data", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var doc pdfbook.Document
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, pdfbook.DefaultSampleID, doc.ID)
	})
}

func TestUploadPDF(t *testing.T) {
	t.Run("accepts a pdf and serves extracted or mock pages", func(t *testing.T) {
		f := newHandlerFixture(t)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "bedtime_story.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 not really parseable"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/storybook/upload-pdf", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var doc pdfbook.Document
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "bedtime_story", doc.ID)
		assert.NotZero(t, doc.TotalPages)
	})

	t.Run("rejects a non-pdf upload", func(t *testing.T) {
		f := newHandlerFixture(t)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "story.txt")
		require.NoError(t, err)
		_, err = part.Write([]byte("plain text"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/storybook/upload-pdf", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a request without a file", func(t *testing.T) {
		f := newHandlerFixture(t)

		w := f.do(http.MethodPost, "/storybook/upload-pdf", []byte(`{}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
