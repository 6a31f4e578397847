// Package pdfbook extracts page-based text content from storybook PDFs
// so they can be rendered in the same paginated UI as generated
// stories. Extraction failures degrade to deterministic mock page data
// rather than failing the caller.
package pdfbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSampleID is the id served by the legacy sample endpoint.
const DefaultSampleID = "sample_storybook"

// PageImage is one embedded image of a PDF page.
type PageImage struct {
	Index  int    `json:"index"`
	Base64 string `json:"base64"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PageContent carries the renderable content of one page.
type PageContent struct {
	Text   string      `json:"text"`
	Images []PageImage `json:"images"`
	Layout string      `json:"layout"`
}

// PageData is one page of an extracted document.
type PageData struct {
	ID      int         `json:"id"`
	Type    string      `json:"type"`
	Content PageContent `json:"content"`
}

// Document is the page-based rendering of a PDF.
type Document struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TotalPages  int        `json:"totalPages"`
	Pages       []PageData `json:"pages"`
}

// Info is listing metadata for one sample PDF.
type Info struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FilePath    string `json:"file_path"`
	DownloadURL string `json:"download_url"`
}

// customTitles maps known sample ids to curated display titles.
var customTitles = map[string]string{
	"sample_storybook":   "Luna's Magical Adventure",
	"space_adventure":    "Maya's Space Journey",
	"ocean_story":        "The Underwater Kingdom",
	"fairy_tale":         "Enchanted Forest Tales",
	"dragon_story":       "Friendship with Dragons",
	"princess_adventure": "The Brave Princess",
}

// mockStoryConfig seeds the fallback document for a sample id.
type mockStoryConfig struct {
	title     string
	character string
	theme     string
	setting   string
}

var mockStories = map[string]mockStoryConfig{
	"sample_storybook": {title: "Luna's Magical Adventure", character: "Luna", theme: "magical forest", setting: "enchanted woodland"},
	"space_adventure":  {title: "Maya's Space Journey", character: "Maya", theme: "space exploration", setting: "distant galaxy"},
	"ocean_story":      {title: "The Underwater Kingdom", character: "Aria", theme: "ocean adventure", setting: "coral reef kingdom"},
}

// Extractor lists sample PDFs and turns PDFs into Documents.
type Extractor struct {
	sampleDir string
	logger    *zap.Logger
}

func NewExtractor(sampleDir string, logger *zap.Logger) *Extractor {
	return &Extractor{sampleDir: sampleDir, logger: logger}
}

// ListSamples returns metadata for every PDF under the sample dir. A
// missing sample dir yields an empty list, not an error.
func (e *Extractor) ListSamples() ([]Info, error) {
	entries, err := os.ReadDir(e.sampleDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("read sample directory: %w", err)
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		infos = append(infos, Info{
			ID:          id,
			Filename:    entry.Name(),
			Title:       CustomTitle(id),
			Description: fmt.Sprintf("Sample storybook: %s", titleFromID(id)),
			FilePath:    filepath.Join(e.sampleDir, entry.Name()),
			DownloadURL: "/static/sample/" + entry.Name(),
		})
	}
	return infos, nil
}

// SampleData returns the extracted document for a sample id, or the
// deterministic mock document when the PDF is absent or unreadable.
func (e *Extractor) SampleData(id string) *Document {
	path := filepath.Join(e.sampleDir, id+".pdf")
	doc, err := e.Extract(path, id)
	if err != nil {
		e.logger.Warn("PDF extraction failed, serving mock document",
			zap.String("pdf_id", id),
			zap.Error(err),
		)
		return MockDocument(id)
	}
	return doc
}

// Extract reads the PDF at path into a page-based document. Embedded
// images are not extracted; pages carry text plus a layout hint.
func (e *Extractor) Extract(path, id string) (*Document, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer file.Close()

	total := reader.NumPage()
	pages := make([]PageData, 0, total)
	for num := 1; num <= total; num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}

		text := ""
		if extracted, err := page.GetPlainText(nil); err != nil {
			e.logger.Warn("failed to extract page text", zap.String("pdf_id", id), zap.Int("page", num), zap.Error(err))
		} else {
			text = strings.TrimSpace(extracted)
		}
		if text == "" {
			text = "No text content on this page."
		}

		pages = append(pages, PageData{
			ID:   num,
			Type: "text",
			Content: PageContent{
				Text:   text,
				Images: []PageImage{},
				Layout: DetermineLayout(text, nil),
			},
		})
	}

	return &Document{
		ID:          id,
		Title:       CustomTitle(id),
		Description: fmt.Sprintf("Beautiful storybook with %d pages of adventure and wonder", len(pages)),
		TotalPages:  len(pages),
		Pages:       pages,
	}, nil
}

// DetermineLayout picks a page layout from the available content.
func DetermineLayout(text string, images []PageImage) string {
	if len(images) == 0 {
		return "text-only"
	}
	if len(text) < 50 {
		return "image-only"
	}
	layouts := []string{"image-left", "image-right", "image-top", "image-bottom"}
	return layouts[len(text)%len(layouts)]
}

// CustomTitle returns the curated title for a known sample id, or a
// Title-Cased rendering of the filename otherwise.
func CustomTitle(id string) string {
	if title, ok := customTitles[id]; ok {
		return title
	}
	return cases.Title(language.English).String(titleFromID(id))
}

// MockDocument returns the deterministic six-page fallback for an id.
func MockDocument(id string) *Document {
	cfg, ok := mockStories[id]
	if !ok {
		cfg = mockStoryConfig{
			title:     cases.Title(language.English).String(titleFromID(id)),
			character: "Alex",
			theme:     "adventure",
			setting:   "magical world",
		}
	}

	texts := []string{
		fmt.Sprintf("Once upon a time, in a %s, there lived a brave young explorer named %s who loved %s more than anything.", cfg.setting, cfg.character, cfg.theme),
		fmt.Sprintf("%s discovered amazing wonders that filled their heart with joy and excitement beyond imagination.", cfg.character),
		fmt.Sprintf("During the journey, %s met wonderful friends who shared in the magical adventure.", cfg.character),
		fmt.Sprintf("Together, %s and friends explored the most beautiful places in the %s.", cfg.character, cfg.setting),
		fmt.Sprintf("At the heart of their adventure, %s discovered that friendship and kindness were the greatest treasures of all.", cfg.character),
		fmt.Sprintf("%s returned home with a heart full of wonderful memories and exciting stories to share with everyone.", cfg.character),
	}

	pages := make([]PageData, 0, len(texts))
	for i, text := range texts {
		layout := "image-left"
		if i%2 == 1 {
			layout = "image-right"
		}
		pages = append(pages, PageData{
			ID:   i + 1,
			Type: "text",
			Content: PageContent{
				Text:   text,
				Images: []PageImage{},
				Layout: layout,
			},
		})
	}

	return &Document{
		ID:          id,
		Title:       cfg.title,
		Description: fmt.Sprintf("A wonderful %s story featuring %s", cfg.theme, cfg.character),
		TotalPages:  len(pages),
		Pages:       pages,
	}
}

func titleFromID(id string) string {
	return strings.ReplaceAll(id, "_", " ")
}
