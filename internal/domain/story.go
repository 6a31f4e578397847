package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StoryRequest carries the caller-supplied parameters for one story.
// Immutable once received; APIKey is never persisted.
type StoryRequest struct {
	ShortDescription  string `json:"short_description" binding:"required"`
	Pages             int    `json:"pages" binding:"required,gte=1"`
	Age               string `json:"age"`
	Topic             string `json:"topic"`
	Language          string `json:"language"`
	IllustrationStyle string `json:"illustration_style"`
	APIKey            string `json:"api_key,omitempty"`
}

// CharacterDescription is one member of a story's cast. The image path
// stays empty until the illustration pipeline fills it in.
type CharacterDescription struct {
	CharacterName        string `json:"character_name"`
	CharacterDescription string `json:"character_description"`
	CharacterImagePath   string `json:"character_image_path"`
}

// StoryBookPage is a single page of the generated document.
type StoryBookPage struct {
	Page                    int                    `json:"page"`
	StoryText               string                 `json:"story_text"`
	IllustrationDescription string                 `json:"illustration_description"`
	Characters              []CharacterDescription `json:"characters"`
	IllustrationPath        string                 `json:"illustration_path"`
	IllustrationBase64      string                 `json:"illustration_base64"`
}

// StoryBook is the canonical generated document.
type StoryBook struct {
	StoryTitle        string                 `json:"story_title"`
	StoryDescription  string                 `json:"story_description"`
	IllustrationStyle string                 `json:"illustration_style"`
	StoryCharacters   []CharacterDescription `json:"story_characters"`
	StoryBook         []StoryBookPage        `json:"story_book"`
}

// SchemaValidationError reports the first field of a candidate document
// that does not conform to the StoryBook shape.
type SchemaValidationError struct {
	Field    string
	Expected string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("story book schema violation: field %q: expected %s", e.Field, e.Expected)
}

// Wire-side shadows of the document types. Pointer fields let us tell
// "absent" apart from "zero value" during validation.
type storyBookWire struct {
	StoryTitle        *string         `json:"story_title"`
	StoryDescription  *string         `json:"story_description"`
	IllustrationStyle *string         `json:"illustration_style"`
	StoryCharacters   json.RawMessage `json:"story_characters"`
	StoryBook         json.RawMessage `json:"story_book"`
}

type characterWire struct {
	CharacterName        *string `json:"character_name"`
	CharacterDescription *string `json:"character_description"`
	CharacterImagePath   string  `json:"character_image_path"`
}

type pageWire struct {
	Page                    *int            `json:"page"`
	StoryText               *string         `json:"story_text"`
	IllustrationDescription *string         `json:"illustration_description"`
	Characters              json.RawMessage `json:"characters"`
	IllustrationPath        string          `json:"illustration_path"`
	IllustrationBase64      string          `json:"illustration_base64"`
}

// ParseStoryBook deserializes raw structured data into a StoryBook,
// failing with *SchemaValidationError on any missing required field or
// type mismatch. Unknown fields are ignored.
func ParseStoryBook(data []byte) (*StoryBook, error) {
	var wire storyBookWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, schemaErrorFromJSON(err, "story_book document", "object")
	}

	if wire.StoryTitle == nil {
		return nil, &SchemaValidationError{Field: "story_title", Expected: "string"}
	}
	if wire.StoryDescription == nil {
		return nil, &SchemaValidationError{Field: "story_description", Expected: "string"}
	}
	if wire.IllustrationStyle == nil {
		return nil, &SchemaValidationError{Field: "illustration_style", Expected: "string"}
	}
	if len(wire.StoryCharacters) == 0 {
		return nil, &SchemaValidationError{Field: "story_characters", Expected: "array of characters"}
	}
	if len(wire.StoryBook) == 0 {
		return nil, &SchemaValidationError{Field: "story_book", Expected: "array of pages"}
	}

	characters, err := parseCharacters("story_characters", wire.StoryCharacters)
	if err != nil {
		return nil, err
	}

	var pagesWire []pageWire
	if err := json.Unmarshal(wire.StoryBook, &pagesWire); err != nil {
		return nil, schemaErrorFromJSON(err, "story_book", "array of pages")
	}

	pages := make([]StoryBookPage, 0, len(pagesWire))
	for i, pw := range pagesWire {
		field := fmt.Sprintf("story_book[%d]", i)
		if pw.Page == nil {
			return nil, &SchemaValidationError{Field: field + ".page", Expected: "integer"}
		}
		if pw.StoryText == nil {
			return nil, &SchemaValidationError{Field: field + ".story_text", Expected: "string"}
		}
		if pw.IllustrationDescription == nil {
			return nil, &SchemaValidationError{Field: field + ".illustration_description", Expected: "string"}
		}
		pageCharacters := []CharacterDescription{}
		if len(pw.Characters) > 0 && string(pw.Characters) != "null" {
			pageCharacters, err = parseCharacters(field+".characters", pw.Characters)
			if err != nil {
				return nil, err
			}
		}
		pages = append(pages, StoryBookPage{
			Page:                    *pw.Page,
			StoryText:               *pw.StoryText,
			IllustrationDescription: *pw.IllustrationDescription,
			Characters:              pageCharacters,
			IllustrationPath:        pw.IllustrationPath,
			IllustrationBase64:      pw.IllustrationBase64,
		})
	}

	book := &StoryBook{
		StoryTitle:        *wire.StoryTitle,
		StoryDescription:  *wire.StoryDescription,
		IllustrationStyle: *wire.IllustrationStyle,
		StoryCharacters:   characters,
		StoryBook:         pages,
	}

	if err := ValidateStoryBook(book); err != nil {
		return nil, err
	}
	return book, nil
}

// ValidateStoryBook checks the structural invariants of an already
// decoded document, most importantly contiguous 1-based page numbering.
func ValidateStoryBook(book *StoryBook) error {
	if book == nil {
		return &SchemaValidationError{Field: "story_book document", Expected: "object"}
	}
	if len(book.StoryBook) == 0 {
		return &SchemaValidationError{Field: "story_book", Expected: "non-empty array of pages"}
	}
	for i, page := range book.StoryBook {
		if page.Page != i+1 {
			return &SchemaValidationError{
				Field:    fmt.Sprintf("story_book[%d].page", i),
				Expected: fmt.Sprintf("sequence number %d", i+1),
			}
		}
	}
	return nil
}

func parseCharacters(field string, raw json.RawMessage) ([]CharacterDescription, error) {
	var wires []characterWire
	if err := json.Unmarshal(raw, &wires); err != nil {
		return nil, schemaErrorFromJSON(err, field, "array of characters")
	}
	characters := make([]CharacterDescription, 0, len(wires))
	for i, cw := range wires {
		if cw.CharacterName == nil {
			return nil, &SchemaValidationError{Field: fmt.Sprintf("%s[%d].character_name", field, i), Expected: "string"}
		}
		if cw.CharacterDescription == nil {
			return nil, &SchemaValidationError{Field: fmt.Sprintf("%s[%d].character_description", field, i), Expected: "string"}
		}
		characters = append(characters, CharacterDescription{
			CharacterName:        *cw.CharacterName,
			CharacterDescription: *cw.CharacterDescription,
			CharacterImagePath:   cw.CharacterImagePath,
		})
	}
	return characters, nil
}

// schemaErrorFromJSON converts encoding/json decode failures into the
// typed schema error, preserving the offending field when known.
func schemaErrorFromJSON(err error, fallbackField, fallbackExpected string) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = fallbackField
		}
		return &SchemaValidationError{Field: field, Expected: typeErr.Type.String()}
	}
	return &SchemaValidationError{Field: fallbackField, Expected: fallbackExpected}
}

// formatSchema is the machine-readable shape an external generator must
// emit, rendered into the generation prompt as the format contract.
var formatSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"story_title":        map[string]any{"type": "string"},
		"story_description":  map[string]any{"type": "string"},
		"illustration_style": map[string]any{"type": "string"},
		"story_characters": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"character_name":        map[string]any{"type": "string"},
					"character_description": map[string]any{"type": "string"},
				},
				"required": []string{"character_name", "character_description"},
			},
		},
		"story_book": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"page":                     map[string]any{"type": "integer"},
					"story_text":               map[string]any{"type": "string"},
					"illustration_description": map[string]any{"type": "string"},
					"characters": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"character_name":        map[string]any{"type": "string"},
								"character_description": map[string]any{"type": "string"},
							},
							"required": []string{"character_name", "character_description"},
						},
					},
				},
				"required": []string{"page", "story_text", "illustration_description", "characters"},
			},
		},
	},
	"required": []string{"story_title", "story_description", "illustration_style", "story_characters", "story_book"},
}

// FormatInstructions renders the StoryBook shape as an instruction
// block suitable for embedding in a natural-language prompt.
func FormatInstructions() string {
	schemaJSON, err := json.MarshalIndent(formatSchema, "", "  ")
	if err != nil {
		// The schema is a static literal; marshalling it cannot fail at runtime.
		panic(fmt.Sprintf("marshal format schema: %v", err))
	}

	var b strings.Builder
	b.WriteString("The output must be a single JSON object that conforms to the JSON schema below.\n")
	b.WriteString("Do not wrap the JSON in markdown fences and do not add any text before or after it.\n")
	b.WriteString("Page numbers must start at 1 and increase by 1 for each page.\n\n")
	b.WriteString("```json\n")
	b.Write(schemaJSON)
	b.WriteString("\n```")
	return b.String()
}
