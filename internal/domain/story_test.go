package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-server/internal/domain"
)

func validBookJSON() string {
	return `{
		"story_title": "The Brave Fox",
		"story_description": "A fox learns to be brave.",
		"illustration_style": "watercolor",
		"story_characters": [
			{"character_name": "Felix", "character_description": "A small orange fox"}
		],
		"story_book": [
			{
				"page": 1,
				"story_text": "Felix woke up early.",
				"illustration_description": "watercolor: Felix waking up",
				"characters": [
					{"character_name": "Felix", "character_description": "A small orange fox"}
				]
			},
			{
				"page": 2,
				"story_text": "Felix went outside.",
				"illustration_description": "watercolor: Felix outside",
				"characters": []
			}
		]
	}`
}

func TestParseStoryBook(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		book, err := domain.ParseStoryBook([]byte(validBookJSON()))
		require.NoError(t, err)
		assert.Equal(t, "The Brave Fox", book.StoryTitle)
		assert.Equal(t, "watercolor", book.IllustrationStyle)
		require.Len(t, book.StoryCharacters, 1)
		assert.Equal(t, "Felix", book.StoryCharacters[0].CharacterName)
		require.Len(t, book.StoryBook, 2)
		assert.Equal(t, 1, book.StoryBook[0].Page)
		assert.Equal(t, 2, book.StoryBook[1].Page)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		payload := strings.Replace(validBookJSON(), `"story_title":`, `"extra_field": 42, "story_title":`, 1)
		_, err := domain.ParseStoryBook([]byte(payload))
		assert.NoError(t, err)
	})

	t.Run("missing title", func(t *testing.T) {
		payload := strings.Replace(validBookJSON(), `"story_title": "The Brave Fox",`, "", 1)
		_, err := domain.ParseStoryBook([]byte(payload))
		require.Error(t, err)
		var schemaErr *domain.SchemaValidationError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "story_title", schemaErr.Field)
	})

	t.Run("wrong type for page number", func(t *testing.T) {
		payload := strings.Replace(validBookJSON(), `"page": 1,`, `"page": "one",`, 1)
		_, err := domain.ParseStoryBook([]byte(payload))
		require.Error(t, err)
		var schemaErr *domain.SchemaValidationError
		assert.ErrorAs(t, err, &schemaErr)
	})

	t.Run("missing character description", func(t *testing.T) {
		payload := strings.Replace(validBookJSON(),
			`{"character_name": "Felix", "character_description": "A small orange fox"}
		]`,
			`{"character_name": "Felix"}
		]`, 1)
		_, err := domain.ParseStoryBook([]byte(payload))
		require.Error(t, err)
		var schemaErr *domain.SchemaValidationError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, schemaErr.Field, "character_description")
	})

	t.Run("non-contiguous page numbers", func(t *testing.T) {
		payload := strings.Replace(validBookJSON(), `"page": 2,`, `"page": 5,`, 1)
		_, err := domain.ParseStoryBook([]byte(payload))
		require.Error(t, err)
		var schemaErr *domain.SchemaValidationError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, schemaErr.Field, "story_book[1].page")
	})

	t.Run("not json at all", func(t *testing.T) {
		_, err := domain.ParseStoryBook([]byte("this is not json"))
		require.Error(t, err)
		var schemaErr *domain.SchemaValidationError
		assert.ErrorAs(t, err, &schemaErr)
	})
}

func TestValidateStoryBook(t *testing.T) {
	t.Run("nil book", func(t *testing.T) {
		assert.Error(t, domain.ValidateStoryBook(nil))
	})

	t.Run("empty pages", func(t *testing.T) {
		assert.Error(t, domain.ValidateStoryBook(&domain.StoryBook{StoryTitle: "T"}))
	})

	t.Run("pages numbered from one", func(t *testing.T) {
		book := &domain.StoryBook{
			StoryBook: []domain.StoryBookPage{
				{Page: 1}, {Page: 2}, {Page: 3},
			},
		}
		assert.NoError(t, domain.ValidateStoryBook(book))

		book.StoryBook[2].Page = 4
		assert.Error(t, domain.ValidateStoryBook(book))
	})
}

func TestFormatInstructions(t *testing.T) {
	instructions := domain.FormatInstructions()

	assert.Contains(t, instructions, "```json")
	for _, field := range []string{"story_title", "story_description", "illustration_style", "story_characters", "story_book", "illustration_description"} {
		assert.Contains(t, instructions, field)
	}
	assert.Contains(t, instructions, "Page numbers must start at 1")
}
