package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storybook-server/internal/domain"
	"storybook-server/internal/service"
)

func TestMockGeneratorGenerate(t *testing.T) {
	generator := service.NewMockGenerator(zap.NewNop())

	t.Run("produces a valid book with the requested page count", func(t *testing.T) {
		book := generator.Generate(domain.StoryRequest{
			ShortDescription:  "A story about Mia and her cat",
			Pages:             4,
			Topic:             "space",
			IllustrationStyle: "watercolor",
		})

		require.NoError(t, domain.ValidateStoryBook(book))
		assert.Len(t, book.StoryBook, 4)
		require.Len(t, book.StoryCharacters, 1)
		assert.Equal(t, "Mia", book.StoryCharacters[0].CharacterName)
		assert.Equal(t, "watercolor", book.IllustrationStyle)
	})

	t.Run("is deterministic for the same request", func(t *testing.T) {
		req := domain.StoryRequest{ShortDescription: "Leo the lion", Pages: 3, Topic: "jungle"}
		first := generator.Generate(req)
		second := generator.Generate(req)
		assert.Equal(t, first, second)
	})

	t.Run("reflects the topic theme in the opening", func(t *testing.T) {
		book := generator.Generate(domain.StoryRequest{
			ShortDescription: "Nina explores",
			Pages:            3,
			Topic:            "underwater",
		})

		opening := book.StoryBook[0].StoryText
		assert.Contains(t, opening, "magical journey beneath the ocean waves")
		assert.Contains(t, opening, "Nina")
	})

	t.Run("closes the story on the last page", func(t *testing.T) {
		book := generator.Generate(domain.StoryRequest{ShortDescription: "Tom", Pages: 3})
		assert.Contains(t, book.StoryBook[2].StoryText, "The End!")
		assert.NotContains(t, book.StoryBook[0].StoryText, "The End!")
		assert.NotContains(t, book.StoryBook[1].StoryText, "The End!")
	})

	t.Run("opening wins over closing for a single page", func(t *testing.T) {
		book := generator.Generate(domain.StoryRequest{ShortDescription: "Tom", Pages: 1})
		require.Len(t, book.StoryBook, 1)
		assert.Contains(t, book.StoryBook[0].StoryText, "Once upon a time")
		assert.NotContains(t, book.StoryBook[0].StoryText, "The End!")
	})

	t.Run("localizes only the first page", func(t *testing.T) {
		book := generator.Generate(domain.StoryRequest{
			ShortDescription: "Pablo y sus amigos",
			Pages:            3,
			Language:         "Spanish",
		})

		assert.Contains(t, book.StoryBook[0].StoryText, "Érase una vez")
		assert.Contains(t, book.StoryBook[0].StoryText, "Pablo")
		assert.Contains(t, book.StoryBook[1].StoryText, "journey")
		assert.Contains(t, book.StoryBook[2].StoryText, "The End!")
	})

	t.Run("unsupported language keeps the default opening", func(t *testing.T) {
		book := generator.Generate(domain.StoryRequest{
			ShortDescription: "Kai",
			Pages:            2,
			Language:         "Klingon",
		})
		assert.Contains(t, book.StoryBook[0].StoryText, "Once upon a time")
	})

	t.Run("falls back to the default character name", func(t *testing.T) {
		book := generator.Generate(domain.StoryRequest{
			ShortDescription: "a story about a tiny mouse",
			Pages:            2,
		})
		require.Len(t, book.StoryCharacters, 1)
		assert.Equal(t, "Alex", book.StoryCharacters[0].CharacterName)
	})

	t.Run("strips punctuation from the derived name", func(t *testing.T) {
		book := generator.Generate(domain.StoryRequest{
			ShortDescription: "meet Zoe, the explorer",
			Pages:            2,
		})
		require.Len(t, book.StoryCharacters, 1)
		assert.Equal(t, "Zoe", book.StoryCharacters[0].CharacterName)
	})

	t.Run("marks the title as a sample", func(t *testing.T) {
		book := generator.Generate(domain.StoryRequest{ShortDescription: "Ben", Pages: 2, Topic: "dragon"})
		assert.Contains(t, book.StoryTitle, "(Sample Story)")
		assert.Contains(t, book.StoryTitle, "Ben")
		assert.Contains(t, book.StoryTitle, "Dragon")
	})

	t.Run("prefixes illustration descriptions with the style", func(t *testing.T) {
		book := generator.Generate(domain.StoryRequest{
			ShortDescription:  "Ivy",
			Pages:             2,
			IllustrationStyle: "pixel art",
		})
		for _, page := range book.StoryBook {
			assert.True(t, len(page.IllustrationDescription) > 0)
			assert.Contains(t, page.IllustrationDescription, "pixel art: ")
		}
	})
}
