package service

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storybook-server/internal/domain"
)

const (
	defaultCharacterName = "Alex"
	defaultLanguage      = "English"
	defaultThemePhrase   = "amazing adventure"
)

// themePhrases maps known topics to the theme phrase used throughout
// the sample story.
var themePhrases = map[string]string{
	"space":      "incredible journey through the stars",
	"underwater": "magical journey beneath the ocean waves",
	"jungle":     "wild expedition deep in the jungle",
	"fairy":      "enchanted tale full of fairy magic",
	"dragon":     "thrilling quest alongside a friendly dragon",
	"unicorn":    "dreamlike ride across the unicorn meadows",
	"forest":     "mysterious walk through the whispering forest",
}

// localizedOpenings holds pre-written page-1 openings for supported
// languages. Only the first page is localized; the remaining pages stay
// in the default language.
var localizedOpenings = map[string]string{
	"Spanish":    "Érase una vez un niño valiente llamado %s que soñaba con una gran aventura.",
	"French":     "Il était une fois un enfant courageux nommé %s qui rêvait d'une grande aventure.",
	"German":     "Es war einmal ein mutiges Kind namens %s, das von einem großen Abenteuer träumte.",
	"Italian":    "C'era una volta un bambino coraggioso di nome %s che sognava una grande avventura.",
	"Portuguese": "Era uma vez uma criança corajosa chamada %s que sonhava com uma grande aventura.",
	"Dutch":      "Er was eens een dapper kind genaamd %s dat droomde van een groot avontuur.",
	"Hindi":      "एक समय की बात है, %s नाम का एक बहादुर बच्चा था जो एक बड़े रोमांच का सपना देखता था।",
	"Japanese":   "むかしむかし、%sという勇敢な子どもがいて、大きな冒険を夢見ていました。",
}

// MockGenerator produces a deterministic, schema-valid sample story
// from the request alone. It performs no I/O and never fails; it is the
// terminal fallback tier of the generation pipeline.
type MockGenerator struct {
	logger *zap.Logger
}

func NewMockGenerator(logger *zap.Logger) *MockGenerator {
	return &MockGenerator{logger: logger}
}

// Generate builds a complete sample StoryBook for the request.
func (g *MockGenerator) Generate(req domain.StoryRequest) *domain.StoryBook {
	name := deriveCharacterName(req.ShortDescription)
	theme := themePhrase(req.Topic)
	style := req.IllustrationStyle
	if style == "" {
		style = "storybook illustration"
	}

	character := domain.CharacterDescription{
		CharacterName: name,
		CharacterDescription: fmt.Sprintf(
			"%s, a cheerful young hero of a children's story about %s, drawn in %s style",
			name, theme, style,
		),
	}

	pages := make([]domain.StoryBookPage, 0, req.Pages)
	for i := 1; i <= req.Pages; i++ {
		var text, scene string
		switch {
		case i == 1:
			// Opening wins over closing when both apply (pages == 1).
			text = fmt.Sprintf("Once upon a time, there was a brave child named %s who set off on a %s.", name, theme)
			scene = fmt.Sprintf("%s at the very beginning of a %s", name, theme)
		case i == req.Pages:
			text = fmt.Sprintf("At last, %s came home and understood that kindness and courage are the greatest treasures of all. The End!", name)
			scene = fmt.Sprintf("%s returning home happily after a %s", name, theme)
		default:
			text = fmt.Sprintf("On this part of the journey, %s discovered something wonderful and made a new friend along the way of the %s.", name, theme)
			scene = fmt.Sprintf("%s exploring further into the %s", name, theme)
		}

		if i == 1 {
			if opening, ok := localizedOpenings[req.Language]; ok && req.Language != defaultLanguage {
				text = fmt.Sprintf(opening, name)
			}
		}

		pages = append(pages, domain.StoryBookPage{
			Page:                    i,
			StoryText:               text,
			IllustrationDescription: fmt.Sprintf("%s: %s", style, scene),
			Characters:              []domain.CharacterDescription{character},
		})
	}

	lang := req.Language
	if lang == "" {
		lang = defaultLanguage
	}

	book := &domain.StoryBook{
		StoryTitle: fmt.Sprintf("%s's %s Adventure (Sample Story)", name, cases.Title(language.English).String(req.Topic)),
		StoryDescription: fmt.Sprintf(
			"A demonstration story in %s about a %s, illustrated in %s style. Generated without an AI backend.",
			lang, theme, style,
		),
		IllustrationStyle: style,
		StoryCharacters:   []domain.CharacterDescription{character},
		StoryBook:         pages,
	}

	// Valid by construction; validated anyway as a regression guard.
	if err := domain.ValidateStoryBook(book); err != nil {
		g.logger.Error("mock generator produced an invalid story book", zap.Error(err))
	}
	return book
}

// deriveCharacterName picks the first whitespace-delimited token of the
// description that starts with an uppercase letter and is longer than
// two runes.
func deriveCharacterName(description string) string {
	for _, token := range strings.Fields(description) {
		token = strings.TrimFunc(token, unicode.IsPunct)
		first, _ := utf8.DecodeRuneInString(token)
		if unicode.IsUpper(first) && utf8.RuneCountInString(token) > 2 {
			return token
		}
	}
	return defaultCharacterName
}

func themePhrase(topic string) string {
	if phrase, ok := themePhrases[strings.ToLower(topic)]; ok {
		return phrase
	}
	return defaultThemePhrase
}
