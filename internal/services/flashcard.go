package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"studywai-backend/internal/metrics"
	"studywai-backend/internal/models"
	"studywai-backend/internal/repository"
)

const (
	DefaultLanguage          = "english"
	DefaultExamplesDelimiter = "|"
)

type FlashcardService struct {
	repo      *repository.FlashcardRepo
	gen       TextGenerator
	metrics   *metrics.Metrics
	delimiter string
}

// NewFlashcardService builds the service. gen may be nil, in which case
// generated fields always fall back to their defaults.
func NewFlashcardService(repo *repository.FlashcardRepo, gen TextGenerator, m *metrics.Metrics, examplesDelimiter string) *FlashcardService {
	if examplesDelimiter == "" {
		examplesDelimiter = DefaultExamplesDelimiter
	}
	return &FlashcardService{repo: repo, gen: gen, metrics: m, delimiter: examplesDelimiter}
}

func (s *FlashcardService) List(ctx context.Context) []*models.Flashcard {
	return s.repo.List(ctx)
}

func (s *FlashcardService) Get(ctx context.Context, id string) (*models.Flashcard, error) {
	card, ok := s.repo.GetByID(ctx, id)
	if !ok {
		return nil, &NotFoundError{Message: "Flashcard not found"}
	}
	return card, nil
}

// Create stores a new card. Missing translations, pronunciation or examples
// are generated; the bool result reports that some of them are placeholders.
func (s *FlashcardService) Create(ctx context.Context, req models.CreateFlashcardRequest) (*models.Flashcard, bool, error) {
	word := strings.TrimSpace(req.Word)
	if word == "" {
		return nil, false, &ValidationError{Fields: map[string]string{"word": "Word is required"}}
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = DefaultLanguage
	}

	card := &models.Flashcard{
		Word:          word,
		Language:      language,
		Translations:  strings.TrimSpace(req.Translations),
		Pronunciation: strings.TrimSpace(req.Pronunciation),
		Examples:      strings.TrimSpace(req.Examples),
	}

	degraded := false
	if card.Translations == "" || card.Pronunciation == "" || card.Examples == "" {
		fields, d := s.generateFields(ctx, word, language)
		// an abandoned request must leave nothing behind
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		degraded = d
		if card.Translations == "" {
			card.Translations = fields["translations"]
		}
		if card.Pronunciation == "" {
			card.Pronunciation = fields["pronunciation"]
		}
		if card.Examples == "" {
			card.Examples = fields["examples"]
		}
	}

	if err := s.repo.Create(ctx, card); err != nil {
		return nil, false, storageError(s.metrics, "create", err)
	}
	return card, degraded, nil
}

func (s *FlashcardService) flashcardSchema(word string) ResponseSchema {
	return ResponseSchema{
		Name: "flashcard",
		Fields: []FieldDefault{
			{Key: "translations", Default: word},
			{Key: "pronunciation", Default: ""},
			{Key: "examples", Default: fmt.Sprintf("Example of %s.", word)},
		},
		ListDelimiter: s.delimiter,
	}
}

// generateFields never fails. Generator errors are logged and answered with
// the schema defaults.
func (s *FlashcardService) generateFields(ctx context.Context, word, language string) (map[string]string, bool) {
	schema := s.flashcardSchema(word)
	if s.gen == nil {
		fields, _ := Normalize("", schema)
		s.metrics.Degraded(schema.Name)
		return fields, true
	}

	start := time.Now()
	raw, err := s.gen.Generate(ctx, buildFlashcardPrompt(word, language, s.delimiter))
	s.metrics.ObserveAI("flashcard", time.Since(start), err)
	if err != nil {
		log.Printf("WARNING: flashcard generation for %q failed, using defaults: %v", word, err)
		raw = ""
	}

	fields, degraded := Normalize(raw, schema)
	if degraded {
		s.metrics.Degraded(schema.Name)
	}
	return fields, degraded
}

func (s *FlashcardService) Update(ctx context.Context, id string, req models.UpdateFlashcardRequest) (*models.Flashcard, error) {
	word := strings.TrimSpace(req.Word)
	if word == "" {
		return nil, &ValidationError{Fields: map[string]string{"word": "Word is required"}}
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = DefaultLanguage
	}

	card := &models.Flashcard{
		ID:            id,
		Word:          word,
		Language:      language,
		Translations:  strings.TrimSpace(req.Translations),
		Pronunciation: strings.TrimSpace(req.Pronunciation),
		Examples:      strings.TrimSpace(req.Examples),
	}
	ok, err := s.repo.Update(ctx, card)
	if err != nil {
		return nil, storageError(s.metrics, "update", err)
	}
	if !ok {
		return nil, &NotFoundError{Message: "Flashcard not found"}
	}
	return card, nil
}

func (s *FlashcardService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return storageError(s.metrics, "delete", err)
	}
	if !ok {
		return &NotFoundError{Message: "Flashcard not found"}
	}
	return nil
}

func buildFlashcardPrompt(word, language, delimiter string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Create a comprehensive flashcard for the word or phrase %q in %s.\n\n", word, language))
	b.WriteString("Include:\n")
	b.WriteString("1. Translations (comma separated)\n")
	b.WriteString("2. Pronunciation guide\n")
	b.WriteString(fmt.Sprintf("3. At least 3 example sentences that show proper usage, separated by '%s'\n\n", delimiter))
	b.WriteString("CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown, no backticks.\n")
	b.WriteString(`{"translations": "string", "pronunciation": "string", "examples": "string"}`)
	b.WriteString("\n")
	return b.String()
}
