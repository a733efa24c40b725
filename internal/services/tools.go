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

const chatSystemLine = "You are a helpful language learning assistant for StudyWAI."

var summaryLengths = map[string]bool{"short": true, "medium": true, "long": true}

// ToolsService runs the free-standing AI text tools and records each call
// in the history log.
type ToolsService struct {
	gen     TextGenerator
	history *repository.HistoryRepo
	metrics *metrics.Metrics
}

func NewToolsService(gen TextGenerator, history *repository.HistoryRepo, m *metrics.Metrics) *ToolsService {
	return &ToolsService{gen: gen, history: history, metrics: m}
}

func (s *ToolsService) generate(ctx context.Context, feature, prompt string) (string, error) {
	if s.gen == nil {
		return "", &UpstreamError{Err: fmt.Errorf("text generation is not configured")}
	}
	start := time.Now()
	raw, err := s.gen.Generate(ctx, prompt)
	s.metrics.ObserveAI(feature, time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &UpstreamError{Err: err}
	}
	return raw, nil
}

// record appends to the history log. A failed append never fails the tool call.
func (s *ToolsService) record(ctx context.Context, feature, query, response string) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Append(ctx, feature, query, response); err != nil {
		log.Printf("WARNING: failed to record %s history: %v", feature, err)
		s.metrics.HistoryAppendFailed()
	}
}

func (s *ToolsService) normalize(raw string, schema ResponseSchema) (map[string]string, bool) {
	fields, degraded := Normalize(raw, schema)
	if degraded {
		s.metrics.Degraded(schema.Name)
	}
	return fields, degraded
}

func requireText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ValidationError{Fields: map[string]string{"text": "Text is required"}}
	}
	return text, nil
}

func (s *ToolsService) Translate(ctx context.Context, req models.TranslateRequest) (*models.TranslateResponse, error) {
	text, err := requireText(req.Text)
	if err != nil {
		return nil, err
	}
	target := strings.TrimSpace(req.TargetLang)
	if target == "" {
		target = DefaultLanguage
	}
	source := strings.TrimSpace(req.SourceLang)
	if source == "" || strings.EqualFold(source, "auto") {
		source = s.detectLanguage(ctx, text)
	}

	raw, err := s.generate(ctx, models.FeatureTranslate, buildTranslatePrompt(text, source, target))
	if err != nil {
		return nil, err
	}
	fields, degraded := s.normalize(raw, ResponseSchema{
		Name:   "translate",
		Fields: []FieldDefault{{Key: "translated_text", Default: strings.TrimSpace(raw)}},
	})

	resp := &models.TranslateResponse{
		TranslatedText: fields["translated_text"],
		SourceLang:     source,
		TargetLang:     target,
		Degraded:       degraded,
	}
	s.record(ctx, models.FeatureTranslate, text, resp.TranslatedText)
	return resp, nil
}

// detectLanguage falls back to english when detection fails.
func (s *ToolsService) detectLanguage(ctx context.Context, text string) string {
	raw, err := s.generate(ctx, "detect_language",
		"Detect the language of the following text and respond with only the language name: "+text)
	if err != nil {
		log.Printf("WARNING: language detection failed: %v", err)
		return DefaultLanguage
	}
	lang := strings.ToLower(strings.Trim(strings.TrimSpace(raw), ".\"'"))
	if lang == "" || strings.ContainsAny(lang, "\n{") {
		return DefaultLanguage
	}
	return lang
}

func (s *ToolsService) CheckGrammar(ctx context.Context, req models.GrammarRequest) (*models.GrammarResponse, error) {
	text, err := requireText(req.Text)
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, models.FeatureGrammar, buildGrammarPrompt(text))
	if err != nil {
		return nil, err
	}
	fields, degraded := s.normalize(raw, ResponseSchema{
		Name: "grammar",
		Fields: []FieldDefault{
			{Key: "corrected_text", Default: text},
			{Key: "errors", Default: "Could not analyze text"},
		},
		ListDelimiter: "\n",
	})

	resp := &models.GrammarResponse{
		CorrectedText: fields["corrected_text"],
		Errors:        fields["errors"],
		Degraded:      degraded,
	}
	s.record(ctx, models.FeatureGrammar, text, resp.CorrectedText)
	return resp, nil
}

func (s *ToolsService) Summarize(ctx context.Context, req models.SummarizeRequest) (*models.SummaryResponse, error) {
	text, err := requireText(req.Text)
	if err != nil {
		return nil, err
	}
	length := strings.ToLower(strings.TrimSpace(req.Length))
	if length == "" {
		length = "medium"
	}
	if !summaryLengths[length] {
		return nil, &ValidationError{Fields: map[string]string{"length": "Length must be short, medium or long"}}
	}
	style := strings.TrimSpace(req.Style)
	if style == "" {
		style = "informative"
	}

	raw, err := s.generate(ctx, models.FeatureSummarize, buildSummarizePrompt(text, length, style))
	if err != nil {
		return nil, err
	}
	fields, degraded := s.normalize(raw, ResponseSchema{
		Name:   "summarize",
		Fields: []FieldDefault{{Key: "summary", Default: "Summarization failed"}},
	})

	resp := &models.SummaryResponse{
		Summary:  fields["summary"],
		Length:   length,
		Style:    style,
		Degraded: degraded,
	}
	s.record(ctx, models.FeatureSummarize, text, resp.Summary)
	return resp, nil
}

func (s *ToolsService) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	message, err := requireText(req.Message)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	raw, err := s.generate(ctx, models.FeatureChat, buildChatPrompt(req.Context, req.History, message))
	if err != nil {
		return nil, err
	}
	reply := strings.TrimSpace(raw)
	s.record(ctx, models.FeatureChat, message, reply)
	return &models.ChatResponse{Response: reply}, nil
}

func buildTranslatePrompt(text, source, target string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Translate the following text from %s to %s.\n\n", source, target))
	b.WriteString("Return ONLY a JSON object of the form {\"translated_text\": \"string\"}.\n\n")
	b.WriteString("---TEXT---\n")
	b.WriteString(text)
	b.WriteString("\n---END---\n")
	return b.String()
}

func buildGrammarPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Check the following text for grammar, spelling and punctuation issues.\n\n")
	b.WriteString("Return ONLY a JSON object with these keys:\n")
	b.WriteString("- corrected_text (string): the full text with every issue fixed\n")
	b.WriteString("- errors (string): a short explanation of each issue found, one per line\n\n")
	b.WriteString("---TEXT---\n")
	b.WriteString(text)
	b.WriteString("\n---END---\n")
	return b.String()
}

func buildSummarizePrompt(text, length, style string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Summarize the following text in %s length (%s style).\n\n", length, style))
	b.WriteString("Return ONLY a JSON object of the form {\"summary\": \"string\"}.\n\n")
	b.WriteString("---TEXT---\n")
	b.WriteString(text)
	b.WriteString("\n---END---\n")
	return b.String()
}

// buildChatPrompt renders the conversation as ROLE: content blocks.
func buildChatPrompt(background string, history []models.ChatMessage, message string) string {
	system := chatSystemLine
	if strings.TrimSpace(background) != "" {
		system = fmt.Sprintf("CONTEXT: %s\n\n%s", strings.TrimSpace(background), chatSystemLine)
	}
	blocks := []string{"SYSTEM: " + system}
	for _, m := range history {
		role := strings.ToUpper(strings.TrimSpace(m.Role))
		if role == "" || strings.TrimSpace(m.Content) == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("%s: %s", role, m.Content))
	}
	blocks = append(blocks, "USER: "+message)
	return strings.Join(blocks, "\n\n")
}
