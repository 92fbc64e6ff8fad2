package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/LisaMariaKleiner/quizly/config"
	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// maxTranscriptPromptLen caps how much transcript goes into the prompt.
// Hard token-budget policy, not configurable per call.
const maxTranscriptPromptLen = 3000

// maxPreviewLen bounds the diagnostic excerpt attached to parse failures.
const maxPreviewLen = 500

// GeneratedQuestion is the JSON contract the model is instructed to follow.
// The model is an untrusted oracle: nothing here is guaranteed until
// validated.
type GeneratedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// QuestionSynthesizer asks a generative model for multiple-choice questions
// derived from a video transcript.
type QuestionSynthesizer interface {
	GenerateQuestions(ctx context.Context, title, description, transcript string) ([]GeneratedQuestion, error)
}

type geminiQuizService struct {
	model *genai.GenerativeModel
	cfg   *config.Config
}

// NewGeminiQuizService builds the synthesizer. Without an API key the
// service still constructs but every generation call fails fatally; the
// pipeline has no fallback question source.
func NewGeminiQuizService(cfg *config.Config) (QuestionSynthesizer, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Quiz generation will be non-functional.")
		return &geminiQuizService{cfg: cfg}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-2.5-flash")
	return &geminiQuizService{model: model, cfg: cfg}, nil
}

func (s *geminiQuizService) GenerateQuestions(ctx context.Context, title, description, transcript string) ([]GeneratedQuestion, error) {
	if s.model == nil {
		return nil, &GenerationError{Err: errors.New("gemini client not initialized, GEMINI_API_KEY missing")}
	}

	prompt := buildQuizPrompt(title, description, transcript)

	log.Info().Str("title", title).Msg("Generating questions with Gemini")
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error during question generation")
		return nil, &GenerationError{Err: err}
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		log.Warn().Msg("Gemini returned no text content")
		return nil, ErrEmptyResponse
	}

	questions, err := parseGeneratedQuestions(text)
	if err != nil {
		return nil, err
	}

	log.Info().Int("count", len(questions)).Msg("Questions generated")
	return questions, nil
}

// buildQuizPrompt embeds title, description and the capped transcript into
// the generation instruction.
func buildQuizPrompt(title, description, transcript string) string {
	var b strings.Builder
	b.WriteString("Basierend auf folgendem Transkript eines Videos, erstelle 10 Multiple-Choice Quizfragen.\n\n")
	b.WriteString(fmt.Sprintf("Video Titel: %s\n", title))
	b.WriteString(fmt.Sprintf("Video Beschreibung: %s\n\n", description))
	b.WriteString("Transkript:\n")
	b.WriteString(truncateRunes(transcript, maxTranscriptPromptLen))
	b.WriteString("\n\nBitte erstelle 10 Quizfragen im JSON-Format mit folgendem Schema:\n")
	b.WriteString(`[
  {
    "question": "Die Frage?",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correct_answer": "Option A"
  }
]
`)
	b.WriteString("\nWichtig:\n")
	b.WriteString("- Alle Fragen müssen auf dem Transkript basieren\n")
	b.WriteString("- Genau 4 Optionen pro Frage\n")
	b.WriteString("- Die Optionen sollten plausibel sein\n")
	b.WriteString("- Nur JSON zurückgeben, nichts anderes\n")
	return b.String()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

// parseGeneratedQuestions applies the response cleanup protocol, parses the
// JSON array and validates the schema the persistence layer relies on.
// Membership of correct_answer among the options is deliberately not
// enforced: a non-matching correct answer yields a question with no option
// flagged correct.
func parseGeneratedQuestions(raw string) ([]GeneratedQuestion, error) {
	cleaned := stripCodeFence(raw)

	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, &MalformedResponseError{
			Reason:  "invalid JSON",
			Preview: truncateRunes(cleaned, maxPreviewLen),
			Err:     err,
		}
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, &MalformedResponseError{
				Reason: fmt.Sprintf("question %d has empty question text", i),
			}
		}
		if len(q.Options) != 4 {
			return nil, &MalformedResponseError{
				Reason: fmt.Sprintf("question %d has %d options, expected 4", i, len(q.Options)),
			}
		}
	}
	return questions, nil
}

// stripCodeFence removes a single enclosing code fence (```json preferred,
// bare ``` otherwise, first occurrence). Text without fence markers passes
// through unchanged apart from whitespace trimming.
func stripCodeFence(s string) string {
	if i := strings.Index(s, "```json"); i != -1 {
		rest := s[i+len("```json"):]
		if j := strings.Index(rest, "```"); j != -1 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	if i := strings.Index(s, "```"); i != -1 {
		rest := s[i+len("```"):]
		if j := strings.Index(rest, "```"); j != -1 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(s)
}
