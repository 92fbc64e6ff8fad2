package service

import (
	"context"
	"regexp"

	"github.com/LisaMariaKleiner/quizly/config"
	"github.com/LisaMariaKleiner/quizly/internal/dto"
	"github.com/LisaMariaKleiner/quizly/internal/event"
	"github.com/LisaMariaKleiner/quizly/internal/model"
	"github.com/LisaMariaKleiner/quizly/internal/repository"
	"github.com/rs/zerolog/log"
)

var youtubeURLPattern = regexp.MustCompile(`^https?://(www\.|m\.)?(youtube\.com/(watch\?v=|shorts/|embed/)[A-Za-z0-9_-]+|youtu\.be/[A-Za-z0-9_-]+)`)

// IsYouTubeURL reports whether url has the shape of a YouTube video URL.
func IsYouTubeURL(url string) bool {
	return youtubeURLPattern.MatchString(url)
}

// QuizGenerationService runs one full pipeline per request: acquire audio,
// transcribe it, synthesize questions, persist the quiz. Each stage failure
// is terminal; nothing is retried and nothing is persisted before the final
// stage succeeds.
type QuizGenerationService interface {
	CreateFromURL(ctx context.Context, userID uint, url string) (*dto.QuizResponse, error)
}

type quizGenerationService struct {
	acquirer    VideoAcquirer
	transcriber Transcriber
	synthesizer QuestionSynthesizer
	quizRepo    repository.QuizRepository
	publisher   event.Publisher
	cfg         *config.Config
}

func NewQuizGenerationService(
	acquirer VideoAcquirer,
	transcriber Transcriber,
	synthesizer QuestionSynthesizer,
	quizRepo repository.QuizRepository,
	publisher event.Publisher,
	cfg *config.Config,
) QuizGenerationService {
	return &quizGenerationService{
		acquirer:    acquirer,
		transcriber: transcriber,
		synthesizer: synthesizer,
		quizRepo:    quizRepo,
		publisher:   publisher,
		cfg:         cfg,
	}
}

func (s *quizGenerationService) CreateFromURL(ctx context.Context, userID uint, url string) (*dto.QuizResponse, error) {
	if !IsYouTubeURL(url) {
		return nil, &ValidationError{Field: "url", Message: "not a valid YouTube URL"}
	}

	// Acquisition leaves the process; give it a bounded budget.
	acquireCtx, cancelAcquire := context.WithTimeout(ctx, s.cfg.Pipeline.AcquireTimeout)
	defer cancelAcquire()

	info, cleanup, err := s.acquirer.Acquire(acquireCtx, url)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Pipeline aborted during acquisition")
		return nil, err
	}
	defer cleanup()

	transcript, err := s.transcriber.Transcribe(ctx, info.AudioPath)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Pipeline aborted during transcription")
		return nil, err
	}

	generateCtx, cancelGenerate := context.WithTimeout(ctx, s.cfg.Pipeline.GenerateTimeout)
	defer cancelGenerate()

	questions, err := s.synthesizer.GenerateQuestions(generateCtx, info.Title, info.Description, transcript)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Pipeline aborted during question synthesis")
		return nil, err
	}

	quiz := assembleQuiz(userID, url, info, transcript, questions)
	if err := s.quizRepo.Create(quiz); err != nil {
		log.Error().Err(err).Str("url", url).Msg("Pipeline aborted during persistence")
		return nil, err
	}

	log.Info().Uint("quizID", quiz.ID).Uint("userID", userID).Int("questions", len(quiz.Questions)).Msg("Quiz created")

	if err := s.publisher.Publish(event.QuizCreated, event.QuizEvent{
		QuizID:        quiz.ID,
		UserID:        userID,
		Title:         quiz.Title,
		QuestionCount: len(quiz.Questions),
	}); err != nil {
		log.Warn().Err(err).Uint("quizID", quiz.ID).Msg("Failed to publish quiz.created event")
	}

	return quizToResponse(quiz), nil
}

// assembleQuiz maps the synthesized entries onto the persisted hierarchy.
// Question order is the zero-based position in the sequence received; answer
// order is the option position. An option is flagged correct by exact string
// equality with correct_answer, so a non-matching correct_answer leaves the
// question with no correct option.
func assembleQuiz(userID uint, url string, info *VideoInfo, transcript string, questions []GeneratedQuestion) *model.Quiz {
	quiz := &model.Quiz{
		UserID:      userID,
		Title:       info.Title,
		Description: info.Description,
		YoutubeURL:  url,
		Transcript:  transcript,
		Questions:   make([]model.Question, 0, len(questions)),
	}
	for idx, q := range questions {
		question := model.Question{
			QuestionText: q.Question,
			QuestionType: model.QuestionTypeMultipleChoice,
			Order:        idx,
			Answers:      make([]model.Answer, 0, len(q.Options)),
		}
		for optIdx, option := range q.Options {
			question.Answers = append(question.Answers, model.Answer{
				AnswerText: option,
				IsCorrect:  option == q.CorrectAnswer,
				Order:      optIdx,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}
