package service

import (
	"errors"
	"strings"

	"github.com/LisaMariaKleiner/quizly/internal/dto"
	"github.com/LisaMariaKleiner/quizly/internal/event"
	"github.com/LisaMariaKleiner/quizly/internal/model"
	"github.com/LisaMariaKleiner/quizly/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// QuizService covers everything after generation: listing, reading, partial
// updates and cascade deletes, always scoped to the owning user.
type QuizService interface {
	ListQuizzes(userID uint) ([]dto.QuizResponse, error)
	GetQuiz(userID, quizID uint) (*dto.QuizResponse, error)
	UpdateQuiz(userID, quizID uint, req dto.QuizUpdateRequest) (*dto.QuizResponse, error)
	DeleteQuiz(userID, quizID uint) error
}

type quizService struct {
	quizRepo  repository.QuizRepository
	publisher event.Publisher
}

func NewQuizService(quizRepo repository.QuizRepository, publisher event.Publisher) QuizService {
	return &quizService{quizRepo: quizRepo, publisher: publisher}
}

func (s *quizService) ListQuizzes(userID uint) ([]dto.QuizResponse, error) {
	quizzes, err := s.quizRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		resp = append(resp, *quizToResponse(&quizzes[i]))
	}
	return resp, nil
}

func (s *quizService) GetQuiz(userID, quizID uint) (*dto.QuizResponse, error) {
	quiz, err := s.findOwned(userID, quizID)
	if err != nil {
		return nil, err
	}
	return quizToResponse(quiz), nil
}

func (s *quizService) UpdateQuiz(userID, quizID uint, req dto.QuizUpdateRequest) (*dto.QuizResponse, error) {
	// Ownership check first, on the bare row; title and description are the
	// only mutable fields.
	quiz, err := s.quizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.UserID != userID {
		return nil, ErrQuizForbidden
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, &ValidationError{Field: "title", Message: "title must not be empty"}
		}
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = truncateRunes(*req.Description, maxDescriptionLen)
	}

	if err := s.quizRepo.Update(quiz); err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Msg("Failed to update quiz")
		return nil, err
	}

	updated, err := s.quizRepo.FindByIDWithDetails(quizID)
	if err != nil {
		return nil, err
	}
	return quizToResponse(updated), nil
}

func (s *quizService) DeleteQuiz(userID, quizID uint) error {
	quiz, err := s.quizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return err
	}
	if quiz.UserID != userID {
		return ErrQuizForbidden
	}

	if err := s.quizRepo.DeleteCascade(quizID); err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Msg("Failed to delete quiz")
		return err
	}

	log.Info().Uint("quizID", quizID).Uint("userID", userID).Msg("Quiz deleted")

	if err := s.publisher.Publish(event.QuizDeleted, event.QuizEvent{QuizID: quizID, UserID: userID}); err != nil {
		log.Warn().Err(err).Uint("quizID", quizID).Msg("Failed to publish quiz.deleted event")
	}
	return nil
}

func (s *quizService) findOwned(userID, quizID uint) (*model.Quiz, error) {
	quiz, err := s.quizRepo.FindByIDWithDetails(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.UserID != userID {
		return nil, ErrQuizForbidden
	}
	return quiz, nil
}

// quizToResponse flattens the persisted hierarchy into the public shape:
// options as ordered strings, answer as the correct option's text or null.
func quizToResponse(quiz *model.Quiz) *dto.QuizResponse {
	var resp dto.QuizResponse
	if err := copier.Copy(&resp, quiz); err != nil {
		log.Error().Err(err).Uint("quizID", quiz.ID).Msg("Failed to map quiz to response")
	}
	resp.VideoURL = quiz.YoutubeURL
	resp.Questions = make([]dto.QuestionResponse, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		qResp := dto.QuestionResponse{
			ID:              question.ID,
			QuestionTitle:   question.QuestionText,
			QuestionOptions: make([]string, 0, len(question.Answers)),
			CreatedAt:       question.CreatedAt,
			UpdatedAt:       question.UpdatedAt,
		}
		for _, answer := range question.Answers {
			qResp.QuestionOptions = append(qResp.QuestionOptions, answer.AnswerText)
			if answer.IsCorrect && qResp.Answer == nil {
				text := answer.AnswerText
				qResp.Answer = &text
			}
		}
		resp.Questions = append(resp.Questions, qResp)
	}
	return &resp
}
