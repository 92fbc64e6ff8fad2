package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/LisaMariaKleiner/quizly/internal/dto"
	"github.com/LisaMariaKleiner/quizly/internal/event"
	"github.com/LisaMariaKleiner/quizly/internal/model"
	"github.com/LisaMariaKleiner/quizly/internal/repository"
)

func seedQuiz(t *testing.T, db *gorm.DB, userID uint) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		UserID:      userID,
		Title:       "Hauptstädte Europas",
		Description: "Ein Überblick",
		YoutubeURL:  "https://www.youtube.com/watch?v=abc123",
		Transcript:  "Berlin ist die Hauptstadt von Deutschland.",
		Questions: []model.Question{{
			QuestionText: "Was ist die Hauptstadt von Deutschland?",
			QuestionType: model.QuestionTypeMultipleChoice,
			Order:        0,
			Answers: []model.Answer{
				{AnswerText: "Hamburg", IsCorrect: false, Order: 0},
				{AnswerText: "Berlin", IsCorrect: true, Order: 1},
				{AnswerText: "Bonn", IsCorrect: false, Order: 2},
				{AnswerText: "Frankfurt", IsCorrect: false, Order: 3},
			},
		}},
	}
	require.NoError(t, repository.NewQuizRepository(db).Create(quiz))
	return quiz
}

func strPtr(s string) *string { return &s }

func TestQuizServiceGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(repository.NewQuizRepository(db), &recordingPublisher{})
	quiz := seedQuiz(t, db, 1)

	t.Run("OwnQuiz", func(t *testing.T) {
		resp, err := svc.GetQuiz(1, quiz.ID)
		require.NoError(t, err)
		assert.Equal(t, quiz.ID, resp.ID)
		assert.Equal(t, "https://www.youtube.com/watch?v=abc123", resp.VideoURL)
		require.Len(t, resp.Questions, 1)
		assert.Equal(t, []string{"Hamburg", "Berlin", "Bonn", "Frankfurt"}, resp.Questions[0].QuestionOptions)
		require.NotNil(t, resp.Questions[0].Answer)
		assert.Equal(t, "Berlin", *resp.Questions[0].Answer)
	})

	t.Run("ForeignQuiz", func(t *testing.T) {
		_, err := svc.GetQuiz(2, quiz.ID)
		assert.ErrorIs(t, err, ErrQuizForbidden)
	})

	t.Run("MissingQuiz", func(t *testing.T) {
		_, err := svc.GetQuiz(1, 9999)
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})
}

func TestQuizServiceList(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(repository.NewQuizRepository(db), &recordingPublisher{})
	seedQuiz(t, db, 1)
	seedQuiz(t, db, 1)
	seedQuiz(t, db, 2)

	t.Run("OnlyOwnQuizzes", func(t *testing.T) {
		quizzes, err := svc.ListQuizzes(1)
		require.NoError(t, err)
		assert.Len(t, quizzes, 2)
	})

	t.Run("EmptyForNewUser", func(t *testing.T) {
		quizzes, err := svc.ListQuizzes(99)
		require.NoError(t, err)
		assert.Empty(t, quizzes)
	})
}

func TestQuizServiceUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(repository.NewQuizRepository(db), &recordingPublisher{})
	quiz := seedQuiz(t, db, 1)

	t.Run("TitleAndDescription", func(t *testing.T) {
		resp, err := svc.UpdateQuiz(1, quiz.ID, dto.QuizUpdateRequest{
			Title:       strPtr("Neuer Titel"),
			Description: strPtr("Neue Beschreibung"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Neuer Titel", resp.Title)
		assert.Equal(t, "Neue Beschreibung", resp.Description)
		// questions survive the update
		require.Len(t, resp.Questions, 1)
	})

	t.Run("PartialTitleOnly", func(t *testing.T) {
		resp, err := svc.UpdateQuiz(1, quiz.ID, dto.QuizUpdateRequest{Title: strPtr("Nur Titel")})
		require.NoError(t, err)
		assert.Equal(t, "Nur Titel", resp.Title)
		assert.Equal(t, "Neue Beschreibung", resp.Description)
	})

	t.Run("EmptyTitleRejected", func(t *testing.T) {
		_, err := svc.UpdateQuiz(1, quiz.ID, dto.QuizUpdateRequest{Title: strPtr("   ")})
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "title", valErr.Field)
	})

	t.Run("LongDescriptionTruncated", func(t *testing.T) {
		resp, err := svc.UpdateQuiz(1, quiz.ID, dto.QuizUpdateRequest{
			Description: strPtr(strings.Repeat("ä", maxDescriptionLen+100)),
		})
		require.NoError(t, err)
		assert.Len(t, []rune(resp.Description), maxDescriptionLen)
	})

	t.Run("ForeignQuiz", func(t *testing.T) {
		_, err := svc.UpdateQuiz(2, quiz.ID, dto.QuizUpdateRequest{Title: strPtr("X")})
		assert.ErrorIs(t, err, ErrQuizForbidden)
	})

	t.Run("MissingQuiz", func(t *testing.T) {
		_, err := svc.UpdateQuiz(1, 9999, dto.QuizUpdateRequest{Title: strPtr("X")})
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})
}

func TestQuizServiceDelete(t *testing.T) {
	db := newTestDB(t)
	publisher := &recordingPublisher{}
	svc := NewQuizService(repository.NewQuizRepository(db), publisher)
	quiz := seedQuiz(t, db, 1)

	t.Run("ForeignQuiz", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteQuiz(2, quiz.ID), ErrQuizForbidden)
	})

	t.Run("CascadeDelete", func(t *testing.T) {
		require.NoError(t, svc.DeleteQuiz(1, quiz.ID))

		var quizCount, questionCount, answerCount int64
		require.NoError(t, db.Model(&model.Quiz{}).Count(&quizCount).Error)
		require.NoError(t, db.Model(&model.Question{}).Count(&questionCount).Error)
		require.NoError(t, db.Model(&model.Answer{}).Count(&answerCount).Error)
		assert.Zero(t, quizCount)
		assert.Zero(t, questionCount)
		assert.Zero(t, answerCount)

		events := publisher.published()
		require.Len(t, events, 1)
		assert.Equal(t, event.QuizDeleted, events[0].eventType)
	})

	t.Run("MissingQuiz", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteQuiz(1, quiz.ID), ErrQuizNotFound)
	})
}
