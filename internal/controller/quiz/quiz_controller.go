package quiz

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/LisaMariaKleiner/quizly/internal/dto"
	"github.com/LisaMariaKleiner/quizly/internal/middleware"
	"github.com/LisaMariaKleiner/quizly/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type QuizController struct {
	quizService       service.QuizService
	generationService service.QuizGenerationService
}

func NewQuizController(quizService service.QuizService, generationService service.QuizGenerationService) *QuizController {
	return &QuizController{
		quizService:       quizService,
		generationService: generationService,
	}
}

// ListQuizzes godoc
// @Summary List the caller's quizzes
// @Description All quizzes owned by the authenticated user, fully expanded with questions and options.
// @Tags Quizzes
// @Produce json
// @Success 200 {array} dto.QuizResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Authentication required."})
		return
	}

	quizzes, err := c.quizService.ListQuizzes(userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("ListQuizzes: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to retrieve quizzes", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, quizzes)
}

// CreateQuiz godoc
// @Summary Create a quiz from a YouTube URL
// @Description Runs the full pipeline synchronously: download audio, transcribe, generate questions, persist. Expect this call to take a while.
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param body body dto.QuizCreateRequest true "YouTube video URL"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid or non-YouTube URL"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "Pipeline failure"
// @Router /quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Authentication required."})
		return
	}

	var req dto.QuizCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	log.Info().Uint("userID", userID).Str("url", req.URL).Msg("Quiz creation requested")

	quiz, err := c.generationService.CreateFromURL(ctx.Request.Context(), userID, req.URL)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: ve.Message, Details: []string{ve.Error()}})
			return
		}
		log.Error().Err(err).Str("url", req.URL).Msg("CreateQuiz: pipeline error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create quiz: " + err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, quiz)
}

// GetQuiz godoc
// @Summary Get a single quiz
// @Tags Quizzes
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid quiz ID"
// @Failure 403 {object} dto.ErrorResponse "Quiz belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Router /quizzes/{quiz_id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	userID, quizID, ok := c.idsFromRequest(ctx)
	if !ok {
		return
	}

	quiz, err := c.quizService.GetQuiz(userID, quizID)
	if err != nil {
		c.writeQuizError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, quiz)
}

// UpdateQuiz godoc
// @Summary Partially update a quiz
// @Description Only title and description are mutable; everything else is fixed at creation.
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param body body dto.QuizUpdateRequest true "Fields to update"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /quizzes/{quiz_id} [patch]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	userID, quizID, ok := c.idsFromRequest(ctx)
	if !ok {
		return
	}

	var req dto.QuizUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	quiz, err := c.quizService.UpdateQuiz(userID, quizID, req)
	if err != nil {
		c.writeQuizError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, quiz)
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Description Removes the quiz and all of its questions and answers.
// @Tags Quizzes
// @Param quiz_id path int true "Quiz ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /quizzes/{quiz_id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	userID, quizID, ok := c.idsFromRequest(ctx)
	if !ok {
		return
	}

	if err := c.quizService.DeleteQuiz(userID, quizID); err != nil {
		c.writeQuizError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *QuizController) idsFromRequest(ctx *gin.Context) (userID uint, quizID uint, ok bool) {
	userID, authed := middleware.UserID(ctx)
	if !authed {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Authentication required."})
		return 0, 0, false
	}
	id, err := strconv.ParseUint(ctx.Param("quiz_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid quiz ID format"})
		return 0, 0, false
	}
	return userID, uint(id), true
}

// writeQuizError maps service errors to the not-found vs forbidden vs
// validation distinction.
func (c *QuizController) writeQuizError(ctx *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Quiz not found."})
	case errors.Is(err, service.ErrQuizForbidden):
		ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "Access denied. This quiz belongs to another user."})
	case errors.As(err, &ve):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: ve.Message, Details: []string{ve.Error()}})
	default:
		log.Error().Err(err).Msg("Quiz operation failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "An error occurred", Details: []string{err.Error()}})
	}
}
