package auth

import (
	"errors"
	"net/http"

	"github.com/LisaMariaKleiner/quizly/internal/dto"
	"github.com/LisaMariaKleiner/quizly/internal/middleware"
	"github.com/LisaMariaKleiner/quizly/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const refreshTokenCookie = "refresh_token"

type AuthController struct {
	authService   service.AuthService
	accessMaxAge  int
	refreshMaxAge int
}

func NewAuthController(authService service.AuthService, accessMaxAge, refreshMaxAge int) *AuthController {
	return &AuthController{
		authService:   authService,
		accessMaxAge:  accessMaxAge,
		refreshMaxAge: refreshMaxAge,
	}
}

// Register godoc
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param registration body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.DetailResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.authService.Register(req); err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: ve.Message, Details: []string{ve.Error()}})
			return
		}
		log.Error().Err(err).Msg("Register: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to register user"})
		return
	}

	ctx.JSON(http.StatusCreated, dto.DetailResponse{Detail: "User created successfully!"})
}

// Login godoc
// @Summary Log in and receive auth cookies
// @Description Sets the access_token and refresh_token cookies (HttpOnly, SameSite=Lax).
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.DetailResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	user, pair, err := c.authService.Login(req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid username or password."})
			return
		}
		log.Error().Err(err).Str("username", req.Username).Msg("Login: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to log in"})
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.AccessTokenCookie, pair.Access, c.accessMaxAge, "/", "", false, true)
	ctx.SetCookie(refreshTokenCookie, pair.Refresh, c.refreshMaxAge, "/", "", false, true)

	ctx.JSON(http.StatusOK, dto.DetailResponse{Detail: "Login successfully!", User: user})
}

// Logout godoc
// @Summary Log out and clear auth cookies
// @Description Revokes the refresh token and deletes both auth cookies.
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.DetailResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	refresh, _ := ctx.Cookie(refreshTokenCookie)
	if err := c.authService.Logout(ctx.Request.Context(), refresh); err != nil {
		log.Warn().Err(err).Msg("Logout: failed to revoke refresh token")
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)
	ctx.SetCookie(refreshTokenCookie, "", -1, "/", "", false, true)

	ctx.JSON(http.StatusOK, dto.DetailResponse{Detail: "Log-Out successfully! All Tokens will be deleted. Refresh token is now invalid."})
}

// Refresh godoc
// @Summary Refresh the access token
// @Description Reads the refresh_token cookie and rotates the access_token cookie.
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.DetailResponse
// @Failure 401 {object} dto.ErrorResponse "Missing, invalid or revoked refresh token"
// @Router /token/refresh [post]
func (c *AuthController) Refresh(ctx *gin.Context) {
	refresh, err := ctx.Cookie(refreshTokenCookie)
	if err != nil || refresh == "" {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Refresh token not found."})
		return
	}

	access, err := c.authService.Refresh(ctx.Request.Context(), refresh)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Refresh token is invalid or expired."})
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.AccessTokenCookie, access, c.accessMaxAge, "/", "", false, true)

	ctx.JSON(http.StatusOK, dto.DetailResponse{Detail: "Token refreshed"})
}
