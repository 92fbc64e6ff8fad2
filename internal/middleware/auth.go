package middleware

import (
	"net/http"
	"strings"

	"github.com/LisaMariaKleiner/quizly/internal/dto"
	"github.com/LisaMariaKleiner/quizly/pkg/token"
	"github.com/gin-gonic/gin"
)

// AccessTokenCookie is the cookie the access token travels in when no
// Authorization header is sent.
const AccessTokenCookie = "access_token"

const userIDKey = "userID"

// RequireAuth authenticates the request from a bearer Authorization header
// first, falling back to the access_token cookie, and stores the user id in
// the gin context.
func RequireAuth(tokens *token.Manager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := bearerToken(ctx)
		if tokenString == "" {
			tokenString, _ = ctx.Cookie(AccessTokenCookie)
		}
		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Authentication credentials were not provided."})
			return
		}

		claims, err := tokens.ValidateAccess(tokenString)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Access token is invalid or expired."})
			return
		}

		ctx.Set(userIDKey, claims.UserID)
		ctx.Next()
	}
}

// UserID returns the authenticated user's id stored by RequireAuth.
func UserID(ctx *gin.Context) (uint, bool) {
	val, ok := ctx.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := val.(uint)
	return id, ok
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
