package main

import (
	"context"
	"net/http"
	"time"

	"github.com/LisaMariaKleiner/quizly/config"
	"github.com/LisaMariaKleiner/quizly/database"
	_ "github.com/LisaMariaKleiner/quizly/docs" // Swagger docs - auto-generated
	authctrl "github.com/LisaMariaKleiner/quizly/internal/controller/auth"
	quizctrl "github.com/LisaMariaKleiner/quizly/internal/controller/quiz"
	"github.com/LisaMariaKleiner/quizly/internal/event"
	"github.com/LisaMariaKleiner/quizly/internal/logger"
	"github.com/LisaMariaKleiner/quizly/internal/middleware"
	"github.com/LisaMariaKleiner/quizly/internal/model"
	"github.com/LisaMariaKleiner/quizly/internal/repository"
	"github.com/LisaMariaKleiner/quizly/internal/service"
	"github.com/LisaMariaKleiner/quizly/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Quizly API
// @version 1.0
// @description Turns YouTube videos into multiple-choice quizzes: audio download, transcription and AI question generation, persisted per user.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
			NewRevocationStore,
			NewTokenManager,
			event.NewPublisher,
		),

		// Repositories layer
		fx.Provide(
			repository.NewUserRepository,
			repository.NewQuizRepository,
		),

		// Services layer
		fx.Provide(
			service.NewCommandRunner,
			service.NewVideoService,
			service.NewTranscribeService,
			service.NewGeminiQuizService,
			service.NewQuizGenerationService,
			service.NewQuizService,
			service.NewAuthService,
		),

		// API controllers layer
		fx.Provide(
			NewAuthController,
			quizctrl.NewQuizController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// NewRevocationStore picks the refresh-token revocation backend: Redis when
// configured, process memory otherwise.
func NewRevocationStore(cfg *config.Config) token.RevocationStore {
	if cfg.Redis.Addr == "" {
		log.Warn().Msg("REDIS_ADDR is not set. Using in-memory token revocation store.")
		return token.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return token.NewRedisStore(client)
}

func NewTokenManager(cfg *config.Config, store token.RevocationStore) (*token.Manager, error) {
	return token.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL, store)
}

func NewAuthController(authService service.AuthService, cfg *config.Config) *authctrl.AuthController {
	return authctrl.NewAuthController(
		authService,
		int(cfg.JWT.AccessTTL.Seconds()),
		int(cfg.JWT.RefreshTTL.Seconds()),
	)
}

// RegisterRoutesAndStartServer configures API routes and manages the server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	tokens *token.Manager,
	publisher event.Publisher,
	authCtrl *authctrl.AuthController,
	quizCtrl *quizctrl.QuizController,
) {
	api := router.Group("/api")
	{
		api.POST("/register", authCtrl.Register)
		api.POST("/login", authCtrl.Login)
		api.POST("/token/refresh", authCtrl.Refresh)

		authed := api.Group("", middleware.RequireAuth(tokens))
		{
			authed.POST("/logout", authCtrl.Logout)

			quizzes := authed.Group("/quizzes")
			quizzes.GET("", quizCtrl.ListQuizzes)
			quizzes.POST("", quizCtrl.CreateQuiz)
			quizzes.GET("/:quiz_id", quizCtrl.GetQuiz)
			quizzes.PATCH("/:quiz_id", quizCtrl.UpdateQuiz)
			quizzes.DELETE("/:quiz_id", quizCtrl.DeleteQuiz)
		}
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Quizly API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := server.Shutdown(shutdownCtx)
			// in-flight requests may still publish; close the broker last
			publisher.Close()
			return err
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Quiz{},
		&model.Question{},
		&model.Answer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
