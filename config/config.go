package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Redis        Redis
	Rabbit       Rabbit
	JWT          JWT
	Pipeline     Pipeline
	GeminiApiKey string
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Rabbit struct {
	URL      string
	Exchange string
}

type JWT struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Pipeline holds the knobs for the quiz generation pipeline: the external
// binaries, the fixed transcription language and the timeouts wrapped around
// the two calls that leave the process.
type Pipeline struct {
	YtDlpPath       string
	WhisperPath     string
	WhisperModel    string
	Language        string
	AcquireTimeout  time.Duration
	GenerateTimeout time.Duration
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("RABBITMQ_EXCHANGE", "quizly.events")
	viper.SetDefault("JWT_ACCESS_TTL", "15m")
	viper.SetDefault("JWT_REFRESH_TTL", "168h")
	viper.SetDefault("YTDLP_PATH", "yt-dlp")
	viper.SetDefault("WHISPER_PATH", "whisper")
	viper.SetDefault("WHISPER_MODEL", "base")
	viper.SetDefault("TRANSCRIBE_LANGUAGE", "de")
	viper.SetDefault("PIPELINE_ACQUIRE_TIMEOUT", "5m")
	viper.SetDefault("PIPELINE_GENERATE_TIMEOUT", "2m")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")

	config.Rabbit.URL = viper.GetString("RABBITMQ_URL")
	config.Rabbit.Exchange = viper.GetString("RABBITMQ_EXCHANGE")

	config.JWT.Secret = viper.GetString("JWT_SECRET")
	config.JWT.AccessTTL = viper.GetDuration("JWT_ACCESS_TTL")
	config.JWT.RefreshTTL = viper.GetDuration("JWT_REFRESH_TTL")

	config.Pipeline.YtDlpPath = viper.GetString("YTDLP_PATH")
	config.Pipeline.WhisperPath = viper.GetString("WHISPER_PATH")
	config.Pipeline.WhisperModel = viper.GetString("WHISPER_MODEL")
	config.Pipeline.Language = viper.GetString("TRANSCRIBE_LANGUAGE")
	config.Pipeline.AcquireTimeout = viper.GetDuration("PIPELINE_ACQUIRE_TIMEOUT")
	config.Pipeline.GenerateTimeout = viper.GetDuration("PIPELINE_GENERATE_TIMEOUT")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")

	log.Info().Str("port", config.Server.Port).Str("database", config.Database.Name).Msg("Config loaded")
	return &config, nil
}
