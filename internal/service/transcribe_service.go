package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/LisaMariaKleiner/quizly/config"
	"github.com/rs/zerolog/log"
)

// Transcriber turns an audio file into a plain-text transcript. The spoken
// language is fixed per deployment, never inferred from the video.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type transcribeService struct {
	runner CommandRunner
	cfg    *config.Config
}

func NewTranscribeService(cfg *config.Config, runner CommandRunner) Transcriber {
	return &transcribeService{runner: runner, cfg: cfg}
}

// Transcribe shells out to the whisper CLI, which writes the transcript as a
// .txt file next to the audio. Whisper loads its model per invocation, so
// concurrent pipeline runs do not share any state here.
func (s *transcribeService) Transcribe(ctx context.Context, audioPath string) (string, error) {
	log.Info().Str("audio", audioPath).Str("language", s.cfg.Pipeline.Language).Msg("Transcribing audio")

	args := []string{
		audioPath,
		"--model", s.cfg.Pipeline.WhisperModel,
		"--language", s.cfg.Pipeline.Language,
		"--output_format", "txt",
		"--output_dir", filepath.Dir(audioPath),
		"--fp16", "False",
	}
	if _, err := s.runner.Run(ctx, s.cfg.Pipeline.WhisperPath, args...); err != nil {
		return "", &TranscriptionError{AudioPath: audioPath, Err: err}
	}

	transcriptPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".txt"
	raw, err := os.ReadFile(transcriptPath)
	if err != nil {
		return "", &TranscriptionError{AudioPath: audioPath, Err: err}
	}

	transcript := strings.TrimSpace(string(raw))
	if transcript == "" {
		return "", &TranscriptionError{AudioPath: audioPath, Err: errors.New("transcription returned empty result")}
	}

	log.Info().Int("chars", len(transcript)).Msg("Transcription completed")
	return transcript, nil
}
