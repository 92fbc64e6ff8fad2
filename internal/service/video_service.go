package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/LisaMariaKleiner/quizly/config"
	"github.com/rs/zerolog/log"
)

// maxDescriptionLen is the persisted description budget. Truncation happens
// here, exactly once, before anything downstream sees the metadata.
const maxDescriptionLen = 500

// VideoInfo is the result of acquiring a video: its metadata plus the path
// of the normalized audio file inside the scoped working directory.
type VideoInfo struct {
	Title       string
	Description string
	Duration    int
	Uploader    string
	AudioPath   string
}

// VideoAcquirer downloads the best available audio for a URL into a scoped
// temporary directory. The returned cleanup func removes that directory and
// must be deferred by the caller; on error the directory is already gone.
type VideoAcquirer interface {
	Acquire(ctx context.Context, url string) (*VideoInfo, func(), error)
}

type videoService struct {
	runner CommandRunner
	cfg    *config.Config
}

func NewVideoService(cfg *config.Config, runner CommandRunner) VideoAcquirer {
	return &videoService{runner: runner, cfg: cfg}
}

// ytDlpInfo is the subset of yt-dlp's --print-json output we care about.
type ytDlpInfo struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Uploader    string  `json:"uploader"`
}

func (s *videoService) Acquire(ctx context.Context, url string) (*VideoInfo, func(), error) {
	dir, err := os.MkdirTemp("", "quizly-audio-*")
	if err != nil {
		return nil, nil, &AcquisitionError{URL: url, Err: err}
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Failed to remove audio working directory")
		}
	}

	log.Info().Str("url", url).Msg("Downloading audio")

	args := []string{
		"--quiet", "--no-warnings",
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "192K",
		"--output", filepath.Join(dir, "%(title)s.%(ext)s"),
		"--print-json",
		url,
	}
	out, err := s.runner.Run(ctx, s.cfg.Pipeline.YtDlpPath, args...)
	if err != nil {
		cleanup()
		return nil, nil, &AcquisitionError{URL: url, Err: err}
	}

	var info ytDlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		cleanup()
		return nil, nil, &AcquisitionError{URL: url, Err: err}
	}

	audioPath, err := findAudioFile(dir)
	if err != nil {
		cleanup()
		return nil, nil, &AcquisitionError{URL: url, Err: err}
	}

	title := info.Title
	if title == "" {
		title = "Untitled Video"
	}
	uploader := info.Uploader
	if uploader == "" {
		uploader = "Unknown"
	}

	log.Info().Str("title", title).Str("audio", audioPath).Msg("Audio downloaded")

	return &VideoInfo{
		Title:       title,
		Description: truncateRunes(info.Description, maxDescriptionLen),
		Duration:    int(info.Duration),
		Uploader:    uploader,
		AudioPath:   audioPath,
	}, cleanup, nil
}

// findAudioFile locates the mp3 the postprocessor produced.
func findAudioFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".mp3") {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", errors.New("no mp3 audio file produced")
}

// truncateRunes caps s at n runes, so multi-byte text is never cut mid-character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
