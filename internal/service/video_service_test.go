package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LisaMariaKleiner/quizly/config"
)

// fakeRunner substitutes the yt-dlp binary: it drops an mp3 into the
// requested output directory and prints the metadata JSON.
type fakeRunner struct {
	info     map[string]any
	audioErr bool
	runErr   error
	calls    [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.runErr != nil {
		return nil, f.runErr
	}
	dir := filepath.Dir(argValue(args, "--output"))
	if !f.audioErr {
		if err := os.WriteFile(filepath.Join(dir, "Some Video.mp3"), []byte("audio"), 0o644); err != nil {
			return nil, err
		}
	}
	out, err := json.Marshal(f.info)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func argValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func newPipelineConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Pipeline.YtDlpPath = "yt-dlp"
	cfg.Pipeline.WhisperPath = "whisper"
	cfg.Pipeline.WhisperModel = "base"
	cfg.Pipeline.Language = "de"
	return cfg
}

func TestVideoServiceAcquire(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		runner := &fakeRunner{info: map[string]any{
			"title":       "Hauptstädte Europas",
			"description": "Ein Überblick",
			"duration":    312.7,
			"uploader":    "GeoKanal",
		}}
		svc := NewVideoService(newPipelineConfig(), runner)

		info, cleanup, err := svc.Acquire(context.Background(), "https://www.youtube.com/watch?v=abc123")
		require.NoError(t, err)
		defer cleanup()

		assert.Equal(t, "Hauptstädte Europas", info.Title)
		assert.Equal(t, "Ein Überblick", info.Description)
		assert.Equal(t, 312, info.Duration)
		assert.Equal(t, "GeoKanal", info.Uploader)
		assert.True(t, strings.HasSuffix(info.AudioPath, ".mp3"))

		_, statErr := os.Stat(info.AudioPath)
		assert.NoError(t, statErr)

		require.Len(t, runner.calls, 1)
		call := runner.calls[0]
		assert.Equal(t, "yt-dlp", call[0])
		assert.Contains(t, call, "--extract-audio")
		assert.Contains(t, call, "--print-json")
		assert.Equal(t, "mp3", argValue(call[1:], "--audio-format"))
		assert.Equal(t, "192K", argValue(call[1:], "--audio-quality"))
		assert.Equal(t, "bestaudio/best", argValue(call[1:], "--format"))
	})

	t.Run("CleanupRemovesWorkDir", func(t *testing.T) {
		runner := &fakeRunner{info: map[string]any{"title": "T"}}
		svc := NewVideoService(newPipelineConfig(), runner)

		info, cleanup, err := svc.Acquire(context.Background(), "https://youtu.be/abc123")
		require.NoError(t, err)

		dir := filepath.Dir(info.AudioPath)
		cleanup()
		_, statErr := os.Stat(dir)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("MissingMetadataDefaults", func(t *testing.T) {
		runner := &fakeRunner{info: map[string]any{}}
		svc := NewVideoService(newPipelineConfig(), runner)

		info, cleanup, err := svc.Acquire(context.Background(), "https://youtu.be/abc123")
		require.NoError(t, err)
		defer cleanup()

		assert.Equal(t, "Untitled Video", info.Title)
		assert.Equal(t, "Unknown", info.Uploader)
	})

	t.Run("DescriptionTruncated", func(t *testing.T) {
		runner := &fakeRunner{info: map[string]any{
			"title":       "T",
			"description": strings.Repeat("ö", maxDescriptionLen+50),
		}}
		svc := NewVideoService(newPipelineConfig(), runner)

		info, cleanup, err := svc.Acquire(context.Background(), "https://youtu.be/abc123")
		require.NoError(t, err)
		defer cleanup()

		assert.Len(t, []rune(info.Description), maxDescriptionLen)
	})

	t.Run("DownloadFailure", func(t *testing.T) {
		runner := &fakeRunner{runErr: errors.New("video unavailable")}
		svc := NewVideoService(newPipelineConfig(), runner)

		_, _, err := svc.Acquire(context.Background(), "https://youtu.be/gone")
		var acqErr *AcquisitionError
		require.ErrorAs(t, err, &acqErr)
		assert.Equal(t, "https://youtu.be/gone", acqErr.URL)
	})

	t.Run("NoAudioProduced", func(t *testing.T) {
		runner := &fakeRunner{info: map[string]any{"title": "T"}, audioErr: true}
		svc := NewVideoService(newPipelineConfig(), runner)

		_, _, err := svc.Acquire(context.Background(), "https://youtu.be/abc123")
		var acqErr *AcquisitionError
		require.ErrorAs(t, err, &acqErr)
		assert.Contains(t, err.Error(), "no mp3 audio file")
	})
}
