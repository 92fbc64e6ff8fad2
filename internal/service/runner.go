package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// CommandRunner abstracts the external binaries the pipeline shells out to
// (yt-dlp, whisper) so both stages are testable without the tools installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type shellRunner struct{}

// NewCommandRunner returns the runner used in production.
func NewCommandRunner() CommandRunner {
	return shellRunner{}
}

func (shellRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return stdout.Bytes(), fmt.Errorf("%s: %w: %s", name, err, stderr.String())
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}
