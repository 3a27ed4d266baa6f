// Package gitbranch resolves the run identifier from the current git branch.
package gitbranch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// ErrEmptyBranch is returned when git prints nothing for the branch.
var ErrEmptyBranch = errors.New("empty branch name")

// Runner executes a command in dir and returns its stdout.
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec.
func ExecRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Detect returns the abbreviated HEAD ref of the repository at root.
// A non-empty override short-circuits the git call.
func Detect(ctx context.Context, root, override string, run Runner, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if override != "" {
		logger.Debug("Using branch override", zap.String("branch", override))
		return override, nil
	}
	if run == nil {
		run = ExecRunner
	}

	logger.Debug("Detecting Git branch", zap.String("root", root))
	out, err := run(ctx, root, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to determine git branch: %w", err)
	}
	branch := strings.TrimSpace(string(out))
	if branch == "" {
		return "", fmt.Errorf("failed to determine git branch: %w", ErrEmptyBranch)
	}
	logger.Debug("Current branch", zap.String("branch", branch))
	return branch, nil
}
