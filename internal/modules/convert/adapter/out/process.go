package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"dokureader/internal/modules/convert/domain"
)

const maxStderr = 400

// toolRunner runs an external converter under a timeout. A deadline hit is
// reported as domain.ErrTimeout, a non-zero exit with the tail of its output.
type toolRunner struct {
	backend string
	timeout time.Duration
}

func (r toolRunner) run(ctx context.Context, path, name string, args ...string) error {
	return r.runEnv(ctx, path, nil, name, args...)
}

func (r toolRunner) runEnv(ctx context.Context, path string, env []string, name string, args ...string) error {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(cmd.Environ(), env...)
	}
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	hideWindow(cmd)

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return domain.NewConversionError(r.backend, path, ctx.Err())
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return domain.NewConversionError(r.backend, path, fmt.Errorf("%w after %s", domain.ErrTimeout, r.timeout))
	}
	if msg := tail(output.String()); msg != "" {
		err = fmt.Errorf("%s: %w: %s", filepath.Base(name), err, msg)
	} else {
		err = fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return domain.NewConversionError(r.backend, path, err)
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = "..." + s[len(s)-maxStderr:]
	}
	return strings.Join(strings.Fields(s), " ")
}

// lookPathFunc is exec.LookPath, replaceable in tests.
type lookPathFunc func(file string) (string, error)

func findTool(lookPath lookPathFunc, backend string, candidates ...string) (string, error) {
	for _, candidate := range candidates {
		if path, err := lookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s: %s not found on PATH", domain.ErrToolUnavailable, backend, strings.Join(candidates, ", "))
}
