package out

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	previewout "dokureader/internal/modules/preview/port/out"
)

type OSExternalLauncher struct {
	goos string
	// start is cmd.Start, replaceable in tests.
	start func(*exec.Cmd) error
}

func NewOSExternalLauncher() previewout.Launcher {
	return &OSExternalLauncher{goos: runtime.GOOS, start: (*exec.Cmd).Start}
}

// Open does not wait for the application to exit.
func (l *OSExternalLauncher) Open(_ context.Context, target string) error {
	name, args, err := launchCommand(l.goos, target)
	if err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	if cmd.Process != nil {
		go func() { _ = cmd.Wait() }()
	}
	return nil
}

func launchCommand(goos, target string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	default:
		return "", nil, fmt.Errorf("opening files is not supported on %s", goos)
	}
}
