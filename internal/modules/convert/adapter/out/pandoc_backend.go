package out

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"dokureader/internal/modules/convert/domain"
	convertout "dokureader/internal/modules/convert/port/out"
)

const pandocName = "pandoc"

type PandocBackend struct {
	timeout  time.Duration
	engine   string
	lookPath lookPathFunc
}

// NewPandocBackend converts through pandoc. engine, when set, is passed as
// --pdf-engine.
func NewPandocBackend(timeout time.Duration, engine string) convertout.Backend {
	return &PandocBackend{timeout: timeout, engine: engine, lookPath: exec.LookPath}
}

func (b *PandocBackend) Name() string { return pandocName }

func (b *PandocBackend) Supports(kind domain.Kind) bool {
	return kind == domain.KindLegacyOffice
}

func (b *PandocBackend) Open(_ context.Context) (convertout.Converter, error) {
	binary, err := findTool(b.lookPath, pandocName, "pandoc")
	if err != nil {
		return nil, err
	}
	return &pandocConverter{binary: binary, engine: b.engine, runner: toolRunner{backend: pandocName, timeout: b.timeout}}, nil
}

type pandocConverter struct {
	selfConverter
	binary string
	engine string
	runner toolRunner
}

func (c *pandocConverter) Convert(ctx context.Context, path string) ([]byte, error) {
	if domain.Extension(path) == ".doc" {
		return nil, fmt.Errorf("%w: pandoc cannot read .doc files", domain.ErrToolUnavailable)
	}
	tmp, err := os.MkdirTemp("", "dokureader-pandoc-*")
	if err != nil {
		return nil, domain.NewConversionError(pandocName, path, fmt.Errorf("create temp dir: %w", err))
	}
	defer os.RemoveAll(tmp)

	out := filepath.Join(tmp, "out.pdf")
	args := []string{path, "-o", out}
	if c.engine != "" {
		args = append(args, "--pdf-engine="+c.engine)
	}
	if err := c.runner.run(ctx, path, c.binary, args...); err != nil {
		return nil, err
	}
	pdf, err := os.ReadFile(out)
	if err != nil {
		return nil, domain.NewConversionError(pandocName, path, fmt.Errorf("no pdf produced: %w", err))
	}
	return pdf, nil
}
