package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dokureader/internal/modules/convert/domain"
	"dokureader/internal/modules/convert/dto"
	convertin "dokureader/internal/modules/convert/port/in"
	"dokureader/internal/modules/convert/service"
	apperrors "dokureader/internal/platform/errors"
)

var ErrNotConverted = errors.New("document could not be converted")

type Interactor struct {
	orchestrator *service.Orchestrator
}

func NewInteractor(orchestrator *service.Orchestrator) convertin.Usecase {
	return &Interactor{orchestrator: orchestrator}
}

func (i *Interactor) BeginRun(ctx context.Context) (convertin.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return runAdapter{run: i.orchestrator.NewRun(ctx)}, nil
}

// ConvertFile converts one document through a dedicated run. The output
// defaults to <stem>.pdf next to the input.
func (i *Interactor) ConvertFile(ctx context.Context, input dto.ConvertFileInput) (dto.ConvertFileOutput, error) {
	if strings.TrimSpace(input.Path) == "" {
		return dto.ConvertFileOutput{}, fmt.Errorf("%w: input path is required", apperrors.ErrInvalidInput)
	}
	src, err := filepath.Abs(input.Path)
	if err != nil {
		return dto.ConvertFileOutput{}, fmt.Errorf("resolve input: %w", err)
	}
	if _, err := os.Stat(src); err != nil {
		return dto.ConvertFileOutput{}, fmt.Errorf("%w: %v", apperrors.ErrNotFound, err)
	}
	dst := input.Output
	if dst == "" {
		dst = strings.TrimSuffix(src, filepath.Ext(src)) + ".pdf"
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return dto.ConvertFileOutput{}, fmt.Errorf("resolve output: %w", err)
	}
	if dst == src {
		return dto.ConvertFileOutput{}, fmt.Errorf("%w: output would overwrite the input", apperrors.ErrConflict)
	}

	run := i.orchestrator.NewRun(ctx)
	defer run.Close()
	outcome := run.ConvertOne(ctx, domain.Document{Path: src})
	if !outcome.OK() {
		return dto.ConvertFileOutput{}, fmt.Errorf("%w: %s", ErrNotConverted, outcome.Reason)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return dto.ConvertFileOutput{}, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(dst, outcome.PDF, 0o644); err != nil {
		return dto.ConvertFileOutput{}, fmt.Errorf("write output: %w", err)
	}
	return dto.ConvertFileOutput{Path: src, Output: dst, Backend: outcome.Backend, Bytes: len(outcome.PDF)}, nil
}

func (i *Interactor) Classify(path string) string {
	return domain.Classify(path).String()
}

func (i *Interactor) Supported(path string) bool {
	return domain.Classify(path) != domain.KindUnsupported
}

func (i *Interactor) SupportedExtensions() []string {
	return domain.SupportedExtensions()
}

type runAdapter struct {
	run *service.Run
}

func (a runAdapter) ConvertOne(ctx context.Context, doc dto.Document) dto.Outcome {
	out := a.run.ConvertOne(ctx, domain.Document{Path: doc.Path, DisplayName: doc.DisplayName})
	return dto.Outcome{
		Path:        out.Document.Path,
		DisplayName: out.Document.Name(),
		Kind:        out.Kind.String(),
		OK:          out.OK(),
		PDF:         out.PDF,
		Reason:      out.Reason,
		Backend:     out.Backend,
	}
}

func (a runAdapter) Close() error {
	return a.run.Close()
}
