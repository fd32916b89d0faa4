package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"dokureader/internal/modules/convert/domain"
	convertout "dokureader/internal/modules/convert/port/out"
)

// Orchestrator tries backends in priority order. Sources are consulted in the
// order given, and each source keeps the order of its own backends.
type Orchestrator struct {
	logger  *slog.Logger
	sources []convertout.Source
}

func NewOrchestrator(logger *slog.Logger, sources ...convertout.Source) *Orchestrator {
	return &Orchestrator{logger: logger, sources: sources}
}

// NewRun resolves the backend list once. A failing source is logged and
// contributes no backends.
func (o *Orchestrator) NewRun(ctx context.Context) *Run {
	var backends []convertout.Backend
	for _, source := range o.sources {
		list, err := source.Backends(ctx)
		if err != nil {
			o.logger.Warn("backend source unavailable", "error", err)
			continue
		}
		backends = append(backends, list...)
	}
	return &Run{logger: o.logger, backends: backends, handles: map[string]handle{}}
}

type handle struct {
	conv convertout.Converter
	err  error
}

// Run holds the converters opened during one export. Availability is probed
// once per backend and run, on first need.
type Run struct {
	logger   *slog.Logger
	backends []convertout.Backend
	handles  map[string]handle
	opened   []convertout.Converter
}

func (r *Run) Backends() []string {
	names := make([]string, 0, len(r.backends))
	for _, b := range r.backends {
		names = append(names, b.Name())
	}
	return names
}

// ConvertOne never returns an error: every failure ends up in the outcome.
func (r *Run) ConvertOne(ctx context.Context, doc domain.Document) domain.Outcome {
	kind := domain.Classify(doc.Path)
	logger := r.logger.With("document", doc.Path, "kind", kind.String())
	if kind == domain.KindUnsupported {
		out := domain.Skipped(doc, kind, domain.UnsupportedReason(doc.Path))
		logger.Warn("document skipped", "reason", out.Reason)
		return out
	}

	var (
		unavailable []string
		lastErr     error
	)
	for _, backend := range r.backends {
		if !backend.Supports(kind) {
			continue
		}
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		conv, err := r.acquire(ctx, backend)
		if err != nil {
			logger.Debug("backend unavailable", "backend", backend.Name(), "error", err)
			unavailable = append(unavailable, err.Error())
			continue
		}
		pdf, err := conv.Convert(ctx, doc.Path)
		if err != nil {
			if errors.Is(err, domain.ErrToolUnavailable) {
				logger.Debug("backend declined document", "backend", backend.Name(), "error", err)
				unavailable = append(unavailable, err.Error())
				continue
			}
			logger.Debug("conversion attempt failed", "backend", backend.Name(), "error", err)
			lastErr = err
			continue
		}
		logger.Debug("conversion attempt succeeded", "backend", backend.Name(), "bytes", len(pdf))
		return domain.Succeeded(doc, kind, backend.Name(), pdf)
	}

	out := domain.Skipped(doc, kind, skipReason(lastErr, unavailable))
	logger.Warn("document skipped", "reason", out.Reason)
	return out
}

func skipReason(lastErr error, unavailable []string) string {
	if lastErr != nil {
		return lastErr.Error()
	}
	if len(unavailable) == 0 {
		return "no converter available"
	}
	return fmt.Sprintf("no converter available: %s", strings.Join(unavailable, "; "))
}

func (r *Run) acquire(ctx context.Context, backend convertout.Backend) (convertout.Converter, error) {
	if h, ok := r.handles[backend.Name()]; ok {
		return h.conv, h.err
	}
	conv, err := backend.Open(ctx)
	if err != nil && ctx.Err() != nil {
		// Cancellation says nothing about availability.
		return nil, err
	}
	r.handles[backend.Name()] = handle{conv: conv, err: err}
	if err == nil {
		r.opened = append(r.opened, conv)
	}
	return conv, err
}

// Close releases every converter opened by the run, newest first.
func (r *Run) Close() error {
	var errs []error
	for i := len(r.opened) - 1; i >= 0; i-- {
		if err := r.opened[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.opened = nil
	r.handles = map[string]handle{}
	return errors.Join(errs...)
}
