package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dokureader/internal/modules/preview/domain"
	previewout "dokureader/internal/modules/preview/port/out"
	"dokureader/internal/platform/clock"
	apperrors "dokureader/internal/platform/errors"

	"github.com/dustin/go-humanize"
)

type PreviewService struct {
	clock    clock.Clock
	pdf      previewout.PDFReader
	office   previewout.OfficeReader
	images   previewout.ImageInspector
	launcher previewout.Launcher
}

func NewPreviewService(
	clock clock.Clock,
	pdf previewout.PDFReader,
	office previewout.OfficeReader,
	images previewout.ImageInspector,
	launcher previewout.Launcher,
) *PreviewService {
	return &PreviewService{clock: clock, pdf: pdf, office: office, images: images, launcher: launcher}
}

// Preview never fails for a readable file: when a renderer cannot handle it,
// the preview degrades to metadata and records the cause under "error".
func (s *PreviewService) Preview(ctx context.Context, path string) (domain.Preview, error) {
	info, err := stat(path)
	if err != nil {
		return domain.Preview{}, err
	}
	p := domain.Preview{Path: path, Title: filepath.Base(path), Kind: domain.KindOf(path)}

	var renderErr error
	switch p.Kind {
	case domain.KindText:
		renderErr = s.text(&p, info.Size())
	case domain.KindPDF:
		renderErr = s.pdfPage(ctx, &p)
	case domain.KindOffice:
		renderErr = s.paragraphs(ctx, &p)
	case domain.KindImage:
		renderErr = s.image(ctx, &p)
	}
	if renderErr != nil {
		p.Kind, p.Body, p.Truncated = domain.KindOther, "", false
		p.AddMeta("error", renderErr.Error())
	}
	p.AddMeta("size", humanize.IBytes(uint64(info.Size())))
	p.AddMeta("modified", fmt.Sprintf("%s (%s)", info.ModTime().Format(time.DateTime), humanize.RelTime(info.ModTime(), s.clock.Now(), "ago", "from now")))
	return p, nil
}

func (s *PreviewService) Open(ctx context.Context, path string) error {
	if _, err := stat(path); err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	return s.launcher.Open(ctx, abs)
}

func (s *PreviewService) text(p *domain.Preview, size int64) error {
	f, err := os.Open(p.Path)
	if err != nil {
		return fmt.Errorf("open text: %w", err)
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, domain.TextProbeBytes))
	if err != nil {
		return fmt.Errorf("read text: %w", err)
	}
	p.Body, p.Kind, p.Truncated = domain.DecodeText(raw, size > int64(len(raw)))
	return nil
}

func (s *PreviewService) pdfPage(ctx context.Context, p *domain.Preview) error {
	page, err := s.pdf.FirstPage(ctx, p.Path)
	if err != nil {
		return err
	}
	p.Body = strings.TrimSpace(page.Text)
	p.Truncated = page.Pages > 1
	p.AddMeta("pages", strconv.Itoa(page.Pages))
	return nil
}

func (s *PreviewService) paragraphs(ctx context.Context, p *domain.Preview) error {
	paras, err := s.office.Paragraphs(ctx, p.Path, domain.MaxParagraphs+1)
	if err != nil {
		return err
	}
	if len(paras) > domain.MaxParagraphs {
		paras, p.Truncated = paras[:domain.MaxParagraphs], true
	}
	p.Body = strings.Join(paras, "\n\n")
	return nil
}

func (s *PreviewService) image(ctx context.Context, p *domain.Preview) error {
	img, err := s.images.Inspect(ctx, p.Path)
	if err != nil {
		return err
	}
	p.AddMeta("format", img.Format)
	p.AddMeta("dimensions", fmt.Sprintf("%dx%d", img.Width, img.Height))
	if !img.Taken.IsZero() {
		p.AddMeta("taken", img.Taken.Format(time.DateTime))
	}
	return nil
}

func stat(path string) (os.FileInfo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: path is required", apperrors.ErrInvalidInput)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", apperrors.ErrInvalidInput, path)
	}
	return info, nil
}
