package out

import (
	"context"
	"fmt"
	"os"

	"dokureader/internal/modules/convert/domain"
	convertout "dokureader/internal/modules/convert/port/out"
	"dokureader/internal/platform/imagefile"
	"dokureader/internal/platform/pdfrender"
)

const (
	renderName   = "render"
	maxTextBytes = 32 << 20
)

// RenderBackend lays out text files and images in-process.
type RenderBackend struct {
	selfConverter
}

func NewRenderBackend() convertout.Backend {
	return &RenderBackend{}
}

func (b *RenderBackend) Name() string { return renderName }

func (b *RenderBackend) Supports(kind domain.Kind) bool {
	return kind == domain.KindText || kind == domain.KindImage
}

func (b *RenderBackend) Open(_ context.Context) (convertout.Converter, error) {
	return b, nil
}

func (b *RenderBackend) Convert(_ context.Context, path string) ([]byte, error) {
	var (
		pdf []byte
		err error
	)
	switch kind := domain.Classify(path); kind {
	case domain.KindText:
		pdf, err = renderText(path)
	case domain.KindImage:
		pdf, err = renderImage(path)
	default:
		err = fmt.Errorf("cannot render %s documents", kind)
	}
	if err != nil {
		return nil, domain.NewConversionError(renderName, path, err)
	}
	return pdf, nil
}

func renderText(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat text: %w", err)
	}
	if info.Size() > maxTextBytes {
		return nil, fmt.Errorf("text file too large (%d bytes)", info.Size())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return pdfrender.Text(raw)
}

func renderImage(path string) ([]byte, error) {
	img, err := imagefile.Load(path)
	if err != nil {
		return nil, err
	}
	return pdfrender.Image(img)
}
