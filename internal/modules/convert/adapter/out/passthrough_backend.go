package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"dokureader/internal/modules/convert/domain"
	convertout "dokureader/internal/modules/convert/port/out"
)

const (
	passthroughName = "passthrough"
	headerWindow    = 1024
	trailerWindow   = 2048
)

var (
	errNoHeader  = errors.New("missing %PDF- header")
	errNoTrailer = errors.New("missing %%EOF marker")
)

type PassthroughBackend struct {
	selfConverter
}

func NewPassthroughBackend() convertout.Backend {
	return &PassthroughBackend{}
}

func (b *PassthroughBackend) Name() string { return passthroughName }

func (b *PassthroughBackend) Supports(kind domain.Kind) bool {
	return kind == domain.KindNativePDF
}

func (b *PassthroughBackend) Open(_ context.Context) (convertout.Converter, error) {
	return b, nil
}

// Convert returns the file unchanged once it looks like a complete PDF.
func (b *PassthroughBackend) Convert(_ context.Context, path string) ([]byte, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewConversionError(passthroughName, path, fmt.Errorf("read pdf: %w", err))
	}
	if err := CheckPDF(payload); err != nil {
		return nil, domain.NewConversionError(passthroughName, path, err)
	}
	return payload, nil
}

// CheckPDF looks for a header near the start and an end-of-file marker near
// the end. It does not parse the document.
func CheckPDF(payload []byte) error {
	head := payload[:min(len(payload), headerWindow)]
	if !bytes.Contains(head, []byte("%PDF-")) {
		return errNoHeader
	}
	tail := payload[max(0, len(payload)-trailerWindow):]
	if !bytes.Contains(tail, []byte("%%EOF")) {
		return errNoTrailer
	}
	return nil
}
