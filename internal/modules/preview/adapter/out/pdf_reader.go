package out

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"dokureader/internal/modules/preview/domain"
	previewout "dokureader/internal/modules/preview/port/out"

	ledongthuc "github.com/ledongthuc/pdf"
	"rsc.io/pdf"
)

// LocalPDFReader extracts the first page with rsc.io/pdf and retries with
// ledongthuc/pdf, which tolerates more producers.
type LocalPDFReader struct{}

func NewLocalPDFReader() previewout.PDFReader {
	return &LocalPDFReader{}
}

func (r *LocalPDFReader) FirstPage(_ context.Context, path string) (domain.PDFPage, error) {
	page, err := rscFirstPage(path)
	if err == nil {
		return page, nil
	}
	fallback, ferr := ledongthucFirstPage(path)
	if ferr != nil {
		return domain.PDFPage{}, errors.Join(err, ferr)
	}
	return fallback, nil
}

func rscFirstPage(path string) (page domain.PDFPage, err error) {
	// rsc.io/pdf panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()
	doc, err := pdf.Open(path)
	if err != nil {
		return domain.PDFPage{}, fmt.Errorf("open pdf: %w", err)
	}
	total := doc.NumPage()
	if total == 0 {
		return domain.PDFPage{}, nil
	}
	p := doc.Page(1)
	if p.V.IsNull() {
		return domain.PDFPage{Pages: total}, fmt.Errorf("pdf page 1 is null")
	}
	return domain.PDFPage{Text: joinGlyphs(p.Content().Text), Pages: total}, nil
}

// joinGlyphs rebuilds lines from positioned glyphs: a change of baseline starts
// a new line, a horizontal gap inserts a space.
func joinGlyphs(glyphs []pdf.Text) string {
	var b strings.Builder
	for i, g := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			switch {
			case math.Abs(g.Y-prev.Y) > prev.FontSize/2:
				b.WriteByte('\n')
			case g.X-(prev.X+prev.W) > prev.FontSize/4:
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return b.String()
}

func ledongthucFirstPage(path string) (domain.PDFPage, error) {
	f, r, err := ledongthuc.Open(path)
	if err != nil {
		return domain.PDFPage{}, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	total := r.NumPage()
	if total == 0 {
		return domain.PDFPage{}, nil
	}
	p := r.Page(1)
	if p.V.IsNull() {
		return domain.PDFPage{Pages: total}, nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return domain.PDFPage{}, fmt.Errorf("read pdf page 1: %w", err)
	}
	return domain.PDFPage{Text: text, Pages: total}, nil
}
