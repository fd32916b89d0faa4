package out

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"dokureader/internal/modules/export/domain"
	exportout "dokureader/internal/modules/export/port/out"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type PDFCPUMerger struct{}

func NewPDFCPUMerger() exportout.Merger {
	return PDFCPUMerger{}
}

// Merge concatenates successful conversions in order. A conversion whose bytes
// pdfcpu cannot read is demoted to skipped rather than failing the batch.
func (PDFCPUMerger) Merge(ctx context.Context, conversions []domain.Conversion) (domain.MergeResult, error) {
	var (
		result  domain.MergeResult
		sources []io.ReadSeeker
	)
	for _, c := range conversions {
		if !c.OK {
			result.Skipped = append(result.Skipped, domain.Skip{Item: c.Item, Reason: c.Reason})
			continue
		}
		pages, err := PageCount(c.PDF)
		if err != nil {
			result.Skipped = append(result.Skipped, domain.Skip{Item: c.Item, Reason: "unreadable pdf output: " + err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, domain.Entry{Item: c.Item, Pages: pages, Backend: c.Backend})
		sources = append(sources, bytes.NewReader(c.PDF))
	}
	if len(sources) == 0 {
		return result, domain.ErrEmptyExport
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(sources, &buf, false, configuration()); err != nil {
		return result, fmt.Errorf("merge pdf: %w", err)
	}
	result.PDF = buf.Bytes()
	return result, nil
}

// PageCount reads payload with relaxed validation.
func PageCount(payload []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(payload), configuration())
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("document has no pages")
	}
	return n, nil
}

// pdfcpu mutates the configuration it is given, so every call gets its own.
func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.CreateBookmarks = false
	return conf
}
