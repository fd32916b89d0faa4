package out

import (
	"context"

	previewout "dokureader/internal/modules/preview/port/out"
	"dokureader/internal/platform/officetext"
)

type OfficeTextReader struct{}

func NewOfficeTextReader() previewout.OfficeReader {
	return OfficeTextReader{}
}

func (OfficeTextReader) Paragraphs(_ context.Context, path string, limit int) ([]string, error) {
	return officetext.Paragraphs(path, limit)
}
