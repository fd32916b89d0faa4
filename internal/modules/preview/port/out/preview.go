package out

import (
	"context"

	"dokureader/internal/modules/preview/domain"
)

type PDFReader interface {
	FirstPage(ctx context.Context, path string) (domain.PDFPage, error)
}

type OfficeReader interface {
	Paragraphs(ctx context.Context, path string, limit int) ([]string, error)
}

type ImageInspector interface {
	Inspect(ctx context.Context, path string) (domain.ImageInfo, error)
}

// Launcher hands a file to the desktop's default application.
type Launcher interface {
	Open(ctx context.Context, path string) error
}
