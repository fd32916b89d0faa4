package in

import (
	"context"

	"dokureader/internal/modules/convert/dto"
)

// Run converts documents one at a time and owns the backend handles opened
// along the way until Close. It is not safe for concurrent use.
type Run interface {
	ConvertOne(ctx context.Context, doc dto.Document) dto.Outcome
	Close() error
}

type Usecase interface {
	BeginRun(ctx context.Context) (Run, error)
	ConvertFile(ctx context.Context, input dto.ConvertFileInput) (dto.ConvertFileOutput, error)
	Classify(path string) string
	Supported(path string) bool
	SupportedExtensions() []string
}
