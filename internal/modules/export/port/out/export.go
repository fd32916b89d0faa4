package out

import (
	"context"

	"dokureader/internal/modules/export/domain"
)

// TopicSource resolves a topic reference and filter into a plan.
type TopicSource interface {
	Plan(ctx context.Context, topic, filter string) (domain.Plan, error)
}

// Converter opens a conversion run whose converter handles live until Close.
type Converter interface {
	Begin(ctx context.Context) (ConversionRun, error)
}

type ConversionRun interface {
	Convert(ctx context.Context, item domain.Item) domain.Conversion
	Close() error
}

type Merger interface {
	Merge(ctx context.Context, conversions []domain.Conversion) (domain.MergeResult, error)
}

type OutputWriter interface {
	Write(ctx context.Context, path string, pdf []byte) error
}

// RunJournal keeps the state of the latest run.
type RunJournal interface {
	Save(ctx context.Context, run domain.Run) error
	Latest(ctx context.Context) (domain.Run, error)
}

// History records finished runs.
type History interface {
	Record(ctx context.Context, run domain.Run) error
	List(ctx context.Context, limit int) ([]domain.Run, error)
}
