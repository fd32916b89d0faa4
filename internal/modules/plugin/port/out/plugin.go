package out

import (
	"context"

	"dokureader/internal/modules/plugin/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Session interface {
	Metadata(ctx context.Context) (domain.Metadata, error)
	Convert(ctx context.Context, req domain.ConvertRequest) (domain.ConvertResult, error)
	Close() error
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Start(ctx context.Context, manifest domain.Manifest) (Session, error)
}
