package in

import (
	"context"

	"dokureader/internal/modules/preview/dto"
)

type Usecase interface {
	Preview(ctx context.Context, path string) (dto.PreviewOutput, error)
	Open(ctx context.Context, path string) error
}
