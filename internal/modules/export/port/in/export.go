package in

import (
	"context"

	"dokureader/internal/modules/export/dto"
)

type Usecase interface {
	Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
	ExportAsync(ctx context.Context, input dto.ExportInput) <-chan dto.Result
	Status(ctx context.Context) (dto.RunOutput, error)
	History(ctx context.Context, limit int) ([]dto.RunOutput, error)
}
