package in

import (
	"context"

	previewdto "dokureader/internal/modules/preview/dto"
	previewin "dokureader/internal/modules/preview/port/in"
)

type CLIHandler struct {
	usecase previewin.Usecase
}

func NewCLIHandler(usecase previewin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Preview(ctx context.Context, path string) (previewdto.PreviewOutput, error) {
	return h.usecase.Preview(ctx, path)
}

func (h CLIHandler) Open(ctx context.Context, path string) error {
	return h.usecase.Open(ctx, path)
}
