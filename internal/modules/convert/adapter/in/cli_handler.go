package in

import (
	"context"

	"dokureader/internal/modules/convert/dto"
	convertin "dokureader/internal/modules/convert/port/in"
)

type CLIHandler struct {
	usecase convertin.Usecase
}

func NewCLIHandler(usecase convertin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ConvertFile(ctx context.Context, path, output string) (dto.ConvertFileOutput, error) {
	return h.usecase.ConvertFile(ctx, dto.ConvertFileInput{Path: path, Output: output})
}

func (h CLIHandler) SupportedExtensions() []string {
	return h.usecase.SupportedExtensions()
}
