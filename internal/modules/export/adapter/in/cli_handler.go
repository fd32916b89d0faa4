package in

import (
	"context"

	exportdto "dokureader/internal/modules/export/dto"
	exportin "dokureader/internal/modules/export/port/in"
)

type CLIHandler struct {
	usecase exportin.Usecase
}

func NewCLIHandler(usecase exportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Export runs in the background and waits for its result. Cancelling ctx
// stops the run between documents; the result still arrives.
func (h CLIHandler) Export(ctx context.Context, topic, filter, destination string) (exportdto.ExportOutput, error) {
	res := <-h.usecase.ExportAsync(ctx, exportdto.ExportInput{Topic: topic, Filter: filter, Destination: destination})
	return res.Output, res.Err
}

func (h CLIHandler) Status(ctx context.Context) (exportdto.RunOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]exportdto.RunOutput, error) {
	return h.usecase.History(ctx, limit)
}
