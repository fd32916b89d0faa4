package usecase

import (
	"context"

	"dokureader/internal/modules/export/domain"
	"dokureader/internal/modules/export/dto"
	exportin "dokureader/internal/modules/export/port/in"
	"dokureader/internal/modules/export/service"
)

type Interactor struct {
	svc *service.ExportService
}

func NewInteractor(svc *service.ExportService) exportin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	summary, err := i.svc.Export(ctx, domain.Request{Topic: input.Topic, Filter: input.Filter, Destination: input.Destination})
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return toExportOutput(summary), nil
}

// ExportAsync runs one export in the background. The channel receives exactly
// one result and is then closed.
func (i *Interactor) ExportAsync(ctx context.Context, input dto.ExportInput) <-chan dto.Result {
	ch := make(chan dto.Result, 1)
	go func() {
		defer close(ch)
		out, err := i.Export(ctx, input)
		ch <- dto.Result{Output: out, Err: err}
	}()
	return ch
}

func (i *Interactor) Status(ctx context.Context) (dto.RunOutput, error) {
	run, err := i.svc.Latest(ctx)
	if err != nil {
		return dto.RunOutput{}, err
	}
	return toRunOutput(run), nil
}

func (i *Interactor) History(ctx context.Context, limit int) ([]dto.RunOutput, error) {
	runs, err := i.svc.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RunOutput, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunOutput(run))
	}
	return out, nil
}

func toExportOutput(summary domain.Summary) dto.ExportOutput {
	out := dto.ExportOutput{
		RunID:      summary.RunID,
		TopicName:  summary.TopicName,
		OutputPath: summary.OutputPath,
		Pages:      summary.Pages,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		Succeeded:  make([]dto.EntryOutput, 0, len(summary.Succeeded)),
		Skipped:    make([]dto.SkipOutput, 0, len(summary.Skipped)),
	}
	for _, entry := range summary.Succeeded {
		out.Succeeded = append(out.Succeeded, dto.EntryOutput{
			Path:        entry.Item.Path,
			DisplayName: entry.Item.DisplayName,
			Pages:       entry.Pages,
			Backend:     entry.Backend,
		})
	}
	for _, skip := range summary.Skipped {
		out.Skipped = append(out.Skipped, dto.SkipOutput{
			Path:        skip.Item.Path,
			DisplayName: skip.Item.DisplayName,
			Reason:      skip.Reason,
		})
	}
	return out
}

func toRunOutput(run domain.Run) dto.RunOutput {
	return dto.RunOutput{
		ID:         run.ID,
		TopicName:  run.TopicName,
		Filter:     run.Filter,
		State:      string(run.State),
		OutputPath: run.OutputPath,
		Documents:  run.Documents,
		Succeeded:  run.Succeeded,
		Skipped:    run.Skipped,
		Pages:      run.Pages,
		Reason:     run.Reason,
		StartedAt:  run.StartedAt,
		UpdatedAt:  run.UpdatedAt,
	}
}
