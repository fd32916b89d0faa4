package usecase

import (
	"context"

	"dokureader/internal/modules/preview/dto"
	previewin "dokureader/internal/modules/preview/port/in"
	"dokureader/internal/modules/preview/service"
)

type Interactor struct {
	svc *service.PreviewService
}

func NewInteractor(svc *service.PreviewService) previewin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Preview(ctx context.Context, path string) (dto.PreviewOutput, error) {
	p, err := i.svc.Preview(ctx, path)
	if err != nil {
		return dto.PreviewOutput{}, err
	}
	out := dto.PreviewOutput{
		Path:      p.Path,
		Title:     p.Title,
		Kind:      string(p.Kind),
		Body:      p.Body,
		Truncated: p.Truncated,
		Meta:      make([]dto.Field, 0, len(p.Meta)),
	}
	for _, f := range p.Meta {
		out.Meta = append(out.Meta, dto.Field{Key: f.Key, Value: f.Value})
	}
	return out, nil
}

func (i *Interactor) Open(ctx context.Context, path string) error {
	return i.svc.Open(ctx, path)
}
