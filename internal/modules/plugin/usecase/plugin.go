package usecase

import (
	"context"

	"dokureader/internal/modules/plugin/domain"
	"dokureader/internal/modules/plugin/dto"
	pluginin "dokureader/internal/modules/plugin/port/in"
	"dokureader/internal/modules/plugin/service"
)

type Interactor struct {
	svc *service.PluginService
}

func NewInteractor(svc *service.PluginService) pluginin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Converters(ctx context.Context) ([]dto.PluginInfo, error) {
	return i.svc.Converters(ctx)
}

func (i *Interactor) OpenConverter(ctx context.Context, name string) (pluginin.ConverterSession, error) {
	session, err := i.svc.OpenConverter(ctx, name)
	if err != nil {
		return nil, err
	}
	return converterSession{session: session}, nil
}

type converterSession struct {
	session *service.ConverterSession
}

func (c converterSession) Convert(ctx context.Context, input dto.ConvertInput) (dto.ConvertOutput, error) {
	result, err := c.session.Convert(ctx, domain.ConvertRequest{Path: input.Path, Kind: input.Kind})
	if err != nil {
		return dto.ConvertOutput{}, err
	}
	return dto.ConvertOutput{PDF: result.PDF}, nil
}

func (c converterSession) Close() error {
	return c.session.Close()
}
