package out

import (
	"context"

	convertdto "dokureader/internal/modules/convert/dto"
	convertin "dokureader/internal/modules/convert/port/in"
	"dokureader/internal/modules/export/domain"
	exportout "dokureader/internal/modules/export/port/out"
)

type ConvertRunSource struct {
	convert convertin.Usecase
}

func NewConvertRunSource(convert convertin.Usecase) exportout.Converter {
	return &ConvertRunSource{convert: convert}
}

func (s *ConvertRunSource) Begin(ctx context.Context) (exportout.ConversionRun, error) {
	run, err := s.convert.BeginRun(ctx)
	if err != nil {
		return nil, err
	}
	return conversionRun{run: run}, nil
}

type conversionRun struct {
	run convertin.Run
}

func (r conversionRun) Convert(ctx context.Context, item domain.Item) domain.Conversion {
	out := r.run.ConvertOne(ctx, convertdto.Document{Path: item.Path, DisplayName: item.DisplayName})
	return domain.Conversion{Item: item, OK: out.OK, PDF: out.PDF, Backend: out.Backend, Reason: out.Reason}
}

func (r conversionRun) Close() error {
	return r.run.Close()
}
