package in

import (
	"context"

	"dokureader/internal/modules/plugin/dto"
)

// ConverterSession is one running plugin process. It is reused across
// conversions until Close.
type ConverterSession interface {
	Convert(ctx context.Context, input dto.ConvertInput) (dto.ConvertOutput, error)
	Close() error
}

type Usecase interface {
	List(ctx context.Context) ([]dto.PluginInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Converters(ctx context.Context) ([]dto.PluginInfo, error)
	OpenConverter(ctx context.Context, name string) (ConverterSession, error)
}
