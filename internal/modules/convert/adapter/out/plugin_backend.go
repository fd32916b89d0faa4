package out

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dokureader/internal/modules/convert/domain"
	convertout "dokureader/internal/modules/convert/port/out"
	plugindto "dokureader/internal/modules/plugin/dto"
	pluginin "dokureader/internal/modules/plugin/port/in"
)

// PluginSource contributes one backend per enabled converter plugin, named
// plugin:<name>, in manifest order.
type PluginSource struct {
	plugins pluginin.Usecase
	timeout time.Duration
}

func NewPluginSource(plugins pluginin.Usecase, timeout time.Duration) convertout.Source {
	return &PluginSource{plugins: plugins, timeout: timeout}
}

func (s *PluginSource) Backends(ctx context.Context) ([]convertout.Backend, error) {
	infos, err := s.plugins.Converters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list converter plugins: %w", err)
	}
	out := make([]convertout.Backend, 0, len(infos))
	for _, info := range infos {
		out = append(out, &PluginBackend{plugin: info.Name, plugins: s.plugins, timeout: s.timeout})
	}
	return out, nil
}

type PluginBackend struct {
	plugin  string
	plugins pluginin.Usecase
	timeout time.Duration
}

func (b *PluginBackend) Name() string { return "plugin:" + b.plugin }

func (b *PluginBackend) Supports(kind domain.Kind) bool {
	return kind == domain.KindLegacyOffice
}

// Open starts the plugin process; the returned converter reuses it until Close.
func (b *PluginBackend) Open(ctx context.Context) (convertout.Converter, error) {
	session, err := b.plugins.OpenConverter(ctx, b.plugin)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrToolUnavailable, b.Name(), err)
	}
	return &pluginConverter{name: b.Name(), session: session, timeout: b.timeout}, nil
}

type pluginConverter struct {
	name    string
	session pluginin.ConverterSession
	timeout time.Duration
}

func (c *pluginConverter) Convert(ctx context.Context, path string) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	out, err := c.session.Convert(callCtx, plugindto.ConvertInput{Path: path, Kind: domain.Classify(path).String()})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%w after %s", domain.ErrTimeout, c.timeout)
		}
		return nil, domain.NewConversionError(c.name, path, err)
	}
	return out.PDF, nil
}

func (c *pluginConverter) Close() error {
	return c.session.Close()
}
