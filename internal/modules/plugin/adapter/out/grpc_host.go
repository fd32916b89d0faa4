package out

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	pluginrpc "dokureader/internal/modules/plugin/adapter/out/rpc"
	"dokureader/internal/modules/plugin/domain"
	pluginout "dokureader/internal/modules/plugin/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 180 * time.Second
	metadataTimeout     = 5 * time.Second
)

type HostOptions struct {
	StartTimeout time.Duration
	CallTimeout  time.Duration
	// LogOutput receives plugin process logs; nil discards them.
	LogOutput io.Writer
	LogLevel  string
}

type GRPCHost struct {
	opts HostOptions
}

func NewGRPCHost(opts HostOptions) pluginout.Host {
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = defaultStartTimeout
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = io.Discard
	}
	return &GRPCHost{opts: opts}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.GetMetadata(ctx, manifest)
	return err
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	session, err := h.start(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer session.Close()
	return session.Metadata(ctx)
}

// Start launches the plugin and keeps it running until the session is closed.
func (h *GRPCHost) Start(ctx context.Context, manifest domain.Manifest) (pluginout.Session, error) {
	session, err := h.start(manifest)
	if err != nil {
		return nil, err
	}
	if _, err := session.Metadata(ctx); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

func (h *GRPCHost) start(manifest domain.Manifest) (*grpcSession, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  pluginrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          pluginrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     h.opts.StartTimeout,
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "plugin." + manifest.Name,
			Output: h.opts.LogOutput,
			Level:  hclog.LevelFromString(h.opts.LogLevel),
		}),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start plugin %s: %w", manifest.Name, err)
	}
	raw, err := rpcClient.Dispense(pluginrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense plugin %s: %w", manifest.Name, err)
	}
	typed, ok := raw.(pluginrpc.ConverterPluginClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	return &grpcSession{name: manifest.Name, client: client, rpc: typed, callTimeout: h.opts.CallTimeout}, nil
}

type grpcSession struct {
	name        string
	client      *plugin.Client
	rpc         pluginrpc.ConverterPluginClient
	callTimeout time.Duration
	closeOnce   sync.Once
}

func (s *grpcSession) Metadata(ctx context.Context) (domain.Metadata, error) {
	callCtx, cancel := callContext(ctx, metadataTimeout)
	defer cancel()
	meta, err := s.rpc.GetMetadata(callCtx)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return domain.Metadata{}, fmt.Errorf("%w: %s metadata", domain.ErrPluginTimeout, s.name)
		}
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (s *grpcSession) Convert(ctx context.Context, req domain.ConvertRequest) (domain.ConvertResult, error) {
	callCtx, cancel := callContext(ctx, s.callTimeout)
	defer cancel()
	response, err := s.rpc.Convert(callCtx, &pluginrpc.ConvertRequest{Path: req.Path, Kind: req.Kind})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return domain.ConvertResult{}, fmt.Errorf("%w: %s convert", domain.ErrPluginTimeout, s.name)
		}
		return domain.ConvertResult{}, fmt.Errorf("convert via %s: %w", s.name, err)
	}
	if response.Error != "" {
		return domain.ConvertResult{}, fmt.Errorf("%w: %s", domain.ErrConversionFailed, response.Error)
	}
	return domain.ConvertResult{PDF: response.PDF}, nil
}

func (s *grpcSession) Close() error {
	s.closeOnce.Do(s.client.Kill)
	return nil
}

// callContext keeps a deadline the caller already set and adds one otherwise.
func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
