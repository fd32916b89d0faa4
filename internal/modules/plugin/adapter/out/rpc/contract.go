// Package rpc is the wire contract between the host and converter plugins:
// a hand-registered gRPC service carried with a JSON codec.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "converter"
	serviceName       = "dokureader.plugin.v1.ConverterPlugin"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodConvert     = "/" + serviceName + "/Convert"

	// MaxMessageSize bounds a converted document on the wire.
	MaxMessageSize = 256 << 20
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "DOKUREADER_PLUGIN",
	MagicCookieValue: "dokureader",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type ConvertRequest struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// ConvertResponse carries either the PDF bytes or a plugin-side error message.
type ConvertResponse struct {
	PDF   []byte `json:"pdf"`
	Error string `json:"error,omitempty"`
}

type ConverterPluginServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Convert(ctx context.Context, in *ConvertRequest) (*ConvertResponse, error)
}

type ConverterPluginClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Convert(ctx context.Context, in *ConvertRequest) (*ConvertResponse, error)
}

type converterPluginClient struct {
	conn *grpc.ClientConn
}

func NewConverterPluginClient(conn *grpc.ClientConn) ConverterPluginClient {
	return &converterPluginClient{conn: conn}
}

func (c *converterPluginClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *converterPluginClient) Convert(ctx context.Context, in *ConvertRequest) (*ConvertResponse, error) {
	out := &ConvertResponse{}
	err := c.conn.Invoke(ctx, methodConvert, in, out,
		grpc.CallContentSubtype(jsonCodecName),
		grpc.MaxCallRecvMsgSize(MaxMessageSize),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func unaryHandler[Req any](method string, newReq func() *Req, call func(context.Context, *Req) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*Req)
			if !ok {
				return nil, fmt.Errorf("invalid request type %T", req)
			}
			return call(ctx, typed)
		}
		return interceptor(ctx, in, info, handler)
	}
}

func RegisterConverterPluginServer(server grpc.ServiceRegistrar, impl ConverterPluginServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*ConverterPluginServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: unaryHandler(methodGetMetadata, func() *Empty { return &Empty{} },
					func(ctx context.Context, in *Empty) (any, error) { return impl.GetMetadata(ctx, in) }),
			},
			{
				MethodName: "Convert",
				Handler: unaryHandler(methodConvert, func() *ConvertRequest { return &ConvertRequest{} },
					func(ctx context.Context, in *ConvertRequest) (any, error) { return impl.Convert(ctx, in) }),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/converter-plugin-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl ConverterPluginServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterConverterPluginServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewConverterPluginClient(conn), nil
}

func PluginMap(impl ConverterPluginServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
