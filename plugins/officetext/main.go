// Command officetext is a converter plugin that turns DOCX, ODT and RTF files
// into PDF without an office suite: it extracts the paragraphs and renders
// them as plain text.
package main

import (
	"context"

	pluginrpc "dokureader/internal/modules/plugin/adapter/out/rpc"
	"dokureader/internal/platform/officetext"
	"dokureader/internal/platform/pdfrender"

	"github.com/hashicorp/go-plugin"
)

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.Metadata, error) {
	return &pluginrpc.Metadata{
		Name:         "officetext",
		Version:      "1.0.0",
		Capabilities: []string{"convert"},
	}, nil
}

func (s *server) Convert(_ context.Context, in *pluginrpc.ConvertRequest) (*pluginrpc.ConvertResponse, error) {
	text, err := officetext.Text(in.Path)
	if err != nil {
		return &pluginrpc.ConvertResponse{Error: err.Error()}, nil
	}
	pdf, err := pdfrender.Text([]byte(text))
	if err != nil {
		return &pluginrpc.ConvertResponse{Error: err.Error()}, nil
	}
	return &pluginrpc.ConvertResponse{PDF: pdf}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: pluginrpc.HandshakeConfig,
		Plugins:         pluginrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
