package bootstrap

import (
	"context"
	"testing"

	"dokureader/internal/platform/config"
	"dokureader/internal/platform/logging"
)

func TestConversionSourcesFollowConfiguredOrder(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Office.Strategies = []string{config.StrategyPandoc, config.StrategyLibreOffice}
	sources := conversionSources(cfg, nil)

	var names []string
	for _, source := range sources {
		backends, err := source.Backends(context.Background())
		if err != nil {
			t.Fatalf("backends: %v", err)
		}
		for _, b := range backends {
			names = append(names, b.Name())
		}
	}
	want := []string{"passthrough", "render", "pandoc", "libreoffice"}
	if len(names) != len(want) {
		t.Fatalf("got %v want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v want %v", names, want)
		}
	}
}

func TestNewWiresAllHandlers(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	app, err := New(cfg, logging.Discard(), nil)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	topics, err := app.LibraryCLI.ListTopics(context.Background())
	if err != nil || len(topics) != 0 {
		t.Fatalf("fresh library should be empty: %v %v", topics, err)
	}
	if len(app.ConvertCLI.SupportedExtensions()) == 0 {
		t.Fatalf("no supported extensions")
	}
	plugins, err := app.PluginCLI.List(context.Background())
	if err != nil || len(plugins) != 0 {
		t.Fatalf("no plugins expected: %v %v", plugins, err)
	}
}
