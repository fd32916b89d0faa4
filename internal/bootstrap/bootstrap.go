package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	convertinadapter "dokureader/internal/modules/convert/adapter/in"
	convertoutadapter "dokureader/internal/modules/convert/adapter/out"
	convertout "dokureader/internal/modules/convert/port/out"
	convertservice "dokureader/internal/modules/convert/service"
	convertusecase "dokureader/internal/modules/convert/usecase"
	exportinadapter "dokureader/internal/modules/export/adapter/in"
	exportoutadapter "dokureader/internal/modules/export/adapter/out"
	exportservice "dokureader/internal/modules/export/service"
	exportusecase "dokureader/internal/modules/export/usecase"
	libraryinadapter "dokureader/internal/modules/library/adapter/in"
	libraryoutadapter "dokureader/internal/modules/library/adapter/out"
	libraryservice "dokureader/internal/modules/library/service"
	libraryusecase "dokureader/internal/modules/library/usecase"
	plugininadapter "dokureader/internal/modules/plugin/adapter/in"
	pluginoutadapter "dokureader/internal/modules/plugin/adapter/out"
	pluginin "dokureader/internal/modules/plugin/port/in"
	pluginservice "dokureader/internal/modules/plugin/service"
	pluginusecase "dokureader/internal/modules/plugin/usecase"
	previewinadapter "dokureader/internal/modules/preview/adapter/in"
	previewoutadapter "dokureader/internal/modules/preview/adapter/out"
	previewservice "dokureader/internal/modules/preview/service"
	previewusecase "dokureader/internal/modules/preview/usecase"
	"dokureader/internal/platform/clock"
	"dokureader/internal/platform/config"
	"dokureader/internal/platform/id"
	"dokureader/internal/platform/tx"
)

type App struct {
	LibraryCLI libraryinadapter.CLIHandler
	ExportCLI  exportinadapter.CLIHandler
	ConvertCLI convertinadapter.CLIHandler
	PreviewCLI previewinadapter.CLIHandler
	PluginCLI  plugininadapter.CLIHandler
}

// New wires every module. logOutput receives plugin process logs.
func New(cfg config.Config, logger *slog.Logger, logOutput io.Writer) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.UUID{}

	pluginUC := pluginusecase.NewInteractor(pluginservice.NewPluginService(
		pluginoutadapter.NewFileManifestStore(cfg.DataDir),
		pluginoutadapter.NewGRPCHost(pluginoutadapter.HostOptions{
			StartTimeout: cfg.PluginStartup,
			CallTimeout:  cfg.Office.Timeout,
			LogOutput:    logOutput,
			LogLevel:     cfg.Log.Level,
		}),
	))

	convertUC := convertusecase.NewInteractor(convertservice.NewOrchestrator(
		logger.With("module", "convert"),
		conversionSources(cfg, pluginUC)...,
	))

	index, err := libraryoutadapter.NewSQLiteDocumentIndex(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new document index: %w", err)
	}
	libraryUC := libraryusecase.NewInteractor(libraryservice.NewLibraryService(
		clk,
		ids,
		tx.NewMutexManager(),
		libraryoutadapter.NewFileStateStore(cfg.StatePath),
		index,
		libraryoutadapter.NewConvertFormatChecker(convertUC),
		libraryoutadapter.NewLegacyStateFile(),
		logger.With("module", "library"),
	))

	history, err := exportoutadapter.NewSQLiteHistory(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new export history: %w", err)
	}
	exportUC := exportusecase.NewInteractor(exportservice.NewExportService(exportservice.Deps{
		Clock:     clk,
		IDs:       ids,
		Topics:    exportoutadapter.NewLibraryTopicSource(libraryUC),
		Converter: exportoutadapter.NewConvertRunSource(convertUC),
		Merger:    exportoutadapter.NewPDFCPUMerger(),
		Writer:    exportoutadapter.NewFileOutputWriter(),
		Journal:   exportoutadapter.NewFileRunJournal(cfg.JournalPath),
		History:   history,
		Logger:    logger.With("module", "export"),
		ExportDir: cfg.ExportDir,
	}))

	previewUC := previewusecase.NewInteractor(previewservice.NewPreviewService(
		clk,
		previewoutadapter.NewLocalPDFReader(),
		previewoutadapter.NewOfficeTextReader(),
		previewoutadapter.NewImageFileInspector(),
		previewoutadapter.NewOSExternalLauncher(),
	))

	return &App{
		LibraryCLI: libraryinadapter.NewCLIHandler(libraryUC),
		ExportCLI:  exportinadapter.NewCLIHandler(exportUC),
		ConvertCLI: convertinadapter.NewCLIHandler(convertUC),
		PreviewCLI: previewinadapter.NewCLIHandler(previewUC),
		PluginCLI:  plugininadapter.NewCLIHandler(pluginUC),
	}, nil
}

// conversionSources lists backends in priority order: in-process backends
// first, then the office strategies in configured order.
func conversionSources(cfg config.Config, plugins pluginin.Usecase) []convertout.Source {
	sources := []convertout.Source{convertoutadapter.Backends{
		convertoutadapter.NewPassthroughBackend(),
		convertoutadapter.NewRenderBackend(),
	}}
	for _, strategy := range cfg.Office.Strategies {
		switch strategy {
		case config.StrategyLibreOffice:
			sources = append(sources, convertoutadapter.Backends{convertoutadapter.NewLibreOfficeBackend(cfg.Office.Timeout)})
		case config.StrategyWord:
			sources = append(sources, convertoutadapter.Backends{convertoutadapter.NewWordBackend(cfg.Office.Timeout)})
		case config.StrategyPandoc:
			sources = append(sources, convertoutadapter.Backends{convertoutadapter.NewPandocBackend(cfg.Office.Timeout, cfg.Office.PandocEngine)})
		case config.StrategyPlugins:
			sources = append(sources, convertoutadapter.NewPluginSource(plugins, cfg.Office.Timeout))
		}
	}
	return sources
}

// DefaultLegacyStatePath is where the desktop application kept its state.
func DefaultLegacyStatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, libraryoutadapter.LegacyFileName), nil
}
