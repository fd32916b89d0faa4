package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvHome    = "DOKUREADER_HOME"
	fileName   = "config.yaml"
	defaultDir = ".dokureader"
)

// Office strategy names accepted in office.strategies.
const (
	StrategyLibreOffice = "libreoffice"
	StrategyWord        = "word"
	StrategyPandoc      = "pandoc"
	StrategyPlugins     = "plugins"
)

type Config struct {
	DataDir       string
	StatePath     string
	DBPath        string
	JournalPath   string
	ConfigPath    string
	ExportDir     string
	Office        OfficeConfig
	PluginStartup time.Duration
	Log           LogConfig
}

type OfficeConfig struct {
	Timeout      time.Duration
	Strategies   []string
	PandocEngine string
}

type LogConfig struct {
	Level  string
	Format string
}

type fileConfig struct {
	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`
	Office struct {
		Timeout      string   `yaml:"timeout"`
		Strategies   []string `yaml:"strategies"`
		PandocEngine string   `yaml:"pandoc_engine"`
	} `yaml:"office"`
	Plugins struct {
		StartTimeout string `yaml:"start_timeout"`
	} `yaml:"plugins"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data directory is required")
	}
	return Config{
		DataDir:     dataDir,
		StatePath:   filepath.Join(dataDir, "state.json"),
		DBPath:      filepath.Join(dataDir, "index.db"),
		JournalPath: filepath.Join(dataDir, "export-run.json"),
		ConfigPath:  filepath.Join(dataDir, fileName),
		ExportDir:   DefaultExportDir(),
		Office: OfficeConfig{
			Timeout:    180 * time.Second,
			Strategies: DefaultStrategies(),
		},
		PluginStartup: 3 * time.Second,
		Log:           LogConfig{Level: "info", Format: "text"},
	}, nil
}

// Load builds the defaults for dataDir and overlays config.yaml when present.
func Load(dataDir string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	raw, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.apply(raw); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", cfg.ConfigPath, err)
	}
	return cfg, nil
}

func (c *Config) apply(raw []byte) error {
	var file fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if file.Export.Dir != "" {
		c.ExportDir = file.Export.Dir
	}
	if file.Office.Timeout != "" {
		d, err := time.ParseDuration(file.Office.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("office.timeout must be a positive duration, got %q", file.Office.Timeout)
		}
		c.Office.Timeout = d
	}
	if len(file.Office.Strategies) > 0 {
		seen := map[string]struct{}{}
		for _, s := range file.Office.Strategies {
			switch s {
			case StrategyLibreOffice, StrategyWord, StrategyPandoc, StrategyPlugins:
			default:
				return fmt.Errorf("unknown office strategy %q", s)
			}
			if _, ok := seen[s]; ok {
				return fmt.Errorf("duplicate office strategy %q", s)
			}
			seen[s] = struct{}{}
		}
		c.Office.Strategies = file.Office.Strategies
	}
	c.Office.PandocEngine = file.Office.PandocEngine
	if file.Plugins.StartTimeout != "" {
		d, err := time.ParseDuration(file.Plugins.StartTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("plugins.start_timeout must be a positive duration, got %q", file.Plugins.StartTimeout)
		}
		c.PluginStartup = d
	}
	if file.Log.Level != "" {
		c.Log.Level = file.Log.Level
	}
	if file.Log.Format != "" {
		c.Log.Format = file.Log.Format
	}
	return nil
}

// DefaultStrategies is the office tie-break order: most capable first.
func DefaultStrategies() []string {
	return []string{StrategyLibreOffice, StrategyWord, StrategyPandoc, StrategyPlugins}
}

// DefaultDataDir resolves $DOKUREADER_HOME, falling back to ~/.dokureader.
func DefaultDataDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDir
	}
	return filepath.Join(home, defaultDir)
}

// DefaultExportDir is ~/Desktop when it exists, else the home directory.
func DefaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop
	}
	return home
}
