//go:build windows

package out

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"dokureader/internal/modules/convert/domain"
	convertout "dokureader/internal/modules/convert/port/out"
)

const (
	wordProbeTimeout = 30 * time.Second
	wdFormatPDF      = 17
)

// Paths travel through the environment so no quoting is needed.
const wordProbeScript = `if ([type]::GetTypeFromProgID('Word.Application')) { exit 0 } else { exit 3 }`

var wordExportScript = fmt.Sprintf(`$ErrorActionPreference = 'Stop'
$word = New-Object -ComObject Word.Application
$word.Visible = $false
$word.DisplayAlerts = 0
try {
  $doc = $word.Documents.Open($env:DOKUREADER_SRC, $false, $true)
  try { $doc.ExportAsFixedFormat($env:DOKUREADER_DST, %d) } finally { $doc.Close($false) }
} finally {
  $word.Quit()
  [void][System.Runtime.InteropServices.Marshal]::ReleaseComObject($word)
}`, wdFormatPDF)

func newWordBackend(timeout time.Duration) *WordBackend {
	return &WordBackend{timeout: timeout, lookPath: exec.LookPath}
}

func (b *WordBackend) Open(ctx context.Context) (convertout.Converter, error) {
	shell, err := findTool(b.lookPath, wordName, "powershell.exe", "pwsh.exe")
	if err != nil {
		return nil, err
	}
	probe := toolRunner{backend: wordName, timeout: wordProbeTimeout}
	if err := probe.run(ctx, "", shell, powershellArgs(wordProbeScript)...); err != nil {
		return nil, fmt.Errorf("%w: word: Word.Application is not registered", domain.ErrToolUnavailable)
	}
	return &wordConverter{shell: shell, runner: toolRunner{backend: wordName, timeout: b.timeout}}, nil
}

type wordConverter struct {
	selfConverter
	shell  string
	runner toolRunner
}

func (c *wordConverter) Convert(ctx context.Context, path string) ([]byte, error) {
	tmp, err := os.MkdirTemp("", "dokureader-word-*")
	if err != nil {
		return nil, domain.NewConversionError(wordName, path, fmt.Errorf("create temp dir: %w", err))
	}
	defer os.RemoveAll(tmp)

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(tmp, stem+".pdf")
	env := []string{"DOKUREADER_SRC=" + path, "DOKUREADER_DST=" + out}
	if err := c.runner.runEnv(ctx, path, env, c.shell, powershellArgs(wordExportScript)...); err != nil {
		return nil, err
	}
	pdf, err := os.ReadFile(out)
	if err != nil {
		return nil, domain.NewConversionError(wordName, path, fmt.Errorf("no pdf produced: %w", err))
	}
	return pdf, nil
}

func powershellArgs(script string) []string {
	return []string{"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", script}
}
