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

const libreOfficeName = "libreoffice"

type LibreOfficeBackend struct {
	timeout  time.Duration
	lookPath lookPathFunc
}

func NewLibreOfficeBackend(timeout time.Duration) convertout.Backend {
	return &LibreOfficeBackend{timeout: timeout, lookPath: exec.LookPath}
}

func (b *LibreOfficeBackend) Name() string { return libreOfficeName }

func (b *LibreOfficeBackend) Supports(kind domain.Kind) bool {
	return kind == domain.KindLegacyOffice
}

func (b *LibreOfficeBackend) Open(_ context.Context) (convertout.Converter, error) {
	binary, err := findTool(b.lookPath, libreOfficeName, "soffice", "libreoffice")
	if err != nil {
		return nil, err
	}
	return &libreOfficeConverter{binary: binary, runner: toolRunner{backend: libreOfficeName, timeout: b.timeout}}, nil
}

type libreOfficeConverter struct {
	selfConverter
	binary string
	runner toolRunner
}

// Convert runs a headless instance with a private profile so parallel or
// stale desktop sessions do not hold the profile lock.
func (c *libreOfficeConverter) Convert(ctx context.Context, path string) ([]byte, error) {
	tmp, err := os.MkdirTemp("", "dokureader-soffice-*")
	if err != nil {
		return nil, domain.NewConversionError(libreOfficeName, path, fmt.Errorf("create temp dir: %w", err))
	}
	defer os.RemoveAll(tmp)

	outDir := filepath.Join(tmp, "out")
	args := []string{
		"-env:UserInstallation=" + fileURL(filepath.Join(tmp, "profile")),
		"--headless",
		"--norestore",
		"--convert-to", "pdf",
		"--outdir", outDir,
		path,
	}
	if err := c.runner.run(ctx, path, c.binary, args...); err != nil {
		return nil, err
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	pdf, err := os.ReadFile(filepath.Join(outDir, stem+".pdf"))
	if err != nil {
		return nil, domain.NewConversionError(libreOfficeName, path, fmt.Errorf("no pdf produced: %w", err))
	}
	return pdf, nil
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}
