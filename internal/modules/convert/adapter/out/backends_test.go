package out_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	convertout "dokureader/internal/modules/convert/adapter/out"
	"dokureader/internal/modules/convert/domain"
	plugindto "dokureader/internal/modules/plugin/dto"
	pluginin "dokureader/internal/modules/plugin/port/in"
	"dokureader/internal/platform/pdfrender"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func writeFile(t *testing.T, name string, payload []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func pageCount(t *testing.T, pdf []byte) int {
	t.Helper()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(pdf), conf)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	return n
}

func TestPassthroughReturnsIdenticalBytes(t *testing.T) {
	t.Parallel()
	fixture, err := pdfrender.Text([]byte("eins\nzwei"))
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	path := writeFile(t, "doc.pdf", fixture)
	conv, err := convertout.NewPassthroughBackend().Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	first, err := conv.Convert(context.Background(), path)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	second, err := conv.Convert(context.Background(), path)
	if err != nil {
		t.Fatalf("convert again: %v", err)
	}
	if !bytes.Equal(first, fixture) || !bytes.Equal(first, second) {
		t.Fatalf("passthrough changed the document")
	}
}

func TestPassthroughRejectsBrokenFiles(t *testing.T) {
	t.Parallel()
	fixture, err := pdfrender.Text([]byte("x"))
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	cases := map[string][]byte{
		"truncated.pdf": fixture[:len(fixture)/2],
		"html.pdf":      []byte("<html>not a pdf</html>"),
		"empty.pdf":     nil,
	}
	conv, _ := convertout.NewPassthroughBackend().Open(context.Background())
	for name, payload := range cases {
		_, err := conv.Convert(context.Background(), writeFile(t, name, payload))
		var convErr *domain.ConversionError
		if !errors.As(err, &convErr) || convErr.Backend != "passthrough" {
			t.Fatalf("%s: expected passthrough conversion error, got %v", name, err)
		}
	}
	if _, err := conv.Convert(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatalf("missing file should fail")
	}
}

func TestCheckPDFWindows(t *testing.T) {
	t.Parallel()
	padded := append(bytes.Repeat([]byte(" "), 2000), []byte("%PDF-1.7\n...%%EOF\n")...)
	if err := convertout.CheckPDF(padded); err == nil {
		t.Fatalf("header beyond the first 1024 bytes should be rejected")
	}
	trailing := append([]byte("%PDF-1.7\n%%EOF\n"), bytes.Repeat([]byte("x"), 3000)...)
	if err := convertout.CheckPDF(trailing); err == nil {
		t.Fatalf("marker before the last 2048 bytes should be rejected")
	}
}

func TestRenderBackendText(t *testing.T) {
	t.Parallel()
	backend := convertout.NewRenderBackend()
	if !backend.Supports(domain.KindText) || !backend.Supports(domain.KindImage) || backend.Supports(domain.KindLegacyOffice) {
		t.Fatalf("unexpected render support matrix")
	}
	conv, _ := backend.Open(context.Background())
	path := writeFile(t, "notiz.txt", []byte("Hallo\tWelt\n"))
	first, err := conv.Convert(context.Background(), path)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	second, _ := conv.Convert(context.Background(), path)
	if !bytes.Equal(first, second) {
		t.Fatalf("rendering is not deterministic")
	}
	if n := pageCount(t, first); n != 1 {
		t.Fatalf("expected 1 page, got %d", n)
	}
}

func TestRenderBackendImageWithSpoofedExtension(t *testing.T) {
	t.Parallel()
	img := image.NewNRGBA(image.Rect(0, 0, 30, 10))
	for x := 0; x < 30; x++ {
		img.Set(x, 5, color.NRGBA{B: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := writeFile(t, "foto.jpg", buf.Bytes())

	conv, _ := convertout.NewRenderBackend().Open(context.Background())
	pdf, err := conv.Convert(context.Background(), path)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if n := pageCount(t, pdf); n != 1 {
		t.Fatalf("expected 1 page, got %d", n)
	}

	corrupt := writeFile(t, "kaputt.png", []byte("\x89PNG\r\n\x1a\nbroken"))
	if _, err := conv.Convert(context.Background(), corrupt); err == nil {
		t.Fatalf("corrupt image should fail")
	}
}

type fakePlugins struct {
	names   []string
	openErr error
	session *fakeSession
}

func (p fakePlugins) List(context.Context) ([]plugindto.PluginInfo, error) { return nil, nil }
func (p fakePlugins) Doctor(context.Context) ([]plugindto.DoctorResult, error) {
	return nil, nil
}
func (p fakePlugins) Converters(context.Context) ([]plugindto.PluginInfo, error) {
	out := make([]plugindto.PluginInfo, 0, len(p.names))
	for _, name := range p.names {
		out = append(out, plugindto.PluginInfo{Name: name, Enabled: true})
	}
	return out, nil
}
func (p fakePlugins) OpenConverter(context.Context, string) (pluginin.ConverterSession, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}
	return p.session, nil
}

type fakeSession struct {
	delay  time.Duration
	kinds  []string
	closed bool
}

func (s *fakeSession) Convert(ctx context.Context, in plugindto.ConvertInput) (plugindto.ConvertOutput, error) {
	s.kinds = append(s.kinds, in.Kind)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return plugindto.ConvertOutput{}, ctx.Err()
		}
	}
	return plugindto.ConvertOutput{PDF: []byte("%PDF-plugin")}, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func TestPluginSourceNamesBackendsInManifestOrder(t *testing.T) {
	t.Parallel()
	source := convertout.NewPluginSource(fakePlugins{names: []string{"zeta", "alpha"}}, time.Second)
	backends, err := source.Backends(context.Background())
	if err != nil {
		t.Fatalf("backends: %v", err)
	}
	if len(backends) != 2 || backends[0].Name() != "plugin:zeta" || backends[1].Name() != "plugin:alpha" {
		t.Fatalf("unexpected backends %v", backends)
	}
	if !backends[0].Supports(domain.KindLegacyOffice) || backends[0].Supports(domain.KindText) {
		t.Fatalf("plugins convert office documents only")
	}
}

func TestPluginBackendOpenFailureIsUnavailable(t *testing.T) {
	t.Parallel()
	source := convertout.NewPluginSource(fakePlugins{names: []string{"p"}, openErr: errors.New("checksum mismatch")}, time.Second)
	backends, _ := source.Backends(context.Background())
	if _, err := backends[0].Open(context.Background()); !errors.Is(err, domain.ErrToolUnavailable) {
		t.Fatalf("expected ErrToolUnavailable, got %v", err)
	}
}

func TestPluginBackendConvertAndTimeout(t *testing.T) {
	t.Parallel()
	session := &fakeSession{}
	source := convertout.NewPluginSource(fakePlugins{names: []string{"p"}, session: session}, 50*time.Millisecond)
	backends, _ := source.Backends(context.Background())
	conv, err := backends[0].Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	pdf, err := conv.Convert(context.Background(), "/x/brief.docx")
	if err != nil || string(pdf) != "%PDF-plugin" {
		t.Fatalf("convert: %q %v", pdf, err)
	}
	if session.kinds[0] != "office" {
		t.Fatalf("plugin received kind %q", session.kinds[0])
	}

	session.delay = time.Second
	_, err = conv.Convert(context.Background(), "/x/lang.docx")
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if err := conv.Close(); err != nil || !session.closed {
		t.Fatalf("session not closed: %v", err)
	}
}
