package usecase_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"dokureader/internal/modules/plugin/domain"
	"dokureader/internal/modules/plugin/dto"
	pluginport "dokureader/internal/modules/plugin/port/out"
	"dokureader/internal/modules/plugin/service"
	"dokureader/internal/modules/plugin/usecase"
)

type fakeManifestStore struct {
	manifests []domain.Manifest
}

func (s fakeManifestStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type echoSession struct {
	lastPath string
	closed   bool
}

func (s *echoSession) Metadata(context.Context) (domain.Metadata, error) {
	return domain.Metadata{Name: "p1", Version: "1"}, nil
}

func (s *echoSession) Convert(_ context.Context, req domain.ConvertRequest) (domain.ConvertResult, error) {
	s.lastPath = req.Path
	return domain.ConvertResult{PDF: []byte("pdf:" + req.Kind)}, nil
}

func (s *echoSession) Close() error {
	s.closed = true
	return nil
}

type fakeHost struct {
	session *echoSession
}

func (fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return nil }
func (fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "p1", Version: "1"}, nil
}
func (h fakeHost) Start(context.Context, domain.Manifest) (pluginport.Session, error) {
	return h.session, nil
}

func TestUsecaseListDoctorAndConvert(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t)
	session := &echoSession{}
	uc := usecase.NewInteractor(service.NewPluginService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, fakeHost{session: session}))

	list, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "p1" || list[0].Capabilities[0] != "convert" {
		t.Fatalf("unexpected list: %+v", list)
	}

	docs, err := uc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(docs) != 1 || !docs[0].LifecycleOK || !docs[0].ChecksumValid {
		t.Fatalf("unexpected doctor result: %+v", docs)
	}

	converters, err := uc.Converters(context.Background())
	if err != nil {
		t.Fatalf("converters: %v", err)
	}
	if len(converters) != 1 {
		t.Fatalf("expected one converter, got %d", len(converters))
	}

	conv, err := uc.OpenConverter(context.Background(), "p1")
	if err != nil {
		t.Fatalf("open converter: %v", err)
	}
	path := filepath.Join(t.TempDir(), "brief.docx")
	out, err := conv.Convert(context.Background(), dto.ConvertInput{Path: path, Kind: "office"})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if string(out.PDF) != "pdf:office" || session.lastPath != path {
		t.Fatalf("unexpected conversion %q for %s", out.PDF, session.lastPath)
	}
	if err := conv.Close(); err != nil || !session.closed {
		t.Fatalf("session not closed: %v", err)
	}
}

func manifestWithBinary(t *testing.T) domain.Manifest {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "plugin-bin")
	if err := os.WriteFile(binPath, []byte("binary"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	hash := sha256.Sum256([]byte("binary"))
	return domain.Manifest{
		Name:         "p1",
		Version:      "1",
		Binary:       binPath,
		SHA256:       hex.EncodeToString(hash[:]),
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityConvert},
	}
}
