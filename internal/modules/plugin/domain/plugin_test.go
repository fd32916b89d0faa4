package domain_test

import (
	"errors"
	"strings"
	"testing"

	"dokureader/internal/modules/plugin/domain"
)

func validManifest() domain.Manifest {
	return domain.Manifest{
		Name:         "officetext",
		Version:      "1.0.0",
		Binary:       "/opt/plugins/officetext",
		SHA256:       strings.Repeat("a", 64),
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityConvert},
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	if err := validManifest().Validate(); err != nil {
		t.Fatalf("valid manifest rejected: %v", err)
	}

	cases := map[string]func(*domain.Manifest){
		"missing name":       func(m *domain.Manifest) { m.Name = "" },
		"missing version":    func(m *domain.Manifest) { m.Version = "" },
		"missing binary":     func(m *domain.Manifest) { m.Binary = "" },
		"uppercase checksum": func(m *domain.Manifest) { m.SHA256 = strings.Repeat("A", 64) },
		"short checksum":     func(m *domain.Manifest) { m.SHA256 = "abc" },
		"no capabilities":    func(m *domain.Manifest) { m.Capabilities = nil },
		"unknown capability": func(m *domain.Manifest) { m.Capabilities = []domain.Capability{"command"} },
		"duplicate capability": func(m *domain.Manifest) {
			m.Capabilities = []domain.Capability{domain.CapabilityConvert, domain.CapabilityConvert}
		},
	}
	for name, mutate := range cases {
		m := validManifest()
		mutate(&m)
		if err := m.Validate(); !errors.Is(err, domain.ErrInvalidManifest) {
			t.Fatalf("%s: expected ErrInvalidManifest, got %v", name, err)
		}
	}
}

func TestManifestValidateReportsAllProblems(t *testing.T) {
	t.Parallel()
	m := validManifest()
	m.Version = ""
	m.SHA256 = "xyz"
	err := m.Validate()
	if err == nil || !strings.Contains(err.Error(), "version") || !strings.Contains(err.Error(), "sha256") {
		t.Fatalf("expected both problems in %v", err)
	}
}

func TestCatalog(t *testing.T) {
	t.Parallel()
	first := validManifest()
	first.Name = "zeta"
	off := validManifest()
	off.Name = "off"
	off.Enabled = false
	last := validManifest()
	last.Name = "alpha"

	catalog, err := domain.NewCatalog([]domain.Manifest{first, off, last})
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	conv := catalog.Converters()
	if len(conv) != 2 || conv[0].Name != "zeta" || conv[1].Name != "alpha" {
		t.Fatalf("unexpected converters %+v", conv)
	}
	if _, err := catalog.Runnable("off", domain.CapabilityConvert); !errors.Is(err, domain.ErrPluginDisabled) {
		t.Fatalf("expected ErrPluginDisabled, got %v", err)
	}
	if _, err := catalog.Runnable("missing", domain.CapabilityConvert); !errors.Is(err, domain.ErrPluginNotFound) {
		t.Fatalf("expected ErrPluginNotFound, got %v", err)
	}
	if m, err := catalog.Runnable("alpha", domain.CapabilityConvert); err != nil || m.Name != "alpha" {
		t.Fatalf("runnable alpha: %+v %v", m, err)
	}

	dup := validManifest()
	dup.Name = "ZETA"
	if _, err := domain.NewCatalog([]domain.Manifest{first, dup}); !errors.Is(err, domain.ErrInvalidManifest) {
		t.Fatalf("case-insensitive duplicate names should be rejected, got %v", err)
	}
}

func TestManifestConverts(t *testing.T) {
	t.Parallel()
	m := validManifest()
	if !m.Converts() {
		t.Fatalf("enabled convert plugin should convert")
	}
	m.Enabled = false
	if m.Converts() {
		t.Fatalf("disabled plugin should not convert")
	}
}

func TestConvertRequestValidate(t *testing.T) {
	t.Parallel()
	if err := (domain.ConvertRequest{Path: "relative.docx"}).Validate(); err == nil {
		t.Fatalf("relative path should be rejected")
	}
	if err := (domain.ConvertRequest{}).Validate(); err == nil {
		t.Fatalf("empty path should be rejected")
	}
}
