package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

type Capability string

// CapabilityConvert is the only capability a converter plugin can declare.
const CapabilityConvert Capability = "convert"

var (
	ErrInvalidManifest   = errors.New("invalid plugin manifest")
	ErrPluginNotFound    = errors.New("plugin not found")
	ErrPluginDisabled    = errors.New("plugin is disabled")
	ErrChecksumMismatch  = errors.New("plugin checksum mismatch")
	ErrCapabilityMissing = errors.New("plugin capability missing")
	ErrPluginTimeout     = errors.New("plugin timeout")
	ErrConversionFailed  = errors.New("plugin conversion failed")
)

var sha256Hex = regexp.MustCompile(`^[a-f0-9]{64}$`)

type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Binary       string       `json:"binary"`
	SHA256       string       `json:"sha256"`
	Enabled      bool         `json:"enabled"`
	Capabilities []Capability `json:"capabilities"`
}

// Validate reports every problem of the manifest at once.
func (m Manifest) Validate() error {
	var problems []error
	if strings.TrimSpace(m.Name) == "" {
		problems = append(problems, errors.New("name is required"))
	}
	if m.Version == "" {
		problems = append(problems, errors.New("version is required"))
	}
	if m.Binary == "" {
		problems = append(problems, errors.New("binary is required"))
	}
	if !sha256Hex.MatchString(m.SHA256) {
		problems = append(problems, errors.New("sha256 must be 64 lowercase hex characters"))
	}
	if len(m.Capabilities) == 0 {
		problems = append(problems, errors.New("at least one capability is required"))
	}
	seen := make(map[Capability]bool, len(m.Capabilities))
	for _, c := range m.Capabilities {
		switch {
		case c != CapabilityConvert:
			problems = append(problems, fmt.Errorf("unknown capability %q", c))
		case seen[c]:
			problems = append(problems, fmt.Errorf("duplicate capability %q", c))
		}
		seen[c] = true
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %w", ErrInvalidManifest, m.Name, errors.Join(problems...))
}

func (m Manifest) HasCapability(capability Capability) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Converts reports whether the manifest takes part in document conversion.
func (m Manifest) Converts() bool {
	return m.Enabled && m.HasCapability(CapabilityConvert)
}

// Catalog is a validated manifest list in file order with unique names.
type Catalog struct {
	manifests []Manifest
}

func NewCatalog(manifests []Manifest) (Catalog, error) {
	names := make(map[string]bool, len(manifests))
	for _, m := range manifests {
		if err := m.Validate(); err != nil {
			return Catalog{}, err
		}
		key := strings.ToLower(m.Name)
		if names[key] {
			return Catalog{}, fmt.Errorf("%w: duplicate plugin name %q", ErrInvalidManifest, m.Name)
		}
		names[key] = true
	}
	return Catalog{manifests: manifests}, nil
}

func (c Catalog) All() []Manifest {
	return c.manifests
}

func (c Catalog) Converters() []Manifest {
	var out []Manifest
	for _, m := range c.manifests {
		if m.Converts() {
			out = append(out, m)
		}
	}
	return out
}

// Runnable returns the named manifest if it is enabled and declares capability.
func (c Catalog) Runnable(name string, capability Capability) (Manifest, error) {
	for _, m := range c.manifests {
		if m.Name != name {
			continue
		}
		if !m.Enabled {
			return Manifest{}, fmt.Errorf("%w: %s", ErrPluginDisabled, name)
		}
		if !m.HasCapability(capability) {
			return Manifest{}, fmt.Errorf("%w: %s lacks %s", ErrCapabilityMissing, name, capability)
		}
		return m, nil
	}
	return Manifest{}, fmt.Errorf("%w: %q", ErrPluginNotFound, name)
}

type Metadata struct {
	Name         string
	Version      string
	Capabilities []Capability
}

type ConvertRequest struct {
	Path string
	Kind string
}

func (r ConvertRequest) Validate() error {
	if r.Path == "" {
		return errors.New("document path is required")
	}
	if !filepath.IsAbs(r.Path) {
		return fmt.Errorf("document path must be absolute: %s", r.Path)
	}
	return nil
}

type ConvertResult struct {
	PDF []byte
}
