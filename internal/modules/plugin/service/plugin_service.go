package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dokureader/internal/modules/plugin/domain"
	"dokureader/internal/modules/plugin/dto"
	pluginout "dokureader/internal/modules/plugin/port/out"

	"golang.org/x/sync/errgroup"
)

const doctorParallelism = 4

type PluginService struct {
	store pluginout.ManifestStore
	host  pluginout.Host
}

func NewPluginService(store pluginout.ManifestStore, host pluginout.Host) *PluginService {
	return &PluginService{store: store, host: host}
}

func (s *PluginService) List(ctx context.Context) ([]dto.PluginInfo, error) {
	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return toInfos(catalog.All()), nil
}

// Converters lists enabled plugins with the convert capability in manifest order.
func (s *PluginService) Converters(ctx context.Context) ([]dto.PluginInfo, error) {
	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return toInfos(catalog.Converters()), nil
}

// Doctor checks every manifest concurrently. Results keep manifest order.
func (s *PluginService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, len(manifests))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(doctorParallelism)
	for i, m := range manifests {
		i, m := i, m
		eg.Go(func() error {
			results[i] = s.diagnose(gctx, m)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *PluginService) diagnose(ctx context.Context, m domain.Manifest) dto.DoctorResult {
	result := dto.DoctorResult{Name: m.Name}
	if err := m.Validate(); err != nil {
		result.Error = err.Error()
		return result
	}
	binaryOK := fileExists(m.Binary)
	result.BinaryReachable = binaryOK
	if !binaryOK {
		result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		return result
	}
	if err := checksumMatches(m.Binary, m.SHA256); err != nil {
		result.Error = "checksum mismatch"
		return result
	}
	result.ChecksumValid = true
	if m.Enabled && s.host != nil {
		if err := s.host.CheckLifecycle(ctx, m); err != nil {
			result.Error = err.Error()
		} else {
			result.LifecycleOK = true
		}
	}
	return result
}

// OpenConverter starts the named plugin and returns a session bound to it.
func (s *PluginService) OpenConverter(ctx context.Context, name string) (*ConverterSession, error) {
	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	manifest, err := catalog.Runnable(name, domain.CapabilityConvert)
	if err != nil {
		return nil, err
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return nil, err
	}
	if s.host == nil {
		return nil, fmt.Errorf("plugin host is not configured")
	}
	session, err := s.host.Start(ctx, manifest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPluginTimeout, name)
		}
		return nil, err
	}
	return &ConverterSession{name: name, session: session}, nil
}

type ConverterSession struct {
	name    string
	session pluginout.Session
}

func (c *ConverterSession) Convert(ctx context.Context, req domain.ConvertRequest) (domain.ConvertResult, error) {
	if err := req.Validate(); err != nil {
		return domain.ConvertResult{}, err
	}
	result, err := c.session.Convert(ctx, req)
	if err != nil {
		return domain.ConvertResult{}, err
	}
	if len(result.PDF) == 0 {
		return domain.ConvertResult{}, fmt.Errorf("%w: %s returned no pdf", domain.ErrConversionFailed, c.name)
	}
	return result, nil
}

func (c *ConverterSession) Close() error {
	return c.session.Close()
}

func (s *PluginService) catalog(ctx context.Context) (domain.Catalog, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return domain.Catalog{}, err
	}
	return domain.NewCatalog(manifests)
}

func toInfos(manifests []domain.Manifest) []dto.PluginInfo {
	out := make([]dto.PluginInfo, 0, len(manifests))
	for _, m := range manifests {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, dto.PluginInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Capabilities: caps})
	}
	return out
}

func checksumMatches(path string, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	defer f.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return fmt.Errorf("hash plugin binary: %w", err)
	}
	actual := hex.EncodeToString(hash.Sum(nil))
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
