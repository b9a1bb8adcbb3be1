package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "vuec.dev/pkg/vuec/internal/model"
)

// ManifestFileName is the cache file written into the batch output directory.
const ManifestFileName = "vuec-manifest.yaml"

// ErrManifestVersion is returned for manifests written by another schema version.
var ErrManifestVersion = errors.New("unsupported manifest version")

// ManifestStore persists the incremental batch cache.
type ManifestStore interface {
	LoadManifest(dir m.Path) (m.Manifest, error)
	SaveManifest(dir m.Path, manifest m.Manifest) error
}

// YAMLManifestStore keeps the manifest as YAML inside the output directory.
type YAMLManifestStore struct{}

// NewYAMLManifestStore constructs a YAMLManifestStore.
func NewYAMLManifestStore() *YAMLManifestStore {
	return &YAMLManifestStore{}
}

// NewManifest returns an empty manifest of the current version.
func NewManifest() m.Manifest {
	return m.Manifest{
		Version: m.ManifestVersion,
		Entries: make(map[m.Path]m.ManifestEntry),
	}
}

// LoadManifest reads the manifest from dir. A missing file yields an empty
// manifest.
func (s *YAMLManifestStore) LoadManifest(dir m.Path) (m.Manifest, error) {
	path := filepath.Join(string(dir), ManifestFileName)

	// #nosec G304 - the manifest lives in the configured output directory
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewManifest(), nil
	}

	if err != nil {
		return m.Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	var manifest m.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return m.Manifest{}, fmt.Errorf("decode manifest %s: %w", path, err)
	}

	if manifest.Version != m.ManifestVersion {
		return m.Manifest{}, fmt.Errorf("%w: %d", ErrManifestVersion, manifest.Version)
	}

	if manifest.Entries == nil {
		manifest.Entries = make(map[m.Path]m.ManifestEntry)
	}

	return manifest, nil
}

// SaveManifest writes manifest to dir, creating dir when needed.
func (s *YAMLManifestStore) SaveManifest(dir m.Path, manifest m.Manifest) error {
	if err := os.MkdirAll(string(dir), dirPerm); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	path := filepath.Join(string(dir), ManifestFileName)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}
