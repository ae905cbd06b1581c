package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/viant/afs"
	"golang.org/x/mod/semver"
)

// ManifestFilename is the Cargo manifest name
const ManifestFilename = "Cargo.toml"

// Manifest represents the subset of Cargo.toml used to locate units
type Manifest struct {
	Package      *Package               `toml:"package"`
	Lib          *Target                `toml:"lib"`
	Bins         []*Target              `toml:"bin"`
	Examples     []*Target              `toml:"example"`
	Workspace    *Workspace             `toml:"workspace"`
	Dependencies map[string]interface{} `toml:"dependencies"`
}

// Package represents [package]
type Package struct {
	Name    string      `toml:"name"`
	Version interface{} `toml:"version"` // string or {workspace = true}
	Edition string      `toml:"edition"`
}

// Target represents [lib], [[bin]] or [[example]]
type Target struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// Workspace represents [workspace]
type Workspace struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
}

// ParseManifest decodes Cargo.toml content
func ParseManifest(data []byte) (*Manifest, error) {
	ret := &Manifest{}
	if err := toml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestFilename, err)
	}
	return ret, nil
}

// LoadManifest reads and decodes the manifest at URL
func LoadManifest(ctx context.Context, fs afs.Service, URL string) (*Manifest, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", URL, err)
	}
	ret, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", URL, err)
	}
	return ret, nil
}

// Name returns the normalized package name, empty for virtual manifests
func (m *Manifest) Name() string {
	if m.Package == nil {
		return ""
	}
	return NormalizeName(m.Package.Name)
}

// Version returns the package version, empty when inherited from the workspace
func (m *Manifest) Version() string {
	if m.Package == nil {
		return ""
	}
	if version, ok := m.Package.Version.(string); ok {
		return version
	}
	return ""
}

// DependencyNames returns declared dependency names, normalized
func (m *Manifest) DependencyNames() []string {
	var ret []string
	for name := range m.Dependencies {
		ret = append(ret, NormalizeName(name))
	}
	sort.Strings(ret)
	return ret
}

// NormalizeName converts a package name to the identifier used in paths
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// ValidVersion returns true if version is empty or valid semver
func ValidVersion(version string) bool {
	if version == "" {
		return true
	}
	return semver.IsValid("v" + version)
}
