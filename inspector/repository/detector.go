package repository

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
)

// DiscoverOptions controls which targets become units
type DiscoverOptions struct {
	IncludeExamples bool // add examples/*.rs and [[example]] targets
}

// Option customizes a Detector
type Option func(*Detector)

// WithLogger sets detector logger
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithFileSystem sets the file system used to read manifests
func WithFileSystem(fs afs.Service) Option {
	return func(d *Detector) {
		if fs != nil {
			d.fs = fs
		}
	}
}

// Detector identifies Cargo project roots and the units they declare
type Detector struct {
	fs     afs.Service
	logger *slog.Logger
}

// New creates a new project detector instance
func New(options ...Option) *Detector {
	ret := &Detector{fs: afs.New(), logger: slog.Default()}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// DetectProject identifies the project root for the given path: the outermost
// directory with a workspace manifest, otherwise the nearest directory with a manifest
func (d *Detector) DetectProject(ctx context.Context, location string) (*Project, error) {
	absPath, err := filepath.Abs(location)
	if err != nil {
		return nil, err
	}
	object, err := d.fs.Object(ctx, absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to locate %v: %w", absPath, err)
	}
	startDir := absPath
	if !object.IsDir() {
		startDir = filepath.Dir(absPath)
	}
	rootPath := d.findProjectRoot(ctx, startDir)
	if rootPath == "" {
		return nil, fmt.Errorf("failed to detect project: no %s found above %v", ManifestFilename, absPath)
	}
	manifest, err := LoadManifest(ctx, d.fs, filepath.Join(rootPath, ManifestFilename))
	if err != nil {
		return nil, err
	}
	info := &Project{
		RootPath:  rootPath,
		Name:      manifest.Name(),
		Workspace: manifest.Workspace != nil,
		Manifest:  manifest,
	}
	relPath, err := filepath.Rel(rootPath, absPath)
	if err != nil {
		relPath = filepath.Base(absPath)
	}
	info.RelativePath = filepath.ToSlash(relPath)
	return info, nil
}

// findProjectRoot searches up from startDir for Cargo manifests
func (d *Detector) findProjectRoot(ctx context.Context, startDir string) string {
	nearest := ""
	dir := startDir
	for {
		manifestPath := filepath.Join(dir, ManifestFilename)
		if ok, _ := d.fs.Exists(ctx, manifestPath); ok {
			if nearest == "" {
				nearest = dir
			}
			if manifest, err := LoadManifest(ctx, d.fs, manifestPath); err == nil && manifest.Workspace != nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nearest
}

// Discover returns units declared by the manifest in root: workspace members in
// declaration order (glob patterns expanded), or the single crate itself
func (d *Detector) Discover(ctx context.Context, root string, options DiscoverOptions) ([]*Unit, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	manifest, err := LoadManifest(ctx, d.fs, filepath.Join(root, ManifestFilename))
	if err != nil {
		return nil, err
	}
	var units []*Unit
	if manifest.Package != nil {
		units = append(units, d.crateUnits(ctx, root, manifest, options)...)
	}
	if manifest.Workspace == nil {
		return units, nil
	}
	members, err := d.workspaceMembers(root, manifest.Workspace)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		if member == root {
			continue
		}
		memberManifest, err := LoadManifest(ctx, d.fs, filepath.Join(member, ManifestFilename))
		if err != nil {
			d.logger.Warn("skipping workspace member", "member", member, "error", err)
			continue
		}
		if memberManifest.Package == nil {
			continue
		}
		units = append(units, d.crateUnits(ctx, member, memberManifest, options)...)
	}
	return units, nil
}

// workspaceMembers expands member patterns into directories, exclusions removed
func (d *Detector) workspaceMembers(root string, workspace *Workspace) ([]string, error) {
	excluded := make(map[string]bool)
	for _, exclude := range workspace.Exclude {
		excluded[filepath.Join(root, exclude)] = true
	}
	var ret []string
	seen := make(map[string]bool)
	for _, member := range workspace.Members {
		matches, err := filepath.Glob(filepath.Join(root, member))
		if err != nil {
			return nil, fmt.Errorf("invalid workspace member %q: %w", member, err)
		}
		for _, match := range matches {
			if excluded[match] || seen[match] {
				continue
			}
			seen[match] = true
			ret = append(ret, match)
		}
	}
	return ret, nil
}

// crateUnits returns the bin, lib and optionally example targets of a crate
func (d *Detector) crateUnits(ctx context.Context, crateDir string, manifest *Manifest, options DiscoverOptions) []*Unit {
	name := manifest.Name()
	version := manifest.Version()
	if !ValidVersion(version) {
		d.logger.Warn("invalid crate version", "crate", name, "version", version)
	}
	var units []*Unit
	seen := make(map[string]bool)
	add := func(unitName, rel string, kind Kind) {
		location := filepath.Join(crateDir, filepath.FromSlash(rel))
		if seen[location] {
			return
		}
		if ok, _ := d.fs.Exists(ctx, location); !ok {
			return
		}
		seen[location] = true
		units = append(units, &Unit{Name: unitName, Path: location, Root: crateDir, Kind: kind, Version: version})
	}

	add(name, "src/main.rs", KindBin)
	for _, bin := range manifest.Bins {
		if bin.Path != "" {
			add(targetName(bin, name), bin.Path, KindBin)
		}
	}
	lib := "src/lib.rs"
	libName := name
	if manifest.Lib != nil {
		if manifest.Lib.Path != "" {
			lib = manifest.Lib.Path
		}
		libName = targetName(manifest.Lib, name)
	}
	add(libName, lib, KindLib)

	if !options.IncludeExamples {
		return units
	}
	for _, example := range manifest.Examples {
		if example.Path != "" {
			add(targetName(example, name), example.Path, KindExample)
		}
	}
	matches, _ := filepath.Glob(filepath.Join(crateDir, "examples", "*.rs"))
	for _, match := range matches {
		rel, err := filepath.Rel(crateDir, match)
		if err != nil {
			continue
		}
		add(NormalizeName(strings.TrimSuffix(filepath.Base(match), ".rs")), filepath.ToSlash(rel), KindExample)
	}
	return units
}

func targetName(target *Target, fallback string) string {
	if target.Name == "" {
		return fallback
	}
	return NormalizeName(target.Name)
}
