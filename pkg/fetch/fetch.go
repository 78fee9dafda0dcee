package fetch

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	sterrors "github.com/starelements/starelements/pkg/errors"
	"github.com/starelements/starelements/pkg/integrations/unpkg"
	"github.com/starelements/starelements/pkg/pkgspec"
)

// Registry is the part of the registry client the fetcher needs.
// [unpkg.Client] implements it.
type Registry interface {
	FetchManifest(ctx context.Context, name, versionOrTag string) (*unpkg.Manifest, error)
	FetchFile(ctx context.Context, name, version, path string) ([]byte, error)
}

// Package is one staged package.
type Package struct {
	Name    string // npm name
	Spec    string // version spec it was requested with
	Version string // version the registry resolved Spec to
	Entry   string // entry path inside the package
	Path    string // absolute path of the staged entry file
}

// Rel returns the entry file path relative to the staging root, in the
// "./<safe>/<file>" form esbuild accepts for aliases.
func (p Package) Rel() string {
	return "./" + pkgspec.SafeName(p.Name) + "/" + path.Base(p.Entry)
}

// Staging describes a populated staging directory.
type Staging struct {
	Dir      string
	Root     Package
	Packages []Package // in visit order, Root first
}

// Dependencies returns every staged package except the root.
func (s *Staging) Dependencies() []Package {
	if len(s.Packages) <= 1 {
		return nil
	}
	return s.Packages[1:]
}

// Fetcher downloads package files into staging directories.
type Fetcher struct {
	registry Registry
	logger   *log.Logger
}

// New creates a Fetcher. A nil logger discards output.
func New(registry Registry, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Fetcher{registry: registry, logger: logger}
}

// DownloadEntry stages the entry file of name@version and returns its path.
// With a non-empty entryOverride the manifest is never fetched.
func (f *Fetcher) DownloadEntry(ctx context.Context, name, version, destDir, entryOverride string) (string, error) {
	entry := entryOverride
	if entry == "" {
		m, err := f.registry.FetchManifest(ctx, name, version)
		if err != nil {
			return "", err
		}
		entry = m.EntryPoint()
	}
	pkgDir := filepath.Join(destDir, pkgspec.SafeName(name))
	return f.writeEntry(ctx, name, version, entry, pkgDir)
}

// DownloadRecursive stages name@version with all of its dependencies and
// returns the path of the root entry file.
func (f *Fetcher) DownloadRecursive(ctx context.Context, name, version, destDir string) (string, error) {
	s, err := f.Stage(ctx, name, version, destDir)
	if err != nil {
		return "", err
	}
	return s.Root.Path, nil
}

type visitKey struct {
	name, spec string
}

// Stage walks the dependency graph of name@version depth-first, staging
// each package's package.json and entry file under destDir.
//
// Traversal is deduplicated by (name, requested spec), but each name is
// staged at most once: the root always wins, then the first version
// reached. A later spec resolving to another version of a staged name is
// still traversed for its dependencies but never overwrites staged files.
func (f *Fetcher) Stage(ctx context.Context, name, version, destDir string) (*Staging, error) {
	staging := &Staging{Dir: destDir}
	visited := make(map[visitKey]bool)
	staged := make(map[string]bool)
	stack := []visitKey{{name, version}}

	for len(stack) > 0 {
		key := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[key] {
			continue
		}
		visited[key] = true

		m, err := f.registry.FetchManifest(ctx, key.name, key.spec)
		if err != nil {
			return nil, err
		}
		if staged[key.name] {
			f.logger.Debug("package already staged", "name", key.name, "spec", key.spec, "version", m.Version)
		} else {
			pkg, err := f.stageOne(ctx, key.name, key.spec, m, destDir)
			if err != nil {
				return nil, err
			}
			staged[key.name] = true
			staging.Packages = append(staging.Packages, pkg)
		}

		requires := m.Requires()
		names := make([]string, 0, len(requires))
		for dep := range requires {
			names = append(names, dep)
		}
		// Pushed in reverse so dependencies pop in sorted order.
		slices.Sort(names)
		for i := len(names) - 1; i >= 0; i-- {
			dep := visitKey{names[i], requires[names[i]]}
			if !visited[dep] {
				stack = append(stack, dep)
			}
		}
	}

	staging.Root = staging.Packages[0]
	f.logger.Debug("staged packages", "root", name, "count", len(staging.Packages))
	return staging, nil
}

func (f *Fetcher) stageOne(ctx context.Context, name, spec string, m *unpkg.Manifest, destDir string) (Package, error) {
	version := m.Version
	if version == "" {
		version = spec
	}

	pkgDir := filepath.Join(destDir, pkgspec.SafeName(name))
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		return Package{}, sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "create %s", pkgDir)
	}
	manifestPath := filepath.Join(pkgDir, "package.json")
	if err := os.WriteFile(manifestPath, m.Raw, 0o644); err != nil {
		return Package{}, sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "write %s", manifestPath)
	}

	entry := m.EntryPoint()
	p, err := f.writeEntry(ctx, name, version, entry, pkgDir)
	if err != nil {
		return Package{}, err
	}
	f.logger.Debug("staged package", "name", name, "spec", spec, "version", version, "entry", entry)

	return Package{
		Name:    name,
		Spec:    spec,
		Version: version,
		Entry:   entry,
		Path:    p,
	}, nil
}

func (f *Fetcher) writeEntry(ctx context.Context, name, version, entry, pkgDir string) (string, error) {
	data, err := f.registry.FetchFile(ctx, name, version, entry)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		return "", sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "create %s", pkgDir)
	}
	dest := filepath.Join(pkgDir, path.Base(entry))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "write %s", dest)
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return dest, nil
	}
	return abs, nil
}
