package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"slices"

	sterrors "github.com/starelements/starelements/pkg/errors"
	"github.com/starelements/starelements/pkg/pkgspec"
)

// IntegrityPrefix prefixes every integrity string.
const IntegrityPrefix = "sha256-"

// ComputeIntegrity hashes the file at path and returns "sha256-<hex>".
func ComputeIntegrity(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "open %s", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "read %s", path)
	}
	return IntegrityPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

// DriftKind classifies a mismatch between the lock file and the bundles on disk.
type DriftKind string

const (
	DriftMissing  DriftKind = "missing"
	DriftModified DriftKind = "modified"
)

// Drift is a locked package whose bundle no longer matches its entry.
type Drift struct {
	Name     string
	Path     string
	Kind     DriftKind
	Expected string
	Actual   string
}

// Verify recomputes the integrity of every locked bundle in dir and returns
// the packages that drifted, sorted by name.
func Verify(f *File, dir string) ([]Drift, error) {
	names := make([]string, 0, len(f.Packages))
	for name := range f.Packages {
		names = append(names, name)
	}
	slices.Sort(names)

	var drifts []Drift
	for _, name := range names {
		entry := f.Packages[name]
		path := filepath.Join(dir, pkgspec.BundleFilename(name))

		if _, err := os.Stat(path); os.IsNotExist(err) {
			drifts = append(drifts, Drift{Name: name, Path: path, Kind: DriftMissing, Expected: entry.Integrity})
			continue
		}
		actual, err := ComputeIntegrity(path)
		if err != nil {
			return nil, err
		}
		if actual != entry.Integrity {
			drifts = append(drifts, Drift{Name: name, Path: path, Kind: DriftModified, Expected: entry.Integrity, Actual: actual})
		}
	}
	return drifts, nil
}
