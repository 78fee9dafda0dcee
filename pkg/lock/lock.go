// Package lock reads and writes starelements.lock, the record of exact
// package versions and bundle hashes produced by the last successful run.
//
// The file is indented JSON:
//
//	{
//	  "version": 1,
//	  "esbuild_version": "0.24.2",
//	  "packages": {
//	    "left-pad": {
//	      "name": "left-pad",
//	      "version": "1.3.0",
//	      "integrity": "sha256-…",
//	      "source_url": "https://unpkg.com/left-pad@1.3.0",
//	      "bundled_at": "2024-05-01T12:00:00Z"
//	    }
//	  }
//	}
//
// There is no locking against concurrent writers; one bundle run per
// project at a time is assumed.
package lock

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	sterrors "github.com/starelements/starelements/pkg/errors"
)

// FormatVersion is the lock file schema version.
const FormatVersion = 1

// DefaultFilename is the lock file name at the project root.
const DefaultFilename = "starelements.lock"

// File is the decoded lock file.
type File struct {
	Version        int                      `json:"version"`
	EsbuildVersion string                   `json:"esbuild_version"`
	Packages       map[string]LockedPackage `json:"packages"`
}

// LockedPackage records one bundled package.
type LockedPackage struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Integrity string `json:"integrity"`
	SourceURL string `json:"source_url"`
	BundledAt string `json:"bundled_at"`
}

// New returns an empty lock file.
func New() *File {
	return &File{Version: FormatVersion, Packages: make(map[string]LockedPackage)}
}

// Upsert records p, replacing any entry with the same name.
func (f *File) Upsert(p LockedPackage) {
	if f.Packages == nil {
		f.Packages = make(map[string]LockedPackage)
	}
	f.Packages[p.Name] = p
}

// Timestamp formats t the way bundled_at is stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Read loads the lock file at path. A missing file yields an empty lock.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "read %s", path)
	}

	f := New()
	if err := json.Unmarshal(data, f); err != nil {
		return nil, sterrors.Wrap(sterrors.ErrCodeInvalidLockFile, err, "parse %s", path)
	}
	if f.Packages == nil {
		f.Packages = make(map[string]LockedPackage)
	}
	return f, nil
}

// Write stores f at path as indented JSON with a trailing newline. The
// content is written to a sibling temp file and renamed into place.
func Write(f *File, path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f); err != nil {
		return sterrors.Wrap(sterrors.ErrCodeInternal, err, "encode lock file")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "create %s", dir)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		os.Remove(tmp)
		return sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "write %s", path)
	}
	return nil
}
