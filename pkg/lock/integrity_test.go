package lock

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	sterrors "github.com/starelements/starelements/pkg/errors"
)

func TestComputeIntegrity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	os.WriteFile(path, []byte("hello"), 0o644)

	first, err := ComputeIntegrity(path)
	if err != nil {
		t.Fatalf("ComputeIntegrity() error: %v", err)
	}
	want := "sha256-2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if first != want {
		t.Errorf("ComputeIntegrity() = %q, want %q", first, want)
	}

	second, _ := ComputeIntegrity(path)
	if first != second {
		t.Error("ComputeIntegrity() should be deterministic")
	}

	os.WriteFile(path, []byte("hellp"), 0o644)
	changed, _ := ComputeIntegrity(path)
	if changed == first {
		t.Error("changing one byte should change the hash")
	}
	if !strings.HasPrefix(changed, IntegrityPrefix) {
		t.Errorf("ComputeIntegrity() = %q, want sha256- prefix", changed)
	}
}

func TestComputeIntegrityMissingFile(t *testing.T) {
	_, err := ComputeIntegrity(filepath.Join(t.TempDir(), "nope.js"))
	if !sterrors.Is(err, sterrors.ErrCodeFilesystem) {
		t.Errorf("ComputeIntegrity() error = %v, want FILESYSTEM", err)
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		os.WriteFile(p, []byte(content), 0o644)
		h, _ := ComputeIntegrity(p)
		return h
	}

	okHash := write("left-pad.bundle.js", "ok")
	write("@scope__pkg.bundle.js", "changed")
	f := New()
	f.Upsert(LockedPackage{Name: "left-pad", Integrity: okHash})
	f.Upsert(LockedPackage{Name: "@scope/pkg", Integrity: "sha256-old"})
	f.Upsert(LockedPackage{Name: "gone", Integrity: "sha256-x"})

	drifts, err := Verify(f, dir)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if len(drifts) != 2 {
		t.Fatalf("Verify() = %+v, want 2 drifts", drifts)
	}
	if drifts[0].Name != "@scope/pkg" || drifts[0].Kind != DriftModified || drifts[0].Expected != "sha256-old" {
		t.Errorf("drifts[0] = %+v", drifts[0])
	}
	if drifts[1].Name != "gone" || drifts[1].Kind != DriftMissing {
		t.Errorf("drifts[1] = %+v", drifts[1])
	}
	if filepath.Base(drifts[1].Path) != "gone.bundle.js" {
		t.Errorf("drifts[1].Path = %q", drifts[1].Path)
	}
}
