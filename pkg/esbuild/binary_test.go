package esbuild

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	sterrors "github.com/starelements/starelements/pkg/errors"
)

func newTestManager(t *testing.T, platform Platform, dl Downloader, exec Executor) *Manager {
	t.Helper()
	m, err := NewManager(ManagerConfig{
		Version:    "0.24.2",
		BaseURL:    "https://unpkg.com/",
		CacheDir:   t.TempDir(),
		Platform:   &platform,
		Downloader: dl,
		Executor:   exec,
	})
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	return m
}

func TestBinaryURL(t *testing.T) {
	tests := []struct {
		platform Platform
		want     string
	}{
		{Platform{"linux", "x64"}, "https://unpkg.com/@esbuild/linux-x64@0.24.2/bin/esbuild"},
		{Platform{"darwin", "arm64"}, "https://unpkg.com/@esbuild/darwin-arm64@0.24.2/bin/esbuild"},
		{Platform{"win32", "x64"}, "https://unpkg.com/@esbuild/win32-x64@0.24.2/esbuild.exe"},
		{Platform{"win32", "arm64"}, "https://unpkg.com/@esbuild/win32-arm64@0.24.2/esbuild.exe"},
	}

	for _, tt := range tests {
		m := newTestManager(t, tt.platform, nil, nil)
		if got := m.BinaryURL(); got != tt.want {
			t.Errorf("BinaryURL(%v) = %q, want %q", tt.platform, got, tt.want)
		}
	}
}

func TestCachedPath(t *testing.T) {
	m := newTestManager(t, Platform{"linux", "x64"}, nil, nil)
	if filepath.Base(m.CachedPath()) != "esbuild-0.24.2" {
		t.Errorf("CachedPath() = %q", m.CachedPath())
	}
	if filepath.Dir(m.CachedPath()) != m.BinDir() {
		t.Errorf("CachedPath() should live in BinDir()")
	}

	w := newTestManager(t, Platform{"win32", "x64"}, nil, nil)
	if filepath.Base(w.CachedPath()) != "esbuild-0.24.2.exe" {
		t.Errorf("CachedPath() = %q, want .exe suffix on win32", w.CachedPath())
	}
}

func TestDefaultCacheDir(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := DefaultCacheDir()
	if err != nil {
		t.Fatalf("DefaultCacheDir() error: %v", err)
	}
	if dir != filepath.Join(custom, "starelements") {
		t.Errorf("DefaultCacheDir() = %q", dir)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	dir, err = DefaultCacheDir()
	if err != nil {
		t.Fatalf("DefaultCacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if dir != filepath.Join(home, ".cache", "starelements") {
		t.Errorf("DefaultCacheDir() = %q", dir)
	}
}

func TestEnsureUsesCachedBinary(t *testing.T) {
	dl := &fakeDownloader{}
	exec := &fakeExecutor{}
	m := newTestManager(t, Platform{"linux", "x64"}, dl, exec)

	if err := os.MkdirAll(m.BinDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(m.CachedPath(), []byte("bin"), 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := m.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	if path != m.CachedPath() {
		t.Errorf("Ensure() = %q, want %q", path, m.CachedPath())
	}
	if len(dl.calls) != 0 || len(exec.calls) != 0 {
		t.Error("cached binary should not be downloaded or verified again")
	}
}

func TestEnsureDownloadsAndInstalls(t *testing.T) {
	payload := []byte("\x7fELF esbuild")
	dl := &fakeDownloader{data: payload}
	exec := &fakeExecutor{run: func(_ context.Context, cmd Cmd) (Output, error) {
		if len(cmd.Args) != 1 || cmd.Args[0] != "--version" {
			t.Errorf("verify args = %v", cmd.Args)
		}
		return Output{Stdout: []byte("0.24.2\n")}, nil
	}}
	m := newTestManager(t, Platform{"linux", "x64"}, dl, exec)

	path, err := m.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	if path != m.CachedPath() {
		t.Errorf("Ensure() = %q", path)
	}
	if dl.calls[0] != m.BinaryURL() {
		t.Errorf("downloaded %q, want %q", dl.calls[0], m.BinaryURL())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("installed binary = %q", data)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("installed binary mode = %v, want executable", info.Mode())
	}
	assertOnlyFile(t, m.BinDir(), filepath.Base(path))
}

func TestEnsureConcurrentCallersDownloadOnce(t *testing.T) {
	dl := &fakeDownloader{data: []byte("esbuild")}
	exec := &fakeExecutor{run: func(context.Context, Cmd) (Output, error) {
		return Output{Stdout: []byte("0.24.2\n")}, nil
	}}
	m := newTestManager(t, Platform{"linux", "x64"}, dl, exec)

	const callers = 8
	var wg sync.WaitGroup
	paths := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			paths[i], errs[i] = m.Ensure(context.Background())
		}()
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("Ensure() #%d error: %v", i, errs[i])
		}
		if paths[i] != m.CachedPath() {
			t.Errorf("Ensure() #%d = %q", i, paths[i])
		}
	}
	if len(dl.calls) != 1 {
		t.Errorf("downloads = %d, want 1", len(dl.calls))
	}
	assertOnlyFile(t, m.BinDir(), filepath.Base(m.CachedPath()))
}

func TestEnsureVerificationFailureLeavesNothing(t *testing.T) {
	dl := &fakeDownloader{data: []byte("<html>not a binary</html>")}
	exec := &fakeExecutor{run: func(context.Context, Cmd) (Output, error) {
		return Output{ExitCode: 126, Stderr: []byte("exec format error")}, nil
	}}
	m := newTestManager(t, Platform{"linux", "x64"}, dl, exec)

	_, err := m.Ensure(context.Background())
	if !sterrors.Is(err, sterrors.ErrCodeVerificationFailed) {
		t.Fatalf("Ensure() error = %v, want VERIFICATION_FAILED", err)
	}
	if _, err := os.Stat(m.CachedPath()); !os.IsNotExist(err) {
		t.Error("canonical cache path should not exist after failed verification")
	}
	assertOnlyFile(t, m.BinDir(), "")
}

func TestEnsureWrongVersionFailsVerification(t *testing.T) {
	dl := &fakeDownloader{data: []byte("bin")}
	exec := &fakeExecutor{run: func(context.Context, Cmd) (Output, error) {
		return Output{Stdout: []byte("0.19.0\n")}, nil
	}}
	m := newTestManager(t, Platform{"linux", "x64"}, dl, exec)

	if _, err := m.Ensure(context.Background()); !sterrors.Is(err, sterrors.ErrCodeVerificationFailed) {
		t.Errorf("Ensure() error = %v, want VERIFICATION_FAILED", err)
	}
}

func TestEnsureDownloadErrorPropagates(t *testing.T) {
	dl := &fakeDownloader{err: errNotFound}
	m := newTestManager(t, Platform{"linux", "x64"}, dl, &fakeExecutor{})

	_, err := m.Ensure(context.Background())
	if !sterrors.Is(err, sterrors.ErrCodeHTTPStatus) {
		t.Errorf("Ensure() error = %v, want HTTP_STATUS", err)
	}
	if _, err := os.Stat(m.CachedPath()); !os.IsNotExist(err) {
		t.Error("nothing should be installed after a failed download")
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name string
		out  Output
		err  error
		want bool
	}{
		{"match", Output{Stdout: []byte("0.24.2\n")}, nil, true},
		{"other version", Output{Stdout: []byte("0.23.0\n")}, nil, false},
		{"non-zero exit", Output{Stdout: []byte("0.24.2"), ExitCode: 1}, nil, false},
		{"exec error", Output{}, os.ErrPermission, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{run: func(context.Context, Cmd) (Output, error) { return tt.out, tt.err }}
			m := newTestManager(t, Platform{"linux", "x64"}, nil, exec)
			if got := m.Verify(context.Background(), "/bin/esbuild"); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClear(t *testing.T) {
	m := newTestManager(t, Platform{"linux", "x64"}, nil, nil)

	n, err := m.Clear()
	if err != nil || n != 0 {
		t.Fatalf("Clear() on empty cache = %d, %v", n, err)
	}

	os.MkdirAll(m.BinDir(), 0o755)
	os.WriteFile(filepath.Join(m.BinDir(), "esbuild-0.24.2"), []byte("a"), 0o755)
	os.WriteFile(filepath.Join(m.BinDir(), "esbuild-0.23.0"), []byte("b"), 0o755)

	n, err = m.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}
	assertOnlyFile(t, m.BinDir(), "")
}

// assertOnlyFile fails unless dir holds exactly the named file, or nothing
// when name is empty.
func assertOnlyFile(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if name == "" && len(names) != 0 {
		t.Errorf("%s contains %v, want nothing", dir, names)
	}
	if name != "" && (len(names) != 1 || names[0] != name) {
		t.Errorf("%s contains %v, want only %s", dir, names, name)
	}
}
