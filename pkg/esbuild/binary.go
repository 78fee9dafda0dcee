package esbuild

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	sterrors "github.com/starelements/starelements/pkg/errors"
)

const (
	// DefaultVersion is the esbuild release used when none is configured.
	DefaultVersion = "0.24.2"

	DefaultDownloadTimeout = 60 * time.Second
	DefaultVerifyTimeout   = 5 * time.Second

	appName = "starelements"
)

// Downloader fetches a URL into memory. [integrations.Client] implements it.
type Downloader interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// ManagerConfig configures a [Manager]. Zero values select defaults.
type ManagerConfig struct {
	Version         string
	BaseURL         string
	CacheDir        string    // root of the binary cache; bin/ is created below it
	Platform        *Platform // nil selects CurrentPlatform
	Downloader      Downloader
	Executor        Executor
	DownloadTimeout time.Duration
	VerifyTimeout   time.Duration
	Logger          *log.Logger
}

// Manager locates, downloads and verifies the esbuild binary.
type Manager struct {
	version         string
	baseURL         string
	cacheDir        string
	platform        Platform
	downloader      Downloader
	exec            Executor
	downloadTimeout time.Duration
	verifyTimeout   time.Duration
	logger          *log.Logger

	installs singleflight.Group
}

// NewManager creates a Manager. It fails with UNSUPPORTED_PLATFORM when no
// platform is given and the host has no esbuild build.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	m := &Manager{
		version:         cfg.Version,
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		cacheDir:        cfg.CacheDir,
		downloader:      cfg.Downloader,
		exec:            cfg.Executor,
		downloadTimeout: cfg.DownloadTimeout,
		verifyTimeout:   cfg.VerifyTimeout,
		logger:          cfg.Logger,
	}
	if cfg.Platform != nil {
		m.platform = *cfg.Platform
	} else {
		p, err := CurrentPlatform()
		if err != nil {
			return nil, err
		}
		m.platform = p
	}
	if m.version == "" {
		m.version = DefaultVersion
	}
	if m.baseURL == "" {
		m.baseURL = "https://unpkg.com"
	}
	if m.cacheDir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		m.cacheDir = dir
	}
	if m.exec == nil {
		m.exec = ExecExecutor{}
	}
	if m.downloadTimeout <= 0 {
		m.downloadTimeout = DefaultDownloadTimeout
	}
	if m.verifyTimeout <= 0 {
		m.verifyTimeout = DefaultVerifyTimeout
	}
	if m.logger == nil {
		m.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return m, nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/starelements, falling back to
// ~/.cache/starelements.
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "locate home directory")
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Version returns the pinned esbuild version.
func (m *Manager) Version() string { return m.version }

// Platform returns the platform binaries are fetched for.
func (m *Manager) Platform() Platform { return m.platform }

// BinDir returns the directory holding cached binaries.
func (m *Manager) BinDir() string { return filepath.Join(m.cacheDir, "bin") }

// BinaryURL returns the registry URL of the platform binary.
func (m *Manager) BinaryURL() string {
	pkg := m.baseURL + "/@esbuild/" + m.platform.String() + "@" + m.version
	if m.platform.Windows() {
		return pkg + "/esbuild.exe"
	}
	return pkg + "/bin/esbuild"
}

// CachedPath returns where the binary for the pinned version is installed.
func (m *Manager) CachedPath() string {
	name := "esbuild-" + m.version
	if m.platform.Windows() {
		name += ".exe"
	}
	return filepath.Join(m.BinDir(), name)
}

// Ensure returns the path of a usable esbuild binary, downloading and
// verifying it on first use.
func (m *Manager) Ensure(ctx context.Context) (string, error) {
	path := m.CachedPath()
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return path, nil
	}

	// Concurrent callers share one download per cached path.
	v, err, _ := m.installs.Do(path, func() (any, error) {
		return m.install(ctx, path)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *Manager) install(ctx context.Context, path string) (string, error) {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return path, nil
	}

	url := m.BinaryURL()
	m.logger.Info("downloading esbuild", "version", m.version, "platform", m.platform)

	dctx, cancel := context.WithTimeout(ctx, m.downloadTimeout)
	data, err := m.download(dctx, url)
	cancel()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(m.BinDir(), 0o755); err != nil {
		return "", sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "create %s", m.BinDir())
	}
	tmp := filepath.Join(m.BinDir(), ".esbuild-"+uuid.NewString()+".tmp")
	if err := writeExecutable(tmp, data); err != nil {
		os.Remove(tmp)
		return "", err
	}

	if !m.Verify(ctx, tmp) {
		os.Remove(tmp)
		return "", sterrors.New(sterrors.ErrCodeVerificationFailed,
			"esbuild %s from %s failed verification", m.version, url)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "install %s", path)
	}

	m.logger.Debug("installed esbuild", "path", path, "bytes", len(data))
	return path, nil
}

func (m *Manager) download(ctx context.Context, url string) ([]byte, error) {
	if m.downloader == nil {
		return nil, sterrors.New(sterrors.ErrCodeInternal, "no downloader configured for %s", url)
	}
	data, err := m.downloader.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, sterrors.New(sterrors.ErrCodeVerificationFailed, "empty download from %s", url)
	}
	return data, nil
}

func writeExecutable(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o755); err != nil {
		return sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "write %s", path)
	}
	if err := os.Chmod(path, 0o755); err != nil {
		return sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "chmod %s", path)
	}
	return nil
}

// Verify runs "<path> --version" and reports whether it exits cleanly and
// prints the pinned version.
func (m *Manager) Verify(ctx context.Context, path string) bool {
	ctx, cancel := context.WithTimeout(ctx, m.verifyTimeout)
	defer cancel()

	out, err := m.exec.Run(ctx, Cmd{Path: path, Args: []string{"--version"}})
	if err != nil {
		m.logger.Debug("esbuild verification failed", "path", path, "error", err)
		return false
	}
	return out.ExitCode == 0 && strings.Contains(string(out.Stdout), m.version)
}

// Clear removes every cached binary and returns how many were removed.
func (m *Manager) Clear() (int, error) {
	entries, err := os.ReadDir(m.BinDir())
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "read %s", m.BinDir())
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(m.BinDir(), e.Name())); err != nil {
			return count, sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "remove %s", e.Name())
		}
		count++
	}
	return count, nil
}
