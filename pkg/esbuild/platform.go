package esbuild

import (
	"runtime"
	"strings"

	sterrors "github.com/starelements/starelements/pkg/errors"
)

// Platform names a build in esbuild's npm package scheme.
type Platform struct {
	OS   string // darwin, linux or win32
	Arch string // x64 or arm64
}

func (p Platform) String() string { return p.OS + "-" + p.Arch }

// Windows reports whether the platform uses a .exe binary at the package root.
func (p Platform) Windows() bool { return p.OS == "win32" }

var systems = map[string]string{
	"darwin":  "darwin",
	"linux":   "linux",
	"windows": "win32",
}

var machines = map[string]string{
	"x86_64":  "x64",
	"amd64":   "x64",
	"arm64":   "arm64",
	"aarch64": "arm64",
}

// PlatformFor maps an operating system and machine name to a Platform.
// Both uname spellings (Darwin, x86_64, aarch64) and Go spellings (darwin,
// amd64, arm64) are accepted, case-insensitively.
func PlatformFor(system, machine string) (Platform, error) {
	osName, okOS := systems[strings.ToLower(system)]
	arch, okArch := machines[strings.ToLower(machine)]
	if !okOS || !okArch {
		return Platform{}, sterrors.New(sterrors.ErrCodeUnsupportedPlatform,
			"unsupported platform: %s/%s", system, machine)
	}
	return Platform{OS: osName, Arch: arch}, nil
}

// CurrentPlatform returns the Platform of the running process.
func CurrentPlatform() (Platform, error) {
	return PlatformFor(runtime.GOOS, runtime.GOARCH)
}
