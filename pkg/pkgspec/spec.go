// Package pkgspec parses npm-style package specifiers of the form
//
//	[@scope/]name[@version][#entry-path]
//
// and derives the filesystem-safe names used for staging directories and
// bundle outputs.
//
// The "#" fragment is stripped first. A leading "@" always belongs to the
// scope; the version separator is the first "@" after the scope's "/"
// (or, for unscoped names, the first "@"). A missing version means "latest".
//
//	s, _ := pkgspec.Parse("@scope/pkg@1.2.3#dist/x.js")
//	// s.Name == "@scope/pkg", s.Version == "1.2.3", s.Entry == "dist/x.js"
package pkgspec

import (
	"strings"

	"github.com/starelements/starelements/pkg/errors"
)

// DefaultVersion is used when a specifier names no version.
const DefaultVersion = "latest"

// Spec is a parsed package specifier.
type Spec struct {
	Name    string // Package name, including scope (e.g. "@scope/pkg")
	Version string // Version, range or dist-tag; never empty after Parse
	Entry   string // Entry-point override inside the package; empty for auto-detect
}

// String renders the specifier back into its canonical textual form.
func (s Spec) String() string {
	out := s.Name + "@" + s.Version
	if s.Entry != "" {
		out += "#" + s.Entry
	}
	return out
}

// Parse splits raw into name, version and entry override.
func Parse(raw string) (Spec, error) {
	spec := strings.TrimSpace(raw)
	if spec == "" {
		return Spec{}, errors.New(errors.ErrCodeInvalidSpec, "empty package specifier")
	}

	var entry string
	if rest, frag, ok := strings.Cut(spec, "#"); ok {
		if frag == "" {
			return Spec{}, errors.New(errors.ErrCodeInvalidSpec, "empty entry path in %q", raw)
		}
		if err := errors.ValidatePath(frag); err != nil {
			return Spec{}, errors.Wrap(errors.ErrCodeInvalidSpec, err, "invalid entry path in %q", raw)
		}
		spec, entry = rest, frag
	}

	// The scope's own "@" is skipped by searching after the first "/".
	searchFrom := 0
	if strings.HasPrefix(spec, "@") {
		slash := strings.Index(spec, "/")
		if slash == -1 {
			return Spec{}, errors.New(errors.ErrCodeInvalidSpec, "scoped package %q is missing a name", raw)
		}
		searchFrom = slash
	}

	name, version := spec, DefaultVersion
	if at := strings.Index(spec[searchFrom:], "@"); at != -1 {
		at += searchFrom
		name, version = spec[:at], spec[at+1:]
		if version == "" {
			return Spec{}, errors.New(errors.ErrCodeInvalidSpec, "empty version in %q", raw)
		}
	}

	if err := errors.ValidateNpmPackageName(name); err != nil {
		return Spec{}, errors.Wrap(errors.ErrCodeInvalidSpec, err, "invalid package name in %q", raw)
	}

	return Spec{Name: name, Version: version, Entry: entry}, nil
}

// SafeName maps a package name to a single path segment by replacing "/"
// with "__" ("@org/pkg" becomes "@org__pkg").
//
// Two distinct names can collide if a name already contains "__" in the
// right place (e.g. "@a/b__c" and "@a__b/c"); npm does not forbid this, and
// such pairs cannot be bundled into the same output directory.
func SafeName(name string) string {
	return strings.ReplaceAll(name, "/", "__")
}

// BundleFilename returns the deterministic output filename for a package:
// "/" becomes "__", "." becomes "_", and ".bundle.js" is appended.
func BundleFilename(name string) string {
	return strings.ReplaceAll(SafeName(name), ".", "_") + ".bundle.js"
}
