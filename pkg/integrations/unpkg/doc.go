// Package unpkg resolves package metadata and raw files from an unpkg-style
// registry mirror.
//
// unpkg serves every published npm package by name and version:
//
//	GET <registry>/<name>@<version>/package.json   manifest
//	GET <registry>/<name>@<version>/<path>         raw file
//
// The version segment may be an exact version, a dist-tag such as "latest",
// or a semver range; the mirror answers with the manifest of whatever it
// resolves to. [Client.ResolveVersion] turns that into a pinned version
// string.
//
// # Entry Points
//
// [EntryPoint] picks the file that should be bundled from a manifest. ESM
// fields win over CommonJS ones:
//
//  1. exports.import (string)
//  2. exports["."].import
//  3. exports["."].default
//  4. exports (string shorthand)
//  5. module
//  6. main
//  7. index.js
//
// A leading "./" is stripped from the result.
package unpkg
