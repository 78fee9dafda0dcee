// Package pkg provides the core libraries of the starelements bundler.
//
// # Overview
//
// starelements turns a list of npm package specifiers into self-contained
// ES module bundles built by esbuild, and records what it built in a lock
// file. The pkg directory is organized by stage:
//
//  1. [pkgspec] - specifier grammar and file naming
//  2. [integrations] - registry mirror client ([integrations/unpkg])
//  3. [fetch] - dependency staging
//  4. [esbuild] - binary management, bundling and minification
//  5. [lock] - lock file and integrity hashes
//  6. [pipeline] - orchestration (parse → resolve → bundle → record)
//
// Supporting packages: [config] reads pyproject.toml, [errors] defines the
// coded error taxonomy, [httputil] holds the retry helper, [observability]
// exposes hooks and [buildinfo] carries ldflags version data.
//
// # Data Flow
//
//	pyproject.toml [tool.starelements]
//	         ↓
//	    [pkgspec] parse "name@version#entry"
//	         ↓
//	    [integrations/unpkg] resolve exact version
//	         ↓
//	    [fetch] stage package and dependencies
//	         ↓
//	    [esbuild] bundle into <output>/<name>.bundle.js
//	         ↓
//	    [lock] record version and sha256 integrity
package pkg
