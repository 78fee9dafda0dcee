// Package esbuild drives the esbuild command-line binary: it downloads and
// caches a pinned build for the host platform, and runs it to bundle or
// minify JavaScript.
//
// # Binary Cache
//
// [Manager] fetches the platform build from the @esbuild/<os>-<arch> npm
// package on the registry mirror and installs it at
//
//	$XDG_CACHE_HOME/starelements/bin/esbuild-<version>   (or ~/.cache/...)
//
// The download is written to a uniquely named sibling, verified with
// "esbuild --version" and renamed into place, so concurrent processes never
// observe a half-written binary and a build that fails verification never
// reaches the canonical path.
//
// # Subprocesses
//
// All invocations go through an [Executor]. [ExecExecutor] runs real
// processes; tests substitute a fake that inspects arguments and writes
// output files directly.
//
// # Bundling
//
// [Bundler.BundlePackage] stages a package into a fresh temporary directory
// (removed on every path) and runs
//
//	esbuild <entry> --bundle --format=esm --target=<target> --outfile=<out> [--alias:...] [--minify]
//
// Staged dependencies are passed as --alias flags so bare imports resolve to
// the staged files.
package esbuild
