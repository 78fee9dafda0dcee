// Package fetch stages npm packages from a registry mirror into a local
// directory that esbuild can bundle from.
//
// Every package lands in its own subdirectory named by [pkgspec.SafeName]:
//
//	<dest>/
//	    lit/
//	        package.json
//	        index.js
//	    @lit__reactive-element/
//	        package.json
//	        reactive-element.js
//
// [Fetcher.DownloadEntry] stages a single file. [Fetcher.DownloadRecursive]
// and [Fetcher.Stage] walk dependencies and peerDependencies depth-first,
// visiting each (name, requested spec) pair once so diamonds and cycles
// terminate. The first HTTP failure aborts the whole walk; a partly staged
// tree is never handed to the bundler.
package fetch
