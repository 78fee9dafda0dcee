// Package integrations provides the HTTP client used to talk to the package
// registry mirror.
//
// # Overview
//
// Every request the bundler makes goes through [Client]: package manifests,
// raw module sources and the esbuild binary itself. The registry-specific
// URL layout lives in the [unpkg] subpackage.
//
// # Errors
//
// Failures are classified so the orchestrator can report them precisely:
//
//   - Non-2xx responses: [errors.ErrCodeHTTPStatus], wrapping an
//     [errors.StatusError] with the URL and status code
//   - Connection failures (DNS, refused, reset): [errors.ErrCodeNetwork]
//   - Per-request deadline exceeded: [errors.ErrCodeTimeout]
//
// # Timeouts and Retries
//
// Each request is bounded by the client's timeout. Connection failures and
// 5xx responses are retryable, but a client created with one attempt (the
// default) never retries.
//
// # Observability
//
// Requests, responses and failures are reported to [observability.HTTP].
package integrations
