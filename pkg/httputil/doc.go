// Package httputil provides HTTP utilities for the registry client.
//
// # Retry
//
// [Retry] wraps a request with a bounded number of attempts. Only failures
// wrapped in [RetryableError] (connection errors, 5xx responses) are
// retried; everything else, including 4xx responses, is returned at once.
//
// The bundler does not retry by default: [Attempts] turns the configured
// number of extra retries into an attempt count, and a project that sets
// nothing gets exactly one attempt per request.
//
//	err := httputil.Retry(ctx, httputil.Attempts(cfg.Retries), time.Second, func() error {
//	    return fetch(ctx)
//	})
package httputil
