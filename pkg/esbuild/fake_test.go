package esbuild

import (
	"context"
	"sync"

	sterrors "github.com/starelements/starelements/pkg/errors"
)

// fakeExecutor records invocations and answers them with run.
type fakeExecutor struct {
	mu    sync.Mutex
	calls []Cmd
	run   func(ctx context.Context, cmd Cmd) (Output, error)
}

func (f *fakeExecutor) Run(ctx context.Context, cmd Cmd) (Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()
	if f.run == nil {
		return Output{}, nil
	}
	return f.run(ctx, cmd)
}

func (f *fakeExecutor) last() Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fakeDownloader struct {
	mu    sync.Mutex
	data  []byte
	err   error
	calls []string
}

func (d *fakeDownloader) GetBytes(_ context.Context, url string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, url)
	return d.data, d.err
}

type staticBinary struct {
	path string
	err  error
}

func (b staticBinary) Ensure(context.Context) (string, error) { return b.path, b.err }

var errNotFound = sterrors.Wrap(sterrors.ErrCodeHTTPStatus,
	&sterrors.StatusError{URL: "https://unpkg.com/@esbuild/linux-x64@0.24.2/bin/esbuild", StatusCode: 404}, "GET")
