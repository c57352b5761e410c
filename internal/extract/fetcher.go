package extract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/naozine/nz-html-fetch/pkg/htmlfetch"
)

// FetcherOptions configures the shared headless-browser instance
type FetcherOptions struct {
	BinaryPath string        // headless browser binary; empty for auto-detect
	Stealth    bool          // bot-detection evasion
	Proxy      string        // proxy address
	NavTimeout time.Duration // per-navigation timeout
}

// Fetcher renders pages in a shared headless-browser instance. The browser
// is started lazily on first use and reused across sequential jobs; each
// fetch navigates a fresh page so no state bleeds between articles. Not
// safe for concurrent use; the worker loop is the only caller.
type Fetcher struct {
	opts    FetcherOptions
	mu      sync.Mutex
	fetcher *htmlfetch.Fetcher
}

// NewFetcher creates a fetcher without starting the browser
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 30 * time.Second
	}
	return &Fetcher{opts: opts}
}

func (f *Fetcher) ensureStarted() (*htmlfetch.Fetcher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetcher != nil {
		return f.fetcher, nil
	}

	var fetcherOpts []htmlfetch.Option
	if f.opts.BinaryPath != "" {
		fetcherOpts = append(fetcherOpts, htmlfetch.WithBrowserPath(f.opts.BinaryPath))
	}
	if f.opts.Proxy != "" {
		fetcherOpts = append(fetcherOpts, htmlfetch.WithProxy(f.opts.Proxy))
	}
	fetcherOpts = append(fetcherOpts, htmlfetch.WithStealth(f.opts.Stealth))

	fetcher := htmlfetch.New(fetcherOpts...)
	if err := fetcher.Start(); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	f.fetcher = fetcher
	return fetcher, nil
}

// FetchHTML renders url and returns the captured markup after DOM-ready.
// Waiting for full network idle is deliberately avoided to bound latency on
// script-heavy pages.
func (f *Fetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	fetcher, err := f.ensureStarted()
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	navCtx, cancel := context.WithTimeout(ctx, f.opts.NavTimeout)
	defer cancel()

	result, err := fetcher.Fetch(navCtx, url)
	if err != nil {
		// A navigation timeout with a live parent is a property of the
		// page, not of the process; do not leak the context sentinel to
		// callers that key retry decisions on it.
		if navCtx.Err() != nil && ctx.Err() == nil {
			return "", &FetchError{URL: url, Err: fmt.Errorf("navigation timed out after %s", f.opts.NavTimeout)}
		}
		return "", &FetchError{URL: url, Err: err}
	}

	return result.HTML, nil
}

// Close shuts down the browser instance if it was started
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetcher == nil {
		return nil
	}

	err := f.fetcher.Close()
	f.fetcher = nil
	return err
}
