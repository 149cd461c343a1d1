package httpfetch

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RenderOptions tunes a browser-rendered fetch.
type RenderOptions struct {
	// WaitFor is a CSS selector the renderer waits to appear before
	// extracting text. Empty means render and extract immediately.
	WaitFor string
	// Timeout bounds page load and the WaitFor wait. Zero uses a default.
	Timeout time.Duration
}

// Renderer extracts visible page text after running a page's JavaScript,
// for doc sites that render content client-side.
type Renderer interface {
	Render(ctx context.Context, url string, opts RenderOptions) (string, error)
	Close() error
}

// RodRenderer is a Renderer backed by a headless Chrome instance launched
// and driven via go-rod.
type RodRenderer struct {
	browser *rod.Browser
}

// NewRodRenderer launches a headless browser and returns a Renderer bound
// to it. Callers must call Close when done to terminate the browser
// process.
func NewRodRenderer() (*RodRenderer, error) {
	controlURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return nil, err
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return &RodRenderer{browser: browser}, nil
}

// Render loads url in the headless browser, optionally waits for a
// selector, and returns the rendered page's visible text.
func (r *RodRenderer) Render(ctx context.Context, url string, opts RenderOptions) (string, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return "", err
	}
	defer page.Close()

	if opts.WaitFor != "" {
		el, err := page.Element(opts.WaitFor)
		if err == nil {
			_ = el.WaitVisible()
		}
	}

	body, err := page.Element("body")
	if err != nil {
		return "", err
	}
	return body.Text()
}

// Close terminates the underlying browser process.
func (r *RodRenderer) Close() error {
	return r.browser.Close()
}
