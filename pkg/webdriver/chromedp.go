package webdriver

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/entrhq/wtf/pkg/config"
)

// ChromedpLauncher starts Chromium over the DevTools protocol, or attaches to
// a running one when Options.RemoteURL holds its websocket debugger URL.
type ChromedpLauncher struct{}

// NewChromedpLauncher creates a chromedp launcher.
func NewChromedpLauncher() *ChromedpLauncher {
	return &ChromedpLauncher{}
}

// Launch allocates a browser and opens a tab. ctx bounds startup only; the
// browser lives until the driver quits.
func (l *ChromedpLauncher) Launch(ctx context.Context, opts Options) (Driver, error) {
	if opts.Browser != "" && opts.Browser != config.BrowserChromium {
		return nil, fmt.Errorf("chromedp cannot drive %q", opts.Browser)
	}

	parent := context.WithoutCancel(ctx)

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, opts.RemoteURL)
	} else {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", opts.Headless))
		if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
			allocOpts = append(allocOpts, chromedp.WindowSize(opts.Viewport.Width, opts.Viewport.Height))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, allocOpts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(debugLog.Debugf))
	cancel := func() {
		browserCancel()
		allocCancel()
	}

	var actions []chromedp.Action
	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		actions = append(actions, chromedp.EmulateViewport(int64(opts.Viewport.Width), int64(opts.Viewport.Height)))
	}

	// The first Run starts the browser; it must not carry a deadline or the
	// browser would die with it.
	started := make(chan error, 1)
	go func() {
		started <- chromedp.Run(browserCtx, actions...)
	}()

	select {
	case err := <-started:
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to start chromium: %w", err)
		}
	case <-ctx.Done():
		cancel()
		return nil, ctx.Err()
	}

	return &chromedpDriver{
		ctx:     browserCtx,
		cancel:  cancel,
		timeout: opts.Timeout,
	}, nil
}

type chromedpDriver struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

func (d *chromedpDriver) run(actions ...chromedp.Action) error {
	ctx := d.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(d.ctx, d.timeout)
		defer cancel()
	}
	return chromedp.Run(ctx, actions...)
}

func (d *chromedpDriver) Navigate(url string) error {
	if err := d.run(chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (d *chromedpDriver) CurrentURL() (string, error) {
	var location string
	if err := d.run(chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

func (d *chromedpDriver) Title() (string, error) {
	var title string
	if err := d.run(chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

func (d *chromedpDriver) Fill(selector, value string) error {
	err := d.run(
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("fill %s failed: %w", selector, err)
	}
	return nil
}

func (d *chromedpDriver) Click(selector string) error {
	if err := d.run(chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click %s failed: %w", selector, err)
	}
	return nil
}

// chromedpKeys maps playwright-style key names to the runes chromedp sends.
var chromedpKeys = map[string]string{
	"Enter":      kb.Enter,
	"Tab":        kb.Tab,
	"Backspace":  kb.Backspace,
	"Escape":     kb.Escape,
	"Delete":     kb.Delete,
	"ArrowUp":    kb.ArrowUp,
	"ArrowDown":  kb.ArrowDown,
	"ArrowLeft":  kb.ArrowLeft,
	"ArrowRight": kb.ArrowRight,
	"Home":       kb.Home,
	"End":        kb.End,
	"PageUp":     kb.PageUp,
	"PageDown":   kb.PageDown,
}

func (d *chromedpDriver) Press(selector, key string) error {
	keys := key
	if mapped, ok := chromedpKeys[key]; ok {
		keys = mapped
	}
	if err := d.run(chromedp.SendKeys(selector, keys, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("press %s on %s failed: %w", key, selector, err)
	}
	return nil
}

func (d *chromedpDriver) Text(selector string) (string, error) {
	var text string
	if err := d.run(chromedp.TextContent(selector, &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("text of %s failed: %w", selector, err)
	}
	return text, nil
}

func (d *chromedpDriver) Source() (string, error) {
	var html string
	if err := d.run(chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Quit closes the tab (and the browser, when it was launched here) and
// releases the allocator.
func (d *chromedpDriver) Quit() error {
	err := chromedp.Cancel(d.ctx)
	d.cancel()
	return err
}
