package webdriver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/wtf/pkg/config"
)

// PlaywrightLauncher starts browsers through playwright-go. The playwright
// driver process is installed and started on first use and shared by all
// sessions until Close. Browser binaries are installed the first time a
// session launches locally; remote-only use never downloads them.
type PlaywrightLauncher struct {
	mu                sync.Mutex
	pw                *playwright.Playwright
	browsersInstalled bool

	install func(*playwright.RunOptions) error
	run     func(*playwright.RunOptions) (*playwright.Playwright, error)
}

// NewPlaywrightLauncher creates a launcher; nothing is started until Launch.
func NewPlaywrightLauncher() *PlaywrightLauncher {
	return &PlaywrightLauncher{
		install: func(opts *playwright.RunOptions) error { return playwright.Install(opts) },
		run:     func(opts *playwright.RunOptions) (*playwright.Playwright, error) { return playwright.Run(opts) },
	}
}

func (l *PlaywrightLauncher) runOptions(skipBrowsers bool) *playwright.RunOptions {
	return &playwright.RunOptions{
		SkipInstallBrowsers: skipBrowsers,
		Verbose:             false,
		Stdout:              debugLog.Writer(),
		Stderr:              debugLog.Writer(),
	}
}

// start installs and runs playwright once, then makes sure browser binaries
// are present whenever a local launch needs them.
func (l *PlaywrightLauncher) start(remote bool) (*playwright.Playwright, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pw == nil {
		opts := l.runOptions(remote)
		if err := l.install(opts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
		pw, err := l.run(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to start playwright: %w", err)
		}
		l.pw = pw
		l.browsersInstalled = !remote
	}

	if !remote && !l.browsersInstalled {
		debugLog.Infof("Installing playwright browsers for a local launch")
		if err := l.install(l.runOptions(false)); err != nil {
			return nil, fmt.Errorf("failed to install playwright browsers: %w", err)
		}
		l.browsersInstalled = true
	}

	return l.pw, nil
}

// Launch starts (or connects to) a browser and opens one page in a fresh
// context.
func (l *PlaywrightLauncher) Launch(ctx context.Context, opts Options) (Driver, error) {
	pw, err := l.start(opts.RemoteURL != "")
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var browserType playwright.BrowserType
	switch opts.Browser {
	case config.BrowserChromium, "":
		browserType = pw.Chromium
	case config.BrowserFirefox:
		browserType = pw.Firefox
	case config.BrowserWebKit:
		browserType = pw.WebKit
	default:
		return nil, fmt.Errorf("unsupported browser %q", opts.Browser)
	}

	timeoutMs := float64(opts.Timeout.Milliseconds())

	var browser playwright.Browser
	if opts.RemoteURL != "" {
		connectOpts := playwright.BrowserTypeConnectOptions{}
		if timeoutMs > 0 {
			connectOpts.Timeout = playwright.Float(timeoutMs)
		}
		browser, err = browserType.Connect(opts.RemoteURL, connectOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", opts.RemoteURL, err)
		}
	} else {
		browser, err = browserType.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(opts.Headless),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
	}

	contextOpts := playwright.BrowserNewContextOptions{}
	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		contextOpts.Viewport = &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		}
	}
	browserContext, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		browserContext.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	if timeoutMs > 0 {
		page.SetDefaultTimeout(timeoutMs)
	}

	return &playwrightDriver{
		browser: browser,
		context: browserContext,
		page:    page,
	}, nil
}

// Close stops the playwright driver process.
func (l *PlaywrightLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pw == nil {
		return nil
	}
	err := l.pw.Stop()
	l.pw = nil
	if err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

type playwrightDriver struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

func (d *playwrightDriver) Navigate(url string) error {
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (d *playwrightDriver) CurrentURL() (string, error) {
	return d.page.URL(), nil
}

func (d *playwrightDriver) Title() (string, error) {
	return d.page.Title()
}

func (d *playwrightDriver) Fill(selector, value string) error {
	if err := d.page.Locator(selector).First().Fill(value); err != nil {
		return fmt.Errorf("fill %s failed: %w", selector, err)
	}
	return nil
}

func (d *playwrightDriver) Click(selector string) error {
	if err := d.page.Locator(selector).First().Click(); err != nil {
		return fmt.Errorf("click %s failed: %w", selector, err)
	}
	return nil
}

func (d *playwrightDriver) Press(selector, key string) error {
	if err := d.page.Locator(selector).First().Press(key); err != nil {
		return fmt.Errorf("press %s on %s failed: %w", key, selector, err)
	}
	return nil
}

func (d *playwrightDriver) Text(selector string) (string, error) {
	text, err := d.page.Locator(selector).First().TextContent()
	if err != nil {
		return "", fmt.Errorf("text of %s failed: %w", selector, err)
	}
	return text, nil
}

func (d *playwrightDriver) Source() (string, error) {
	return d.page.Content()
}

// Quit closes the page, context and browser, attempting all three.
func (d *playwrightDriver) Quit() error {
	return errors.Join(
		d.page.Close(),
		d.context.Close(),
		d.browser.Close(),
	)
}
