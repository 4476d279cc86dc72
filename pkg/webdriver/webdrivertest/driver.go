// Package webdrivertest provides an in-memory webdriver.Driver for tests.
//
// The fake serves HTML from a route table keyed by URL and answers element
// queries by running the CSS selector over that HTML with goquery, so page
// objects can be exercised without a browser.
package webdrivertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/entrhq/wtf/pkg/webdriver"
)

// Driver is a fake webdriver.Driver.
type Driver struct {
	mu     sync.Mutex
	routes map[string]string
	url    string
	err    error

	// QuitErr is returned by Quit
	QuitErr error

	// OnPress runs after a successful Press, outside the driver lock, so it
	// may navigate (e.g. to simulate submitting a form)
	OnPress func(d *Driver, selector, key string)

	// OnClick runs after a successful Click, like OnPress
	OnClick func(d *Driver, selector string)

	values  map[string]string
	history []string
	quits   int
}

// NewDriver creates a fake whose pages are routes (URL → HTML). Navigating
// to a URL without a route yields an empty document at that URL.
func NewDriver(routes map[string]string) *Driver {
	if routes == nil {
		routes = make(map[string]string)
	}
	return &Driver{
		routes: routes,
		url:    "about:blank",
		values: make(map[string]string),
	}
}

// Launcher returns a webdriver.Launcher that hands out d.
func (d *Driver) Launcher() webdriver.Launcher {
	return webdriver.LauncherFunc(func(ctx context.Context, opts webdriver.Options) (webdriver.Driver, error) {
		return d, nil
	})
}

// SetRoute adds or replaces the HTML served at url.
func (d *Driver) SetRoute(url, html string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes[url] = html
}

// Fail makes every later call return err, simulating a dead browser.
// Fail(nil) restores normal behaviour.
func (d *Driver) Fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// Value returns what was last filled into selector.
func (d *Driver) Value(selector string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values[selector]
}

// History returns the URLs navigated to, oldest first.
func (d *Driver) History() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.history...)
}

// Quits returns how many times Quit was called.
func (d *Driver) Quits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quits
}

func (d *Driver) Navigate(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.url = url
	d.history = append(d.history, url)
	return nil
}

func (d *Driver) CurrentURL() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return "", d.err
	}
	return d.url, nil
}

func (d *Driver) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, err := d.document()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}

func (d *Driver) Fill(selector, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.find(selector); err != nil {
		return err
	}
	d.values[selector] = value
	return nil
}

func (d *Driver) Click(selector string) error {
	d.mu.Lock()
	if _, err := d.find(selector); err != nil {
		d.mu.Unlock()
		return err
	}
	hook := d.OnClick
	d.mu.Unlock()

	if hook != nil {
		hook(d, selector)
	}
	return nil
}

func (d *Driver) Press(selector, key string) error {
	d.mu.Lock()
	if _, err := d.find(selector); err != nil {
		d.mu.Unlock()
		return err
	}
	hook := d.OnPress
	d.mu.Unlock()

	if hook != nil {
		hook(d, selector, key)
	}
	return nil
}

func (d *Driver) Text(selector string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel, err := d.find(selector)
	if err != nil {
		return "", err
	}
	return sel.First().Text(), nil
}

func (d *Driver) Source() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return "", d.err
	}
	return d.routes[d.url], nil
}

func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quits++
	return d.QuitErr
}

// document parses the current page. Callers hold d.mu.
func (d *Driver) document() (*goquery.Document, error) {
	if d.err != nil {
		return nil, d.err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(d.routes[d.url]))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", d.url, err)
	}
	return doc, nil
}

// find returns the elements matching selector, or an error when none do.
// Callers hold d.mu.
func (d *Driver) find(selector string) (*goquery.Selection, error) {
	doc, err := d.document()
	if err != nil {
		return nil, err
	}
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("no element matches %q on %s", selector, d.url)
	}
	return sel, nil
}
