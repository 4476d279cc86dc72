package webdriver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/entrhq/wtf/pkg/config"
	"github.com/entrhq/wtf/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("webdriver")
	if err != nil {
		debugLog.Warnf("Failed to initialize webdriver logger, using stderr fallback: %v", err)
	}
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Options selects and configures the browser a session starts.
type Options struct {
	// Driver names the launcher: config.DriverPlaywright or config.DriverChromedp
	Driver string

	// Browser is the engine: chromium, firefox or webkit
	Browser string

	// Headless runs the browser without a visible window
	Headless bool

	// RemoteURL, when set, connects to a running browser instead of launching one
	RemoteURL string

	// Timeout is the default timeout for driver operations
	Timeout time.Duration

	// Viewport sets the initial viewport size
	Viewport Viewport
}

// DefaultOptions returns the options used when no configuration is present.
func DefaultOptions() Options {
	return optionsFromSection(config.NewBrowserSection())
}

// OptionsFromConfig reads the browser section of r.
func OptionsFromConfig(r *config.Reader) (Options, error) {
	section, err := r.Browser()
	if err != nil {
		return Options{}, err
	}
	return optionsFromSection(section), nil
}

func optionsFromSection(s *config.BrowserSection) Options {
	return Options{
		Driver:    s.Driver,
		Browser:   s.Browser,
		Headless:  s.Headless,
		RemoteURL: s.RemoteURL,
		Timeout:   s.Timeout,
		Viewport: Viewport{
			Width:  s.ViewportWidth,
			Height: s.ViewportHeight,
		},
	}
}

// Launcher starts a browser and returns a driver for it.
type Launcher interface {
	Launch(ctx context.Context, opts Options) (Driver, error)
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, opts Options) (Driver, error)

// Launch calls f.
func (f LauncherFunc) Launch(ctx context.Context, opts Options) (Driver, error) {
	return f(ctx, opts)
}

// Manager owns the current browser session of one test worker.
//
// It is not a pool: there is one current-session slot. Use one Manager per
// parallel worker.
type Manager struct {
	mu        sync.Mutex
	current   *Session
	replaced  []*Session
	launchers map[string]Launcher
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLauncher registers l under name, replacing a built-in launcher of the
// same name.
func WithLauncher(name string, l Launcher) ManagerOption {
	return func(m *Manager) {
		m.launchers[name] = l
	}
}

// NewManager creates a manager with the playwright and chromedp launchers.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		launchers: map[string]Launcher{
			config.DriverPlaywright: NewPlaywrightLauncher(),
			config.DriverChromedp:   NewChromedpLauncher(),
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewSession starts a browser per opts and makes it the current session.
//
// A session that is still current is replaced, not closed; callers that
// want it released call CloseSession first. Replaced sessions are released
// by Shutdown.
func (m *Manager) NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.Driver == "" {
		opts.Driver = config.DriverPlaywright
	}

	m.mu.Lock()
	launcher, ok := m.launchers[opts.Driver]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown driver %q", ErrDriverStartFailure, opts.Driver)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDriverStartFailure, err)
	}

	session := newSession(opts.Browser)
	debugLog.Debugf("Starting session %s (driver=%s browser=%s headless=%t remote=%q)",
		session.ID, opts.Driver, opts.Browser, opts.Headless, opts.RemoteURL)

	driver, err := launcher.Launch(ctx, opts)
	if err != nil {
		debugLog.Errorf("Session %s failed to start: %v", session.ID, err)
		return nil, fmt.Errorf("%w: %s: %w", ErrDriverStartFailure, opts.Driver, err)
	}
	if driver == nil {
		debugLog.Errorf("Session %s failed to start: launcher %s returned no driver", session.ID, opts.Driver)
		return nil, fmt.Errorf("%w: %s: launcher returned no driver", ErrDriverStartFailure, opts.Driver)
	}
	session.activate(driver)

	m.mu.Lock()
	if prev := m.current; prev != nil && prev.Active() {
		debugLog.Warnf("Session %s replaced by %s without being closed", prev.ID, session.ID)
		m.replaced = append(m.replaced, prev)
	}
	m.current = session
	m.mu.Unlock()

	debugLog.Infof("Session %s active", session.ID)
	return session, nil
}

// CurrentSession returns the current session, or false when there is none.
func (m *Manager) CurrentSession() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || !m.current.Active() {
		return nil, false
	}
	return m.current, true
}

// CloseSession closes the current session and clears the slot.
//
// It is safe to call unconditionally from teardown: with no session, or an
// already closed one, it does nothing. Errors and panics from releasing the
// browser are logged and discarded so that cleanup never masks the failure
// of the test that ran before it. This is the only place this package drops
// an error.
func (m *Manager) CloseSession() {
	m.mu.Lock()
	session := m.current
	m.current = nil
	m.mu.Unlock()

	if session == nil {
		return
	}
	if err := releaseQuietly(session); err != nil {
		debugLog.Warnf("Ignoring error while closing session %s: %v", session.ID, err)
		return
	}
	debugLog.Infof("Session %s closed", session.ID)
}

// Shutdown closes the current session, any sessions it replaced, and stops
// launcher runtimes such as the playwright driver process.
func (m *Manager) Shutdown() error {
	m.CloseSession()

	m.mu.Lock()
	replaced := m.replaced
	m.replaced = nil
	launchers := make([]Launcher, 0, len(m.launchers))
	for _, l := range m.launchers {
		launchers = append(launchers, l)
	}
	m.mu.Unlock()

	for _, session := range replaced {
		if err := releaseQuietly(session); err != nil {
			debugLog.Warnf("Ignoring error while closing replaced session %s: %v", session.ID, err)
		}
	}

	var errs []error
	for _, l := range launchers {
		if closer, ok := l.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func releaseQuietly(session *Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while closing: %v", r)
		}
	}()
	return session.close()
}
