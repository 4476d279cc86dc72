package webdriver

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotActive is returned for any use of a session that is not
	// in the active state.
	ErrSessionNotActive = errors.New("session not active")

	// ErrDriverStartFailure wraps the reason a browser could not be launched
	// or connected to.
	ErrDriverStartFailure = errors.New("driver start failure")
)

// State is the lifecycle state of a Session.
type State int

const (
	StateCreated State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is a handle to one live browser. It is used by reference and
// never copied. A session handed out by a Manager is closed only by it.
type Session struct {
	// ID uniquely identifies the session in logs
	ID string

	// Browser names the engine behind the driver (chromium, firefox, webkit)
	Browser string

	// CreatedAt is when the session was requested
	CreatedAt time.Time

	mu     sync.RWMutex
	state  State
	driver Driver
}

func newSession(browser string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		Browser:   browser,
		CreatedAt: time.Now(),
		state:     StateCreated,
	}
}

// NewSession wraps an already started driver in an active session that no
// Manager tracks. It is meant for custom harnesses and tests, which release
// it with Close.
func NewSession(driver Driver, browser string) *Session {
	s := newSession(browser)
	s.activate(driver)
	return s
}

func (s *Session) activate(driver Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.driver = driver
	s.state = StateActive
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Active reports whether the session can be used.
func (s *Session) Active() bool {
	return s.State() == StateActive
}

// use returns the live driver, or ErrSessionNotActive.
func (s *Session) use() (Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateActive {
		return nil, fmt.Errorf("%w: session %s is %s", ErrSessionNotActive, s.ID, s.state)
	}
	return s.driver, nil
}

// Driver returns the session's driver. Every call made through it checks
// the session state first, so page objects that outlive the session fail
// with ErrSessionNotActive instead of touching a dead browser.
func (s *Session) Driver() Driver {
	return sessionDriver{s}
}

// Navigate loads url in the session's browser.
func (s *Session) Navigate(url string) error {
	return s.Driver().Navigate(url)
}

// CurrentURL reads the live location from the browser.
func (s *Session) CurrentURL() (string, error) {
	return s.Driver().CurrentURL()
}

// Close releases a session built with NewSession. Sessions handed out by a
// Manager are released with Manager.CloseSession, which also clears the slot.
func (s *Session) Close() error {
	return s.close()
}

// close moves the session to StateClosed and quits the driver. Only the
// first call reaches the driver.
func (s *Session) close() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	driver := s.driver
	s.state = StateClosed
	s.driver = nil
	s.mu.Unlock()

	if driver == nil {
		return nil
	}
	return driver.Quit()
}

// sessionDriver guards every Driver call with the session state.
type sessionDriver struct {
	s *Session
}

func (d sessionDriver) Navigate(url string) error {
	driver, err := d.s.use()
	if err != nil {
		return err
	}
	return driver.Navigate(url)
}

func (d sessionDriver) CurrentURL() (string, error) {
	driver, err := d.s.use()
	if err != nil {
		return "", err
	}
	return driver.CurrentURL()
}

func (d sessionDriver) Title() (string, error) {
	driver, err := d.s.use()
	if err != nil {
		return "", err
	}
	return driver.Title()
}

func (d sessionDriver) Fill(selector, value string) error {
	driver, err := d.s.use()
	if err != nil {
		return err
	}
	return driver.Fill(selector, value)
}

func (d sessionDriver) Click(selector string) error {
	driver, err := d.s.use()
	if err != nil {
		return err
	}
	return driver.Click(selector)
}

func (d sessionDriver) Press(selector, key string) error {
	driver, err := d.s.use()
	if err != nil {
		return err
	}
	return driver.Press(selector, key)
}

func (d sessionDriver) Text(selector string) (string, error) {
	driver, err := d.s.use()
	if err != nil {
		return "", err
	}
	return driver.Text(selector)
}

func (d sessionDriver) Source() (string, error) {
	driver, err := d.s.use()
	if err != nil {
		return "", err
	}
	return driver.Source()
}

// Quit is not available through a session; use Manager.CloseSession.
func (d sessionDriver) Quit() error {
	return fmt.Errorf("session %s: drivers are released by closing the session", d.s.ID)
}
