package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDBrowser is the identifier for the browser settings section
	SectionIDBrowser = "browser"

	// Driver backends
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"

	// Browser engines
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
	BrowserWebKit   = "webkit"

	defaultDriver         = DriverPlaywright
	defaultBrowser        = BrowserChromium
	defaultHeadless       = true
	defaultTimeout        = 30 * time.Second
	defaultViewportWidth  = 1280
	defaultViewportHeight = 720
)

// BrowserSection holds the settings used to start browser sessions.
//
//	browser:
//	  driver: playwright     # playwright | chromedp
//	  type: chromium         # chromium | firefox | webkit (chromedp: chromium only)
//	  headless: true
//	  remote_url: ""         # connect to a running browser instead of launching one
//	  timeout: 30s           # default timeout for driver operations
//	  viewport_width: 1280
//	  viewport_height: 720
type BrowserSection struct {
	Driver         string
	Browser        string
	Headless       bool
	RemoteURL      string
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	mu             sync.RWMutex
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

// Title returns the section title.
func (s *BrowserSection) Title() string {
	return "Browser Settings"
}

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Configure which browser test sessions start, how it is driven, and its default timeout."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"driver":          s.Driver,
		"type":            s.Browser,
		"headless":        s.Headless,
		"remote_url":      s.RemoteURL,
		"timeout":         s.Timeout.String(),
		"viewport_width":  s.ViewportWidth,
		"viewport_height": s.ViewportHeight,
	}
}

// SetData updates the configuration from the provided data. Values may be
// native YAML types or strings from environment overrides.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "driver":
			s.Driver, err = toString(value)
		case "type":
			s.Browser, err = toString(value)
		case "headless":
			s.Headless, err = toBool(value)
		case "remote_url":
			s.RemoteURL, err = toString(value)
		case "timeout":
			s.Timeout, err = toDuration(value)
		case "viewport_width":
			s.ViewportWidth, err = toInt(value)
		case "viewport_height":
			s.ViewportHeight, err = toInt(value)
		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.Driver {
	case DriverPlaywright, DriverChromedp:
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", s.Driver, DriverPlaywright, DriverChromedp)
	}

	switch s.Browser {
	case BrowserChromium, BrowserFirefox, BrowserWebKit:
	default:
		return fmt.Errorf("unknown browser type %q", s.Browser)
	}
	if s.Driver == DriverChromedp && s.Browser != BrowserChromium {
		return fmt.Errorf("driver %s only supports %s, got %q", DriverChromedp, BrowserChromium, s.Browser)
	}

	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", s.Timeout)
	}
	if s.ViewportWidth < 100 || s.ViewportWidth > 5000 {
		return fmt.Errorf("viewport width must be between 100 and 5000 pixels")
	}
	if s.ViewportHeight < 100 || s.ViewportHeight > 5000 {
		return fmt.Errorf("viewport height must be between 100 and 5000 pixels")
	}

	return nil
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Driver = defaultDriver
	s.Browser = defaultBrowser
	s.Headless = defaultHeadless
	s.RemoteURL = ""
	s.Timeout = defaultTimeout
	s.ViewportWidth = defaultViewportWidth
	s.ViewportHeight = defaultViewportHeight
}

// Browser loads the browser section from r.
func (r *Reader) Browser() (*BrowserSection, error) {
	section := NewBrowserSection()
	if err := r.LoadSection(section); err != nil {
		return nil, err
	}
	return section, nil
}
