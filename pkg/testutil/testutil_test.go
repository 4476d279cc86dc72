package testutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/wtf/pkg/webdriver"
	"github.com/entrhq/wtf/pkg/webdriver/webdrivertest"
)

func TestDoAndIgnore(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
		want bool
	}{
		{"success", func() error { return nil }, true},
		{"error", func() error { return errors.New("no logout link") }, false},
		{"panic", func() error { panic("nil page") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ok bool
			assert.NotPanics(t, func() { ok = DoAndIgnore(tt.fn) })
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestDoAndIgnore_ClosedSession(t *testing.T) {
	driver := webdrivertest.NewDriver(nil)
	session := webdriver.NewSession(driver, "chromium")
	require.NoError(t, session.Close())

	ok := DoAndIgnore(func() error {
		return session.Navigate("https://example.com/logout")
	})
	assert.False(t, ok)
}

func TestStartSession_ClosesOnCleanup(t *testing.T) {
	driver := webdrivertest.NewDriver(nil)
	manager := webdriver.NewManager(webdriver.WithLauncher("fake", driver.Launcher()))
	opts := webdriver.DefaultOptions()
	opts.Driver = "fake"

	var session *webdriver.Session
	t.Run("test", func(t *testing.T) {
		session = StartSession(t, manager, opts)
		assert.True(t, session.Active())

		current, ok := manager.CurrentSession()
		require.True(t, ok)
		assert.Same(t, session, current)
	})

	require.NotNil(t, session)
	assert.Equal(t, webdriver.StateClosed, session.State())
	assert.Equal(t, 1, driver.Quits())

	_, ok := manager.CurrentSession()
	assert.False(t, ok)
}

func TestStartSession_FailsTest(t *testing.T) {
	manager := webdriver.NewManager(webdriver.WithLauncher("broken",
		webdriver.LauncherFunc(func(ctx context.Context, opts webdriver.Options) (webdriver.Driver, error) {
			return nil, errors.New("executable doesn't exist")
		})))
	opts := webdriver.DefaultOptions()
	opts.Driver = "broken"

	tb := &recordingTB{TB: t}
	func() {
		defer func() { _ = recover() }()
		StartSession(tb, manager, opts)
	}()

	assert.True(t, tb.failed)
	assert.Contains(t, tb.msg, "driver start failure")
	assert.Contains(t, tb.msg, "executable doesn't exist")
}

func TestSkipWithoutBrowser(t *testing.T) {
	t.Setenv(BrowserTestsEnv, "")

	var skipped bool
	t.Run("gated", func(t *testing.T) {
		defer func() { skipped = t.Skipped() }()
		SkipWithoutBrowser(t)
	})
	assert.True(t, skipped)
}

// recordingTB records Fatalf and unwinds with a panic instead of failing
// the enclosing test.
type recordingTB struct {
	testing.TB
	failed bool
	msg    string
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Fatalf(format string, args ...any) {
	r.failed = true
	r.msg = fmt.Sprintf(format, args...)
	panic(errFatal)
}

var errFatal = errors.New("fatal")
