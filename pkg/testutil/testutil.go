// Package testutil holds helpers for browser tests built on webdriver and
// page.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/entrhq/wtf/pkg/logging"
	"github.com/entrhq/wtf/pkg/webdriver"
)

// BrowserTestsEnv enables tests that drive a real browser when set to "1".
const BrowserTestsEnv = "WTF_BROWSER_TESTS"

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("testutil")
	if err != nil {
		debugLog.Warnf("Failed to initialize testutil logger, using stderr fallback: %v", err)
	}
}

// DoAndIgnore runs fn and discards any error or panic it produces. It is
// for teardown steps that must not mask the test's real failure, such as
// logging out of a site the browser may already have left.
//
// It reports whether fn completed without error.
func DoAndIgnore(fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			debugLog.Warnf("Ignored panic: %v", r)
			ok = false
		}
	}()

	if err := fn(); err != nil {
		debugLog.Warnf("Ignored error: %v", err)
		return false
	}
	return true
}

// StartSession opens a session on m and registers a cleanup that closes it
// when the test ends. The test fails immediately if the browser cannot be
// started.
func StartSession(tb testing.TB, m *webdriver.Manager, opts webdriver.Options) *webdriver.Session {
	tb.Helper()

	session, err := m.NewSession(context.Background(), opts)
	if err != nil {
		tb.Fatalf("start browser session: %v", err)
	}
	tb.Cleanup(m.CloseSession)
	return session
}

// SkipWithoutBrowser skips tb in short mode or unless BrowserTestsEnv is
// "1", for tests that need a real browser installed.
func SkipWithoutBrowser(tb testing.TB) {
	tb.Helper()

	if testing.Short() || os.Getenv(BrowserTestsEnv) != "1" {
		tb.Skipf("Skipping browser integration test (set %s=1)", BrowserTestsEnv)
	}
}
