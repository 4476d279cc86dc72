// Package webdriver owns the lifecycle of browser sessions used by UI tests.
//
// # Architecture
//
// The package is built around three concepts:
//
//  1. Driver: the element and navigation operations page objects use
//  2. Session: one live Driver with a created → active → closed lifecycle
//  3. Manager: holds the current session for one test worker
//
// Drivers are started by a Launcher. Two are built in: "playwright"
// (chromium, firefox or webkit through playwright-go) and "chromedp"
// (chromium over the DevTools protocol). Both can attach to an already
// running browser through Options.RemoteURL.
//
// # Session Lifecycle
//
//  1. Create: Manager.NewSession launches a driver and makes the session current
//  2. Use: page objects call the session's Driver
//  3. Close: Manager.CloseSession quits the driver; the session is terminal
//
// Every Driver call on a closed session fails with ErrSessionNotActive.
//
// # Parallel Tests
//
// A Manager has exactly one current-session slot. It is meant for
// sequential tests; parallel workers must each use their own Manager.
// Sharing one Manager between parallel tests is not supported: the slot
// would be replaced underneath the other test.
//
// # Example Usage
//
//	manager := webdriver.NewManager()
//	defer manager.Shutdown()
//
//	session, err := manager.NewSession(ctx, webdriver.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer manager.CloseSession()
//
//	err = session.Navigate("https://www.google.com")
package webdriver
