package webdriver_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/wtf/pkg/webdriver"
	"github.com/entrhq/wtf/pkg/webdriver/webdrivertest"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "created", webdriver.StateCreated.String())
	assert.Equal(t, "active", webdriver.StateActive.String())
	assert.Equal(t, "closed", webdriver.StateClosed.String())
	assert.Equal(t, "State(7)", webdriver.State(7).String())
}

func TestNewSession_Active(t *testing.T) {
	driver := webdrivertest.NewDriver(nil)
	session := webdriver.NewSession(driver, "chromium")

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "chromium", session.Browser)
	assert.False(t, session.CreatedAt.IsZero())
	assert.Equal(t, webdriver.StateActive, session.State())
	assert.True(t, session.Active())

	require.NoError(t, session.Navigate("http://alpha.example"))
	url, err := session.CurrentURL()
	require.NoError(t, err)
	assert.Equal(t, "http://alpha.example", url)
}

func TestSession_ClosedRejectsEveryOperation(t *testing.T) {
	driver := webdrivertest.NewDriver(map[string]string{
		"http://alpha.example": `<html><head><title>Alpha</title></head><body><input name="q"></body></html>`,
	})
	session := webdriver.NewSession(driver, "chromium")
	require.NoError(t, session.Navigate("http://alpha.example"))

	// Grab the driver before closing, the way a page object would.
	d := session.Driver()

	require.NoError(t, session.Close())
	assert.Equal(t, webdriver.StateClosed, session.State())
	assert.False(t, session.Active())
	assert.Equal(t, 1, driver.Quits())

	ops := map[string]func() error{
		"Navigate":   func() error { return d.Navigate("http://beta.example") },
		"CurrentURL": func() error { _, err := d.CurrentURL(); return err },
		"Title":      func() error { _, err := d.Title(); return err },
		"Fill":       func() error { return d.Fill("input", "x") },
		"Click":      func() error { return d.Click("input") },
		"Press":      func() error { return d.Press("input", "Enter") },
		"Text":       func() error { _, err := d.Text("title"); return err },
		"Source":     func() error { _, err := d.Source(); return err },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), webdriver.ErrSessionNotActive)
		})
	}

	// Closing again does not reach the driver.
	require.NoError(t, session.Close())
	assert.Equal(t, 1, driver.Quits())
}

func TestSession_DriverErrorsPassThrough(t *testing.T) {
	driver := webdrivertest.NewDriver(nil)
	session := webdriver.NewSession(driver, "chromium")

	dead := errors.New("connection refused")
	driver.Fail(dead)

	_, err := session.CurrentURL()
	assert.ErrorIs(t, err, dead)
	assert.NotErrorIs(t, err, webdriver.ErrSessionNotActive)
}

func TestSession_DriverCannotQuit(t *testing.T) {
	driver := webdrivertest.NewDriver(nil)
	session := webdriver.NewSession(driver, "chromium")

	assert.Error(t, session.Driver().Quit())
	assert.True(t, session.Active())
	assert.Zero(t, driver.Quits())
}

func TestSession_CloseReturnsQuitError(t *testing.T) {
	driver := webdrivertest.NewDriver(nil)
	driver.QuitErr = errors.New("browser already gone")
	session := webdriver.NewSession(driver, "chromium")

	assert.ErrorIs(t, session.Close(), driver.QuitErr)
	assert.Equal(t, webdriver.StateClosed, session.State())
}
