package page

import "github.com/entrhq/wtf/pkg/webdriver"

// Base carries the injected session. Concrete pages embed it:
//
//	type GooglePage struct {
//	    page.Base
//	}
//
//	func NewGooglePage(s *webdriver.Session) *GooglePage {
//	    return &GooglePage{Base: page.NewBase(s)}
//	}
type Base struct {
	session *webdriver.Session
}

// NewBase binds a page to session.
func NewBase(session *webdriver.Session) Base {
	return Base{session: session}
}

// Session returns the session the page was created for.
func (b Base) Session() *webdriver.Session {
	return b.session
}

// Driver returns the session's driver. Calls fail with ErrSessionNotActive
// once the session is closed.
func (b Base) Driver() webdriver.Driver {
	return b.session.Driver()
}
