// Package page resolves abstract page capabilities into concrete page objects.
//
// A capability is a Go interface describing what a page can do, such as
//
//	type SearchPage interface {
//	    Search(term string) error
//	    ResultContains(term string) (bool, error)
//	}
//
// Site-specific types implement it and register themselves with a match
// predicate and a constructor taking the session:
//
//	func init() {
//	    page.MustRegister[SearchPage](page.Default(), page.URLContains("google.com"), NewGoogleSearchPage)
//	}
//
// A test then asks for the capability and gets whichever implementation
// matches the page the browser is on:
//
//	search, err := page.Create[SearchPage](page.Default(), session)
//
// # Resolution
//
// Candidates are tried in registration order and the first whose predicate
// matches the live session state wins. When predicates overlap, register
// the more specific page first. A registry built WithStrictMatching instead
// fails with ErrAmbiguousImplementation when more than one candidate matches.
//
// Asking for a concrete page type (page.Create[*GooglePage]) skips matching
// and constructs it directly.
//
// Every call constructs a new page object; nothing is cached.
package page
