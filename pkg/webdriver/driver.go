package webdriver

// Driver is the browser capability page objects are written against.
//
// Selectors are CSS selectors. Errors from the underlying browser transport
// are returned as-is so callers can tell a dead browser from a missing
// element.
type Driver interface {
	// Navigate loads url and waits for the load event
	Navigate(url string) error

	// CurrentURL reads the location of the current page from the browser
	CurrentURL() (string, error)

	// Title returns the document title
	Title() (string, error)

	// Fill clears the first matching input and types value into it
	Fill(selector, value string) error

	// Click clicks the first matching element
	Click(selector string) error

	// Press sends a named key (e.g. "Enter") to the first matching element
	Press(selector, key string) error

	// Text returns the text content of the first matching element
	Text(selector string) (string, error)

	// Source returns the serialized HTML of the current document
	Source() (string, error)

	// Quit releases the browser and everything it owns
	Quit() error
}
