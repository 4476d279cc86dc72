package page

import (
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/wtf/pkg/webdriver"
)

var (
	// ErrUnknownCapability means nothing was ever registered for the
	// requested type.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrNoMatchingImplementation means no candidate's predicate matched the
	// session, typically because the test is on an unsupported site.
	ErrNoMatchingImplementation = errors.New("no matching implementation")

	// ErrAmbiguousImplementation is returned by strict registries when
	// several candidates match.
	ErrAmbiguousImplementation = errors.New("ambiguous implementation")

	// ErrInvalidPage is for Validator implementations to wrap when the
	// browser is not on the page they model.
	ErrInvalidPage = errors.New("invalid page")

	// ErrSessionNotActive is webdriver.ErrSessionNotActive, re-exported for
	// callers that only import this package.
	ErrSessionNotActive = webdriver.ErrSessionNotActive
)

// ResolutionError describes why a capability could not be resolved. It
// unwraps to one of the sentinel errors above.
type ResolutionError struct {
	// Capability is the requested type
	Capability string

	// URL is the session's location when resolution failed, if known
	URL string

	// Candidates lists the registered implementations in priority order
	Candidates []string

	Err error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "resolve %s", e.Capability)
	if e.URL != "" {
		fmt.Fprintf(&b, " at %s", e.URL)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, " (candidates: %s)", strings.Join(e.Candidates, ", "))
	}
	return b.String()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Invalid returns an error wrapping ErrInvalidPage, for Validate methods.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidPage, fmt.Sprintf(format, args...))
}
