package page

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/entrhq/wtf/pkg/logging"
	"github.com/entrhq/wtf/pkg/webdriver"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("page")
	if err != nil {
		debugLog.Warnf("Failed to initialize page logger, using stderr fallback: %v", err)
	}
}

// Validator is implemented by pages that can check, after construction,
// that the browser really shows them. Validate should return an error
// wrapping ErrInvalidPage (see Invalid) when it does not.
//
// During resolution a page rejected with ErrInvalidPage is skipped and the
// next matching candidate is tried. Any other error, such as a driver
// failure, ends resolution and is returned as it is.
type Validator interface {
	Validate() error
}

type candidate struct {
	name  string
	match Predicate
	build func(*webdriver.Session) any
}

// Registry maps capability interfaces to their candidate implementations.
//
// Registration is expected at startup (typically from init); after that the
// registry is read-only apart from test overrides on a Clone.
type Registry struct {
	mu         sync.RWMutex
	candidates map[reflect.Type][]candidate
	concrete   map[reflect.Type]candidate
	strict     bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStrictMatching makes resolution evaluate every candidate and fail with
// ErrAmbiguousImplementation when more than one matches, instead of taking
// the first match.
func WithStrictMatching() RegistryOption {
	return func(r *Registry) {
		r.strict = true
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		candidates: make(map[reflect.Type][]candidate),
		concrete:   make(map[reflect.Type]candidate),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process registry that page packages register into.
func Default() *Registry {
	return defaultRegistry
}

// Register adds P as a candidate for capability C, after any candidates
// already registered for C. C must be an interface type that P implements.
// When P is a concrete type it also becomes constructible directly via
// Create[P]; constructors that return an interface are only reached through
// matching.
func Register[C, P any](r *Registry, match Predicate, newPage func(*webdriver.Session) P) error {
	capType := reflect.TypeOf((*C)(nil)).Elem()
	pageType := reflect.TypeOf((*P)(nil)).Elem()

	if capType.Kind() != reflect.Interface {
		return fmt.Errorf("register %s: capability %s is not an interface", pageType, capType)
	}
	if !pageType.Implements(capType) {
		return fmt.Errorf("register %s: does not implement %s", pageType, capType)
	}
	if match == nil {
		return fmt.Errorf("register %s for %s: match predicate is required", pageType, capType)
	}
	if newPage == nil {
		return fmt.Errorf("register %s for %s: constructor is required", pageType, capType)
	}

	c := candidate{
		name:  pageType.String(),
		match: match,
		build: func(s *webdriver.Session) any { return newPage(s) },
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates[capType] = append(r.candidates[capType], c)
	if pageType.Kind() != reflect.Interface {
		r.concrete[pageType] = c
	}
	return nil
}

// MustRegister is Register for init functions; it panics on error.
func MustRegister[C, P any](r *Registry, match Predicate, newPage func(*webdriver.Session) P) {
	if err := Register[C](r, match, newPage); err != nil {
		panic(err)
	}
}

// Unregister drops every candidate for capability C. Concrete types stay
// constructible directly.
func Unregister[C any](r *Registry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.candidates, reflect.TypeOf((*C)(nil)).Elem())
}

// Candidates returns the implementation names registered for C, in the
// order they are tried.
func Candidates[C any](r *Registry) []string {
	return r.candidateNames(reflect.TypeOf((*C)(nil)).Elem())
}

func (r *Registry) candidateNames(capability reflect.Type) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cands := r.candidates[capability]
	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.name
	}
	return names
}

// Clone returns an independent copy, so tests can add or drop candidates
// without touching the original.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := &Registry{
		candidates: make(map[reflect.Type][]candidate, len(r.candidates)),
		concrete:   make(map[reflect.Type]candidate, len(r.concrete)),
		strict:     r.strict,
	}
	for capType, cands := range r.candidates {
		clone.candidates[capType] = append([]candidate(nil), cands...)
	}
	for pageType, c := range r.concrete {
		clone.concrete[pageType] = c
	}
	return clone
}

// Create returns a new page object for C bound to session.
//
// If C is a registered concrete page type it is constructed directly.
// Otherwise C's candidates are matched against the session in registration
// order. Errors: ErrSessionNotActive, ErrUnknownCapability,
// ErrNoMatchingImplementation (as a *ResolutionError carrying the URL), or
// the driver's own error when reading browser state fails.
func Create[C any](r *Registry, session *webdriver.Session) (C, error) {
	var zero C
	p, err := r.CreatePage(reflect.TypeOf((*C)(nil)).Elem(), session)
	if err != nil {
		return zero, err
	}
	return p.(C), nil
}

// CreatePage is the untyped form of Create.
func (r *Registry) CreatePage(capability reflect.Type, session *webdriver.Session) (any, error) {
	if session == nil || !session.Active() {
		state := "nil"
		if session != nil {
			state = session.State().String()
		}
		return nil, fmt.Errorf("create %s: %w (state %s)", capability, ErrSessionNotActive, state)
	}

	r.mu.RLock()
	direct, isConcrete := r.concrete[capability]
	cands := append([]candidate(nil), r.candidates[capability]...)
	strict := r.strict
	r.mu.RUnlock()

	if isConcrete {
		debugLog.Debugf("Constructing %s directly for session %s", direct.name, session.ID)
		return construct(direct, session)
	}

	if len(cands) == 0 {
		return nil, &ResolutionError{
			Capability: capability.String(),
			Err:        ErrUnknownCapability,
		}
	}

	return resolve(capability, cands, session, strict)
}

func resolve(capability reflect.Type, cands []candidate, session *webdriver.Session, strict bool) (any, error) {
	driver := session.Driver()

	var (
		chosen   any
		matched  []string
		rejected error
	)
	for _, c := range cands {
		ok, err := c.match(driver)
		if err != nil {
			// Driver failures propagate untouched.
			return nil, err
		}
		if !ok {
			continue
		}

		p, err := construct(c, session)
		if errors.Is(err, ErrInvalidPage) {
			debugLog.Debugf("Skipping %s for %s: %v", c.name, capability, err)
			rejected = err
			continue
		}
		if err != nil {
			return nil, err
		}

		if !strict {
			debugLog.Debugf("Resolved %s to %s for session %s", capability, c.name, session.ID)
			return p, nil
		}
		if len(matched) == 0 {
			chosen = p
		}
		matched = append(matched, c.name)
	}

	if len(matched) == 1 {
		debugLog.Debugf("Resolved %s to %s for session %s", capability, matched[0], session.ID)
		return chosen, nil
	}

	current, err := driver.CurrentURL()
	if err != nil {
		return nil, err
	}

	resErr := &ResolutionError{
		Capability: capability.String(),
		URL:        current,
		Err:        ErrNoMatchingImplementation,
	}
	switch {
	case len(matched) > 1:
		resErr.Err = ErrAmbiguousImplementation
		resErr.Candidates = matched
	case rejected != nil:
		resErr.Err = fmt.Errorf("%w: %w", ErrNoMatchingImplementation, rejected)
	}
	if resErr.Candidates == nil {
		for _, c := range cands {
			resErr.Candidates = append(resErr.Candidates, c.name)
		}
	}

	debugLog.Warnf("%v", resErr)
	return nil, resErr
}

func construct(c candidate, session *webdriver.Session) (any, error) {
	p := c.build(session)
	if v, ok := p.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return p, nil
}
