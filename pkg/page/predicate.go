package page

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/entrhq/wtf/pkg/webdriver"
)

// Predicate decides whether a concrete page applies to the browser's
// current state. Errors from the driver must be returned unchanged.
type Predicate func(d webdriver.Driver) (bool, error)

// URLMatches builds a predicate over the live URL.
func URLMatches(test func(url string) bool) Predicate {
	return func(d webdriver.Driver) (bool, error) {
		current, err := d.CurrentURL()
		if err != nil {
			return false, err
		}
		return test(current), nil
	}
}

// URLContains matches when the URL contains substr.
func URLContains(substr string) Predicate {
	return URLMatches(func(u string) bool {
		return strings.Contains(u, substr)
	})
}

// URLHasPrefix matches when the URL starts with prefix.
func URLHasPrefix(prefix string) Predicate {
	return URLMatches(func(u string) bool {
		return strings.HasPrefix(u, prefix)
	})
}

// URLGlob matches the whole URL against a glob pattern such as
// "https://*.example.com/search*". Wildcards cross "/" and ".".
func URLGlob(pattern string) (Predicate, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid URL pattern %q: %w", pattern, err)
	}
	return URLMatches(g.Match), nil
}

// MustURLGlob is URLGlob for package-level registration; it panics on a bad
// pattern.
func MustURLGlob(pattern string) Predicate {
	p, err := URLGlob(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// URLRegexp matches when the URL contains a match of expr.
func URLRegexp(expr string) (Predicate, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL expression %q: %w", expr, err)
	}
	return URLMatches(re.MatchString), nil
}

// HostMatches matches when the URL's host is host or one of its subdomains,
// so "google.com" matches www.google.com but not notgoogle.com.
func HostMatches(host string) Predicate {
	host = strings.ToLower(host)
	return URLMatches(func(raw string) bool {
		u, err := url.Parse(raw)
		if err != nil {
			return false
		}
		h := strings.ToLower(u.Hostname())
		return h == host || strings.HasSuffix(h, "."+host)
	})
}

// TitleContains matches when the document title contains substr.
func TitleContains(substr string) Predicate {
	return func(d webdriver.Driver) (bool, error) {
		title, err := d.Title()
		if err != nil {
			return false, err
		}
		return strings.Contains(title, substr), nil
	}
}

// All matches when every predicate matches. It stops at the first miss.
func All(predicates ...Predicate) Predicate {
	return func(d webdriver.Driver) (bool, error) {
		for _, p := range predicates {
			ok, err := p(d)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Any matches when at least one predicate matches. It stops at the first hit.
func Any(predicates ...Predicate) Predicate {
	return func(d webdriver.Driver) (bool, error) {
		for _, p := range predicates {
			ok, err := p(d)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}

// Always matches any state. Register a fallback page with it last.
func Always() Predicate {
	return func(webdriver.Driver) (bool, error) {
		return true, nil
	}
}
