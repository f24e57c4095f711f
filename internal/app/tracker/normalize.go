package tracker

import (
	"net/url"
	"strings"
	"time"
)

// DateLayout is the only accepted date format.
const DateLayout = "2006-01-02"

const maxDomainLength = 253

// NormalizeDomain lower-cases raw, reduces a URL to its host and strips a
// leading "www.". It reports false when nothing usable is left.
func NormalizeDomain(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", false
		}
		s = u.Hostname()
	} else {
		if i := strings.IndexAny(s, "/?#"); i >= 0 {
			s = s[:i]
		}
		if host, _, found := strings.Cut(s, ":"); found {
			s = host
		}
	}

	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimSuffix(s, ".")

	if s == "" || len(s) > maxDomainLength || strings.ContainsAny(s, " \t@") {
		return "", false
	}

	return s, true
}

// ValidDate reports whether s is a real calendar day in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
