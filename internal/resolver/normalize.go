package resolver

import (
	"errors"
	nurl "net/url"
	"strings"
)

// Caller input errors. These are the only errors Resolve surfaces for a
// syntactically valid request; neither ever produces a record.
var (
	ErrInvalidURL        = errors.New("invalid URL format")
	ErrUnsupportedDomain = errors.New("URL must point to an Avito listing page")
)

// sourceDomainMarker must appear in the hostname of accepted URLs
// (avito.ru, m.avito.ru, www.avito.ru and friends).
const sourceDomainMarker = "avito"

// NormalizeURL canonicalizes an arbitrary input string into the form
// used as the listing's uniqueness key: lowercase host, http/https
// scheme (https assumed when missing), path preserved, query and
// fragment dropped. The function is pure and idempotent.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidURL
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
	case strings.HasPrefix(s, "//"):
		s = "https:" + s
	case strings.Contains(s, "://"):
		// Explicit non-http scheme.
		return "", ErrInvalidURL
	default:
		s = "https://" + s
	}

	u, err := nurl.Parse(s)
	if err != nil {
		return "", ErrInvalidURL
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrInvalidURL
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", ErrInvalidURL
	}

	if !strings.Contains(host, sourceDomainMarker) {
		return "", ErrUnsupportedDomain
	}

	return scheme + "://" + host + u.EscapedPath(), nil
}
