package validation

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrEmptyURL is returned for a blank candidate.
	ErrEmptyURL = errors.New("url is empty")
	// ErrInvalidURL is returned for a non-blank candidate that is not an absolute URL.
	ErrInvalidURL = errors.New("url is not a valid absolute url")
)

// hostSchemes must name a host; every other scheme only needs to be present.
var hostSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"ftp":   true,
}

// IsValidURL reports whether candidate is an absolute URL.
//
// Any scheme is accepted ("file:///etc/hosts", "about:blank"); http, https,
// ws, wss and ftp additionally need a host. Surrounding whitespace is ignored
// for the check only, the candidate itself is never normalized.
func IsValidURL(candidate string) error {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ErrEmptyURL
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme == "" {
		return ErrInvalidURL
	}
	if hostSchemes[strings.ToLower(u.Scheme)] && u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
