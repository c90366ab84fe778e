package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Canonicalize applies a deterministic normalization to a URL, producing a canonical form.
// It maps equivalent URL spellings to a single canonical representation.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - An empty path becomes "/"
//   - Path is cleaned (trailing slashes removed, except for root "/")
//   - Fragments are removed
//   - Query parameters are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url)) == Canonicalize(url)
//   - Context-free: does not depend on crawl history
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	// "https://host" and "https://host/" name the same page
	if canonical.Path == "" && canonical.Opaque == "" && canonical.Host != "" {
		canonical.Path = "/"
		canonical.RawPath = ""
	}

	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
		canonical.RawPath = stripTrailingSlash(canonical.RawPath)
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""

	canonical.RawQuery = ""
	canonical.ForceQuery = false

	return canonical
}

// Normalize parses raw as an absolute URL and returns its canonical form.
// It fails with *InvalidURLError when raw cannot be parsed or when the
// parsed URL lacks a scheme or a host.
func Normalize(raw string) (url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return url.URL{}, &InvalidURLError{
			Raw:     raw,
			Message: err.Error(),
			Cause:   ErrCauseUnparsable,
		}
	}
	return validate(raw, Canonicalize(*parsed))
}

// Resolve joins a possibly-relative reference against base, strips the
// query string and fragment, and validates the result the same way
// Normalize does.
func Resolve(base url.URL, ref string) (url.URL, error) {
	refURL, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return url.URL{}, &InvalidURLError{
			Raw:     ref,
			Message: err.Error(),
			Cause:   ErrCauseUnparsable,
		}
	}
	resolved := base.ResolveReference(refURL)
	return validate(ref, Canonicalize(*resolved))
}

// SameHost reports whether a and b point at the same host (hostname and
// port) after canonicalization.
func SameHost(a, b url.URL) bool {
	return Canonicalize(a).Host == Canonicalize(b).Host
}

// IsHTTP reports whether u uses the http or https scheme.
func IsHTTP(u url.URL) bool {
	scheme := lowerASCII(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func validate(raw string, u url.URL) (url.URL, error) {
	if u.Scheme == "" {
		return url.URL{}, &InvalidURLError{
			Raw:     raw,
			Message: fmt.Sprintf("%q has no scheme", raw),
			Cause:   ErrCauseMissingScheme,
		}
	}
	if u.Host == "" {
		return url.URL{}, &InvalidURLError{
			Raw:     raw,
			Message: fmt.Sprintf("%q has no host", raw),
			Cause:   ErrCauseMissingHost,
		}
	}
	return u, nil
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// stripTrailingSlash removes trailing slashes from a path.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
