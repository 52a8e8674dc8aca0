// internal/core/validation.go
package core

import (
	"net/url"
	"regexp"
	"strings"
)

// Entity set names are alphanumeric plus underscore (publisher prefixes such as new_projects).
var nameValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// IsValidIdentifier checks if a string is a valid entity set or logical name.
// Applies basic format and length checks.
func IsValidIdentifier(name string) bool {
	return nameValidationRegex.MatchString(name) && len(name) > 0 && len(name) <= 64
}

// NormalizeOrgURL trims whitespace and trailing slashes from an environment URL.
func NormalizeOrgURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// IsValidOrgURL reports whether raw is an absolute http(s) URL with a host.
func IsValidOrgURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

// IsValidRowCount checks 0 < n <= max. A non-positive max disables the upper bound.
func IsValidRowCount(n, max int) bool {
	if n < 1 {
		return false
	}
	return max <= 0 || n <= max
}
