// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^[#+]?[0-9]{2,11}$`)

// IsPhone reports whether s is a bare phone number: an optional leading
// '#' or '+' followed by 2 to 11 digits and nothing else.
func IsPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return strings.Contains(s, "@")
}

// IsURL reports whether s looks like a URL.
func IsURL(s string) bool {
	return strings.Contains(s, "://")
}

// IsContactDetail reports whether s looks like a phone, email, or URL
// rather than a name.
func IsContactDetail(s string) bool {
	return IsPhone(s) || IsEmail(s) || IsURL(s)
}
