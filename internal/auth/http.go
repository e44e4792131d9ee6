// ABOUTME: Bearer token extraction from the Authorization header
// ABOUTME: Distinguishes absent credentials from malformed ones

package auth

import (
	"errors"
	"strings"
)

// ErrMissingCredentials is returned when no Authorization header is present.
// Callers map this to "authentication required" rather than "invalid token".
var ErrMissingCredentials = errors.New("missing authorization header")

// BearerToken extracts the token from an Authorization header value.
// The scheme prefix is matched case-insensitively and surrounding
// whitespace is trimmed.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingCredentials
	}

	const scheme = "bearer "
	if len(header) < len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", ErrMalformedToken
	}

	token := strings.TrimSpace(header[len(scheme):])
	if token == "" {
		return "", ErrMalformedToken
	}
	return token, nil
}
