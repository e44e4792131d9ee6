// ABOUTME: Closed role enum carried in the JWT role claim
// ABOUTME: Explicit string mapping so error messages can list valid options

package auth

import (
	"fmt"
	"strings"
)

// Role is the access role carried by an authenticated identity.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleUser     Role = "User"
	RoleReadOnly Role = "ReadOnly"
)

// ValidRoles returns the accepted role names in a stable order.
func ValidRoles() []string {
	return []string{string(RoleAdmin), string(RoleUser), string(RoleReadOnly)}
}

// ParseRole maps a claim string to a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "user":
		return RoleUser, nil
	case "readonly":
		return RoleReadOnly, nil
	default:
		return "", fmt.Errorf("%w: %q (valid options are: %s)", ErrInvalidRole, s, strings.Join(ValidRoles(), ", "))
	}
}
