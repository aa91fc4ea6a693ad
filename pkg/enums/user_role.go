package enums

import "fmt"

// UserRole scopes what a caller can do across the platform.
type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleDonor   UserRole = "donor"
	UserRoleAdmin   UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleStudent,
	UserRoleDonor,
	UserRoleAdmin,
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
