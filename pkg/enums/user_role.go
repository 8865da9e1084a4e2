package enums

import "fmt"

// UserRole represents a platform-level permissions role.
type UserRole string

const (
	UserRoleOwner     UserRole = "owner"
	UserRoleAdmin     UserRole = "admin"
	UserRoleClerk     UserRole = "clerk"
	UserRoleAffiliate UserRole = "affiliate"
	UserRoleCustomer  UserRole = "customer"
)

var validUserRoles = []UserRole{
	UserRoleOwner,
	UserRoleAdmin,
	UserRoleClerk,
	UserRoleAffiliate,
	UserRoleCustomer,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
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

// IsVendorStaff reports whether the role can manage store catalog and orders.
func (r UserRole) IsVendorStaff() bool {
	switch r {
	case UserRoleOwner, UserRoleAdmin, UserRoleClerk:
		return true
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
