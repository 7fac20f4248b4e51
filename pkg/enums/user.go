package enums

import "fmt"

// UserRole scopes what a user can do in the marketplace.
type UserRole string

const (
	RoleBuyer  UserRole = "buyer"
	RoleVendor UserRole = "vendor"
	RoleAdmin  UserRole = "admin"
)

var validUserRoles = []UserRole{
	RoleBuyer,
	RoleVendor,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
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

// UserApprovalStatus tracks onboarding compliance for buyers and vendors.
type UserApprovalStatus string

const (
	UserApprovalPending   UserApprovalStatus = "pending"
	UserApprovalApproved  UserApprovalStatus = "approved"
	UserApprovalSuspended UserApprovalStatus = "suspended"
)

var validUserApprovalStatuses = []UserApprovalStatus{
	UserApprovalPending,
	UserApprovalApproved,
	UserApprovalSuspended,
}

// String implements fmt.Stringer.
func (u UserApprovalStatus) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserApprovalStatus.
func (u UserApprovalStatus) IsValid() bool {
	for _, candidate := range validUserApprovalStatuses {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserApprovalStatus converts raw input into a UserApprovalStatus.
func ParseUserApprovalStatus(value string) (UserApprovalStatus, error) {
	for _, candidate := range validUserApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user approval status %q", value)
}
