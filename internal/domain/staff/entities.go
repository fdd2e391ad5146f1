package staff

import (
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("staff member not found")

// Role is a closed enum; the authorization gate holds the permission set per
// role so the compiler flags unhandled roles when one is added.
type Role string

const (
	RoleAgent           Role = "agent"
	RoleRegionalManager Role = "regional_manager"
	RoleCEO             Role = "ceo"
	RoleModerateAdmin   Role = "moderate_admin"
	RoleSuperAdmin      Role = "super_admin"
)

// ParseRole rejects anything outside the canonical lower-snake set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAgent, RoleRegionalManager, RoleCEO, RoleModerateAdmin, RoleSuperAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Level orders roles from least to most privileged.
func (r Role) Level() int {
	switch r {
	case RoleAgent:
		return 1
	case RoleRegionalManager:
		return 2
	case RoleCEO:
		return 3
	case RoleModerateAdmin:
		return 4
	case RoleSuperAdmin:
		return 5
	}
	return 0
}

// AtLeast reports whether r is at or above the privilege of min.
func (r Role) AtLeast(min Role) bool { return r.Level() >= min.Level() }

// Actor is the verified caller supplied by the external auth subsystem.
// The core trusts it and performs no credential checks.
type Actor struct {
	ID     string
	Role   Role
	Region string
}

type Staff struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	StaffID   string    `gorm:"size:32;uniqueIndex:ux_staff_staff_id" json:"staff_id"`
	FullName  string    `gorm:"size:128" json:"full_name"`
	Email     string    `gorm:"size:128" json:"email"`
	Role      Role      `gorm:"size:32" json:"role"`
	Region    string    `gorm:"size:64;index:idx_staff_region" json:"region"`
	ManagerID string    `gorm:"size:32" json:"manager_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Staff) TableName() string { return "staff" }
