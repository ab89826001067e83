package session

import "errors"

// Roles as carried by the `role` token claim.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
	RoleUser    = "USER"
)

var (
	// AdminRoles may access the dashboard; everyone else is turned away at the gate.
	AdminRoles = []string{RoleAdmin, RoleManager, RoleTeacher}
	AllRoles   = []string{RoleAdmin, RoleManager, RoleTeacher, RoleStudent, RoleUser}

	// ErrUnauthenticated covers every ambiguous outcome: missing/invalid/expired
	// token, upstream non-2xx, or a whoami payload with no role. Fail closed.
	ErrUnauthenticated = errors.New("user not authenticated")
)

func IsKnownRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsAllowedAdminRole(role string) bool {
	for _, r := range AdminRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Session is the resolved identity for one request. It is reconstructed from
// the session cookie on every navigation; nothing here is authoritative state.
type Session struct {
	UserID         string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	Email          string   `json:"email,omitempty"`
	Role           string   `json:"role"`
	StoreID        string   `json:"store_id,omitempty"`
	IsAdminProfile bool     `json:"is_admin_profile,omitempty"`
	PlatformLevel  bool     `json:"platform_level,omitempty"`
	Permissions    []string `json:"permissions,omitempty"`
}

// HasTenant reports whether the session is bound to a tenant (school/store).
func (s Session) HasTenant() bool {
	return s.StoreID != ""
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// PlatformAdmin is an ADMIN not bound to any single tenant; tenant-scoped
// menu entries and pages are hidden from them.
func (s Session) PlatformAdmin() bool {
	return s.IsAdmin() && !s.HasTenant()
}

func (s Session) HasPermission(perm string) bool {
	for _, p := range s.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
