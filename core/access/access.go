// Package access evaluates per-request authorization: required permission,
// required role, management capability and the backend-supplied per-resource
// access descriptor, in that order. The first failing check wins and supplies
// the denial reason.
package access

import (
	"encoding/json"

	"github.com/skillforge/gateway/core/session"
)

type Action string

const (
	ActionView   Action = "view"
	ActionModify Action = "modify"
	ActionDelete Action = "delete"
)

func (a Action) Valid() bool {
	return a == ActionView || a == ActionModify || a == ActionDelete
}

// Descriptor carries the backend-computed access flags attached to individual
// entities (courses, products, media, ...). When present it is authoritative;
// the gateway never recomputes it.
type Descriptor struct {
	CanView         bool     `json:"can_view"`
	CanModify       bool     `json:"can_modify"`
	CanDelete       bool     `json:"can_delete"`
	IsOwner         bool     `json:"is_owner"`
	UserRole        string   `json:"user_role,omitempty"`
	UserPermissions []string `json:"user_permissions,omitempty"`
}

// ParseDescriptor extracts the `access_control` descriptor from a raw entity
// payload. Entities without one yield nil (guards fall back to role checks).
func ParseDescriptor(raw json.RawMessage) *Descriptor {
	var envelope struct {
		AccessControl *Descriptor `json:"access_control"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}
	return envelope.AccessControl
}

// Check is one guard evaluation request.
type Check struct {
	RequiredPermission string
	RequiredRole       string
	Resource           *Descriptor
	Action             Action
}

type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Decision            { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Evaluate runs the guard checks in order: permission → role → generic
// management capability (only when the action mutates and neither permission
// nor role was specified) → resource descriptor vs action. Not memoized;
// call it again whenever user, resource or action change.
func Evaluate(sess session.Session, check Check) Decision {
	if check.RequiredPermission != "" && !sess.HasPermission(check.RequiredPermission) {
		return deny("missing required permission: " + check.RequiredPermission)
	}

	if check.RequiredRole != "" && sess.Role != check.RequiredRole && sess.Role != session.RoleAdmin {
		return deny("requires role: " + check.RequiredRole)
	}

	mutating := check.Action == ActionModify || check.Action == ActionDelete
	if mutating && check.RequiredPermission == "" && check.RequiredRole == "" {
		if !canManage(sess, check.Resource) {
			return deny("you do not have management rights")
		}
	}

	if check.Resource != nil {
		switch check.Action {
		case ActionView:
			if !check.Resource.CanView {
				return deny("you cannot view this resource")
			}
		case ActionModify:
			if !check.Resource.CanModify {
				return deny("you cannot modify this resource")
			}
		case ActionDelete:
			if !check.Resource.CanDelete {
				return deny("you cannot delete this resource")
			}
		}
	}
	return allow()
}

func canManage(sess session.Session, resource *Descriptor) bool {
	if sess.Role == session.RoleAdmin || sess.Role == session.RoleManager {
		return true
	}
	return resource != nil && resource.IsOwner
}
