// Package nav holds the static dashboard navigation tree and the role-based
// filter that prunes it per render.
package nav

import (
	"strings"

	"github.com/skillforge/gateway/core/session"
)

// Item is one navigation entry. The tree is static configuration; Filter
// returns pruned copies and never mutates it.
type Item struct {
	Title     string   `json:"title"`
	Href      string   `json:"href,omitempty"`
	Icon      string   `json:"icon,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	AdminOnly bool     `json:"admin_only,omitempty"`
	Children  []Item   `json:"children,omitempty"`
}

// tenantScopedTitles is the fixed denylist of menu labels that make no sense
// for a platform-level admin with no tenant of their own. It is coupled to
// menu content on purpose; do not generalize it without a product decision.
var tenantScopedTitles = map[string]struct{}{
	"dashboard": {},
	"courses":   {},
	"products":  {},
	"students":  {},
	"analytics": {},
	"payments":  {},
}

// Filter prunes the tree for the given role and tenant-ownership flag.
// It is pure and idempotent; re-run it whenever role or tenant changes.
func Filter(items []Item, role string, hasTenant bool) []Item {
	platformAdmin := role == session.RoleAdmin && !hasTenant

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if !keep(item, role, platformAdmin) {
			continue
		}
		item.Children = Filter(item.Children, role, hasTenant)
		// drop dead menu headers: no href of their own, all children pruned
		if item.Href == "" && len(item.Children) == 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}

func keep(item Item, role string, platformAdmin bool) bool {
	if item.AdminOnly {
		return platformAdmin
	}
	if len(item.Roles) > 0 && !contains(item.Roles, role) {
		return false
	}
	if platformAdmin {
		if _, scoped := tenantScopedTitles[strings.ToLower(item.Title)]; scoped {
			return false
		}
	}
	return true
}

func contains(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// DefaultTree is the admin dashboard menu.
func DefaultTree() []Item {
	return []Item{
		{Title: "Dashboard", Href: "/dashboard", Icon: "home"},
		{Title: "Courses", Href: "/courses", Icon: "book-open", Children: []Item{
			{Title: "Seasons", Href: "/courses/seasons"},
			{Title: "Lessons", Href: "/courses/lessons"},
		}},
		{Title: "Products", Href: "/products", Icon: "package", Children: []Item{
			{Title: "Categories", Href: "/products/categories"},
		}},
		{Title: "Media", Href: "/media", Icon: "film"},
		{Title: "Students", Href: "/students", Icon: "users", Roles: []string{session.RoleAdmin, session.RoleManager, session.RoleTeacher}},
		{Title: "Users", Href: "/users", Icon: "user-cog", Roles: []string{session.RoleAdmin, session.RoleManager}},
		{Title: "Teacher Approvals", Href: "/approvals", Icon: "user-check", Roles: []string{session.RoleAdmin, session.RoleManager}},
		{Title: "Analytics", Href: "/analytics", Icon: "bar-chart", Roles: []string{session.RoleAdmin, session.RoleManager}},
		{Title: "Payments", Href: "/payments", Icon: "credit-card", Roles: []string{session.RoleAdmin, session.RoleManager}},
		{Title: "Themes", Href: "/themes", Icon: "palette", Roles: []string{session.RoleAdmin, session.RoleManager}},
		{Title: "Schools", Href: "/schools", Icon: "building", AdminOnly: true},
		{Title: "Platform Settings", Href: "/platform", Icon: "sliders", AdminOnly: true},
		{Title: "Settings", Icon: "settings", Children: []Item{
			{Title: "Profile", Href: "/settings/profile"},
			{Title: "Store", Href: "/settings/store", Roles: []string{session.RoleAdmin, session.RoleManager}},
		}},
	}
}
