package auth

import (
	"strings"

	"github.com/portfolio-content-api/internal/models"
)

// Policy grants roles from data. Every authenticated user is a member;
// addresses on the admin list also hold the admin role.
type Policy struct {
	admins map[string]struct{}
}

// NewPolicy builds a policy from an admin allow-list. Addresses are
// compared case-insensitively.
func NewPolicy(adminEmails []string) *Policy {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Policy{admins: admins}
}

// RolesFor returns the roles held by email
func (p *Policy) RolesFor(email string) []models.Role {
	roles := []models.Role{models.RoleMember}
	if p.IsAdmin(email) {
		roles = append(roles, models.RoleAdmin)
	}
	return roles
}

// IsAdmin reports whether email is on the admin list
func (p *Policy) IsAdmin(email string) bool {
	_, ok := p.admins[strings.ToLower(email)]
	return ok
}
