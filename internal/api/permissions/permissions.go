// Package permissions holds the access decisions consumed by every endpoint.
// Request-level checks (role only, no row loaded) run first, in middleware;
// the object-level check needs the target's author and runs in the service
// only after the request-level gate passed.
package permissions

import (
	"reviewhub/internal/api/models"
)

// IsAdmin is the request-level admin gate: only authenticated admins and
// superusers pass.
func IsAdmin(u *models.User) bool {
	return u.HasRole(models.RoleAdmin)
}

// CanMutateObject is the object-level half of the
// author/admin/moderator-or-read-only policy: the object's author, a
// moderator, an admin or a superuser may update or delete it. Callers must
// have rejected unauthenticated writers already.
func CanMutateObject(u *models.User, authorID string) bool {
	if u == nil {
		return false
	}
	if u.HasRole(models.RoleModerator) {
		return true
	}
	return u.ID == authorID
}
