package users

import "github.com/goatkit/kamdesk/internal/models"

// Assignable lists the roles the client can ever ask for.
var Assignable = []models.Role{models.RoleUser, models.RoleAdmin}

// Locked reports whether target's role cannot be changed from the client.
func Locked(target models.User) bool {
	return target.Role == models.RoleSuperAdmin
}

// AllowedRoles returns the roles actor is offered for target. It is a
// display hint; the server remains the authority.
func AllowedRoles(actor *models.Session, target models.User) []models.Role {
	if actor == nil || Locked(target) {
		return nil
	}
	switch actor.Role {
	case models.RoleSuperAdmin:
		return append([]models.Role(nil), Assignable...)
	case models.RoleAdmin:
		return []models.Role{models.RoleAdmin}
	default:
		return nil
	}
}

// CanAssign reports whether role is one the client may request at all.
func CanAssign(role models.Role) bool {
	for _, r := range Assignable {
		if r == role {
			return true
		}
	}
	return false
}
