package models

// Role is the access level the API assigns to an account.
type Role string

// Roles known to the helpdesk API.
const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Roles lists every role in ascending order of privilege.
var Roles = []Role{RoleUser, RoleAdmin, RoleSuperAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User is an account as returned by GET /api/user and GET /api/users.
type User struct {
	ID    string `json:"_id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Role  Role   `json:"role" yaml:"role"`
}

// Ref returns the short reference used for ticket assignment.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserRef is the embedded form of a user on tickets (assignee).
type UserRef struct {
	ID    string `json:"_id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Role  Role   `json:"role,omitempty" yaml:"role,omitempty"`
}

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MessageResponse is the generic `{message}` acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
	// Token is set by deployments that hand out bearer tokens in addition to the cookie.
	Token string `json:"token,omitempty"`
}

// PromoteResult is the body returned by PUT /api/promote/{id}.
type PromoteResult struct {
	Message string `json:"message"`
	User    struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  Role   `json:"role"`
	} `json:"user"`
}
