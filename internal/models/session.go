package models

// Session is the resolved identity of the current viewer with its derived
// role flags. It is recomputed on every protected view mount and never stored.
type Session struct {
	UserID       string `json:"user_id" yaml:"user_id"`
	Name         string `json:"name" yaml:"name"`
	Email        string `json:"email" yaml:"email"`
	Role         Role   `json:"role" yaml:"role"`
	IsAdmin      bool   `json:"is_admin" yaml:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin" yaml:"is_super_admin"`
}

// NewSession derives the role flags for u.
func NewSession(u User) *Session {
	return &Session{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		IsAdmin:      u.Role == RoleAdmin || u.Role == RoleSuperAdmin,
		IsSuperAdmin: u.Role == RoleSuperAdmin,
	}
}

// HasRole reports whether the session has exactly role r.
func (s *Session) HasRole(r Role) bool {
	return s != nil && s.Role == r
}
