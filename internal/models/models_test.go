package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicket_UnmarshalCreatedAt(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"list endpoint", `{"_id":"t1","created_at":"2024-05-01T10:00:00Z"}`, "2024-05-01T10:00:00Z"},
		{"tracking endpoint", `{"_id":"t1","createdAt":"2024-05-02T10:00:00Z"}`, "2024-05-02T10:00:00Z"},
		{"snake case wins", `{"_id":"t1","created_at":"2024-05-01T10:00:00Z","createdAt":"2024-05-02T10:00:00Z"}`, "2024-05-01T10:00:00Z"},
		{"missing", `{"_id":"t1"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tk Ticket
			require.NoError(t, json.Unmarshal([]byte(tt.body), &tk))
			assert.Equal(t, "t1", tk.ID)
			assert.Equal(t, tt.want, tk.CreatedAt)
		})
	}
}

func TestTicket_Assignment(t *testing.T) {
	var tk Ticket
	assert.Equal(t, "", tk.AssigneeID())
	assert.False(t, tk.IsAssignedTo(""))

	tk.AssignedTo = &UserRef{ID: "u1", Name: "One"}
	assert.Equal(t, "u1", tk.AssigneeID())
	assert.True(t, tk.IsAssignedTo("u1"))
	assert.False(t, tk.IsAssignedTo("u2"))

	tk.AssignedTo = &UserRef{}
	assert.False(t, tk.IsAssignedTo(""), "empty id never matches")
}

func TestEnums(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("open").Valid(), "statuses are case-sensitive")

	for _, r := range Roles {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Role("owner").Valid())

	assert.True(t, ValidDepartment("IT"))
	assert.False(t, ValidDepartment("it"))
}

func TestNewSession(t *testing.T) {
	tests := []struct {
		role       Role
		admin      bool
		superAdmin bool
	}{
		{RoleUser, false, false},
		{RoleAdmin, true, false},
		{RoleSuperAdmin, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			s := NewSession(User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: tt.role})
			assert.Equal(t, "u1", s.UserID)
			assert.Equal(t, tt.admin, s.IsAdmin)
			assert.Equal(t, tt.superAdmin, s.IsSuperAdmin)
			assert.True(t, s.HasRole(tt.role))
		})
	}

	var none *Session
	assert.False(t, none.HasRole(RoleUser))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2024-05-01T10:00:00.123Z", time.Date(2024, 5, 1, 10, 0, 0, 123e6, time.UTC), true},
		{"2024-05-01T10:00:00+01:00", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), true},
		{"2024-05-01 10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), true},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{"  ", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestTicketSubmission_FormFields(t *testing.T) {
	s := TicketSubmission{Title: "Leak", SubCategory: "Water/Plumbing", ImagePath: "/tmp/x.png"}
	fields := s.FormFields()
	assert.Len(t, fields, 9)
	assert.Equal(t, "Leak", fields["title"])
	assert.Equal(t, "Water/Plumbing", fields["subCategory"])
	assert.NotContains(t, fields, "image")
}
