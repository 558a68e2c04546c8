package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsManager(t *testing.T) {
	tests := []struct {
		role    Role
		manager bool
	}{
		{RolePlatformAdmin, true},
		{RoleAdmin, true},
		{RolePastor, true},
		{RoleTeacher, false},
		{RoleMember, false},
		{RoleStudent, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.manager, IsManager(tt.role))
		})
	}
}

func TestCanAccessStudent(t *testing.T) {
	tests := []struct {
		name              string
		role              Role
		requesterID       string
		assignedTeacherID string
		want              bool
	}{
		{"platform admin always", RolePlatformAdmin, "u1", "other", true},
		{"admin always", RoleAdmin, "u1", "other", true},
		{"pastor always", RolePastor, "u1", "other", true},
		{"teacher owns assignment", RoleTeacher, "t1", "t1", true},
		{"teacher other assignment", RoleTeacher, "t1", "t2", false},
		{"teacher unassigned student", RoleTeacher, "t1", "", false},
		{"member never", RoleMember, "u1", "u1", false},
		{"student never", RoleStudent, "u1", "u1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessStudent(tt.role, tt.requesterID, tt.assignedTeacherID))
		})
	}
}

func TestCanAccessStudy(t *testing.T) {
	assert.True(t, CanAccessStudy(RoleAdmin, "u1", "t9"))
	assert.True(t, CanAccessStudy(RoleTeacher, "t1", "t1"))
	assert.False(t, CanAccessStudy(RoleTeacher, "t1", "t2"))
	assert.False(t, CanAccessStudy(RoleStudent, "s1", "t1"))
}

func TestCanModifyResource(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		reqID    string
		ownerID  string
		required Permission
		want     bool
	}{
		{"platform admin without permission or ownership", RolePlatformAdmin, "u1", "u2", PermChurchManageSettings, true},
		{"role holds permission", RoleAdmin, "u1", "u2", PermChurchManageSettings, true},
		{"owner without permission", RoleStudent, "u1", "u1", PermStudentUpdateMilestones, true},
		{"non-owner without permission", RoleStudent, "u1", "u2", PermStudentUpdateMilestones, false},
		{"non-owner member", RoleMember, "u1", "u2", PermUserUpdate, false},
		{"empty owner id never matches", RoleMember, "", "", PermUserUpdate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModifyResource(tt.role, tt.reqID, tt.ownerID, tt.required))
		})
	}
}

func TestQueryScopeForRole(t *testing.T) {
	tests := []struct {
		role Role
		want QueryScope
	}{
		{RolePlatformAdmin, QueryScope{Kind: ScopeAll}},
		{RoleAdmin, QueryScope{Kind: ScopeChurch, ChurchID: "c1"}},
		{RolePastor, QueryScope{Kind: ScopeChurch, ChurchID: "c1"}},
		{RoleTeacher, QueryScope{Kind: ScopeAssigned, ChurchID: "c1", TeacherID: "u1"}},
		{RoleMember, QueryScope{Kind: ScopeSelf, ChurchID: "c1", UserID: "u1"}},
		{RoleStudent, QueryScope{Kind: ScopeSelf, ChurchID: "c1", UserID: "u1"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, QueryScopeForRole(tt.role, "u1", "c1"))
		})
	}
}
