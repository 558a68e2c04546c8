package rbac

// Role is one of the six fixed roles.
type Role string

const (
	RolePlatformAdmin Role = "platform_admin"
	RoleAdmin         Role = "admin"
	RolePastor        Role = "pastor"
	RoleTeacher       Role = "teacher"
	RoleMember        Role = "member"
	RoleStudent       Role = "student"
)

// AllRoles lists every role, highest rank first.
func AllRoles() []Role {
	return []Role{RolePlatformAdmin, RoleAdmin, RolePastor, RoleTeacher, RoleMember, RoleStudent}
}

// IsValid reports whether r is one of the six known roles.
func (r Role) IsValid() bool {
	switch r {
	case RolePlatformAdmin, RoleAdmin, RolePastor, RoleTeacher, RoleMember, RoleStudent:
		return true
	}
	return false
}

// Permission is a single capability tag, formatted "<resource>:<action>".
type Permission string

// User permissions.
const (
	PermUserCreate      Permission = "user:create"
	PermUserRead        Permission = "user:read"
	PermUserUpdate      Permission = "user:update"
	PermUserDelete      Permission = "user:delete"
	PermUserAssignRoles Permission = "user:assign-roles"
)

// Church permissions.
const (
	PermChurchRead           Permission = "church:read"
	PermChurchUpdate         Permission = "church:update"
	PermChurchManageSettings Permission = "church:manage-settings"
	PermChurchViewStats      Permission = "church:view-stats"
)

// Student permissions.
const (
	PermStudentCreate           Permission = "student:create"
	PermStudentRead             Permission = "student:read"
	PermStudentUpdate           Permission = "student:update"
	PermStudentDelete           Permission = "student:delete"
	PermStudentUpdateMilestones Permission = "student:update-milestones"
	PermStudentUpdateFirstSteps Permission = "student:update-first-steps"
	PermStudentViewStats        Permission = "student:view-stats"
	PermStudentAssignTeacher    Permission = "student:assign-teacher"
)

// Study permissions.
const (
	PermStudyCreate           Permission = "study:create"
	PermStudyRead             Permission = "study:read"
	PermStudyUpdate           Permission = "study:update"
	PermStudyDelete           Permission = "study:delete"
	PermStudyUpdateStatus     Permission = "study:update-status"
	PermStudyManageEnrollment Permission = "study:manage-enrollment"
)

// Lesson permissions.
const (
	PermLessonRead     Permission = "lesson:read"
	PermLessonUpdate   Permission = "lesson:update"
	PermLessonComplete Permission = "lesson:complete"
	PermLessonAddNotes Permission = "lesson:add-notes"
)

// Platform permissions. Only platform admins hold these.
const (
	PermPlatformManageChurches Permission = "platform:manage-churches"
	PermPlatformViewAll        Permission = "platform:view-all"
	PermPlatformSwitchChurch   Permission = "platform:switch-church"
)

// roleHierarchy ranks roles for IsRoleAtLeast comparisons. Higher is more
// privileged.
var roleHierarchy = map[Role]int{
	RoleStudent:       0,
	RoleMember:        1,
	RoleTeacher:       2,
	RolePastor:        3,
	RoleAdmin:         4,
	RolePlatformAdmin: 5,
}

// churchScopedPermissions is every permission except the platform group.
// Admins hold all of these; platform admins hold these plus platform:*.
var churchScopedPermissions = []Permission{
	PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete, PermUserAssignRoles,
	PermChurchRead, PermChurchUpdate, PermChurchManageSettings, PermChurchViewStats,
	PermStudentCreate, PermStudentRead, PermStudentUpdate, PermStudentDelete,
	PermStudentUpdateMilestones, PermStudentUpdateFirstSteps, PermStudentViewStats,
	PermStudentAssignTeacher,
	PermStudyCreate, PermStudyRead, PermStudyUpdate, PermStudyDelete,
	PermStudyUpdateStatus, PermStudyManageEnrollment,
	PermLessonRead, PermLessonUpdate, PermLessonComplete, PermLessonAddNotes,
}

// rolePermissions is the fixed role -> permission matrix.
var rolePermissions = map[Role][]Permission{
	RolePlatformAdmin: append(append([]Permission{}, churchScopedPermissions...),
		PermPlatformManageChurches, PermPlatformViewAll, PermPlatformSwitchChurch,
	),

	RoleAdmin: churchScopedPermissions,

	RolePastor: {
		PermUserCreate, PermUserRead, PermUserUpdate, PermUserAssignRoles,
		PermChurchRead, PermChurchViewStats,
		PermStudentCreate, PermStudentRead, PermStudentUpdate, PermStudentDelete,
		PermStudentUpdateMilestones, PermStudentUpdateFirstSteps, PermStudentViewStats,
		PermStudentAssignTeacher,
		PermStudyCreate, PermStudyRead, PermStudyUpdate, PermStudyDelete,
		PermStudyUpdateStatus, PermStudyManageEnrollment,
		PermLessonRead, PermLessonUpdate, PermLessonComplete, PermLessonAddNotes,
	},

	RoleTeacher: {
		PermUserCreate, PermUserRead,
		PermChurchRead,
		PermStudentCreate, PermStudentRead, PermStudentUpdate,
		PermStudentUpdateMilestones, PermStudentUpdateFirstSteps,
		PermStudyCreate, PermStudyRead, PermStudyUpdate,
		PermStudyUpdateStatus, PermStudyManageEnrollment,
		PermLessonRead, PermLessonUpdate, PermLessonComplete, PermLessonAddNotes,
	},

	RoleMember: {
		PermChurchRead,
		PermStudyRead,
		PermLessonRead,
	},

	RoleStudent: {
		PermChurchRead,
		PermStudentRead,
		PermStudyRead,
		PermLessonRead, PermLessonAddNotes,
	},
}

// roleCreationPermissions states which roles each role may assign when
// creating users. Roles not present may not create users at all.
var roleCreationPermissions = map[Role][]Role{
	RolePlatformAdmin: {RolePlatformAdmin, RoleAdmin, RolePastor, RoleTeacher, RoleMember, RoleStudent},
	RoleAdmin:         {RoleAdmin, RolePastor, RoleTeacher, RoleMember, RoleStudent},
	RolePastor:        {RoleTeacher, RoleMember, RoleStudent},
	RoleTeacher:       {RoleStudent},
}

// RolePermissions returns a copy of the permission set for a role. Unknown
// roles get an empty set.
func RolePermissions(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// AssignableRoles returns the roles the assigner may grant to new users.
func AssignableRoles(assigner Role) []Role {
	roles := roleCreationPermissions[assigner]
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}
