package rbac

// HasPermission reports whether the role's permission set contains the
// permission. Pure set membership; platform admins hold every permission by
// construction of the matrix.
func HasPermission(role Role, permission Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// IsRoleAtLeast reports whether role a ranks at or above role b in the
// hierarchy. Unknown roles rank below every known role.
func IsRoleAtLeast(a, b Role) bool {
	rankA, okA := roleHierarchy[a]
	rankB, okB := roleHierarchy[b]
	if !okA || !okB {
		return false
	}
	return rankA >= rankB
}

// IsPlatformAdmin reports whether the role short-circuits all other checks.
func IsPlatformAdmin(role Role) bool {
	return role == RolePlatformAdmin
}

// IsManager reports whether the role manages a whole church: pastors,
// admins, and platform admins.
func IsManager(role Role) bool {
	return role == RolePastor || role == RoleAdmin || role == RolePlatformAdmin
}

// CanAssignRole reports whether the assigner may create a user with the
// target role.
func CanAssignRole(assigner, target Role) bool {
	for _, r := range roleCreationPermissions[assigner] {
		if r == target {
			return true
		}
	}
	return false
}

// CanAccessStudent decides record-level access to a student:
//
//   - platform admins and managers see every student in scope
//   - teachers see only students assigned to them
//   - members and students get no access here; the caller must separately
//     compare the student's backing userId against the requester
func CanAccessStudent(requesterRole Role, requesterID, assignedTeacherID string) bool {
	if IsPlatformAdmin(requesterRole) || IsManager(requesterRole) {
		return true
	}
	if requesterRole == RoleTeacher {
		return assignedTeacherID != "" && assignedTeacherID == requesterID
	}
	return false
}

// CanAccessStudy mirrors CanAccessStudent using the study's teacher.
func CanAccessStudy(requesterRole Role, requesterID, studyTeacherID string) bool {
	if IsPlatformAdmin(requesterRole) || IsManager(requesterRole) {
		return true
	}
	if requesterRole == RoleTeacher {
		return studyTeacherID != "" && studyTeacherID == requesterID
	}
	return false
}

// CanModifyResource is an OR of three independent authorization paths:
// platform admin, holding the required permission, or owning the resource.
// All three are evaluated; a non-owner without the permission is denied no
// matter what other fields match.
func CanModifyResource(requesterRole Role, requesterID, resourceOwnerID string, required Permission) bool {
	if IsPlatformAdmin(requesterRole) {
		return true
	}
	if HasPermission(requesterRole, required) {
		return true
	}
	return resourceOwnerID != "" && requesterID == resourceOwnerID
}

// ScopeKind describes how a list query must be restricted.
type ScopeKind string

const (
	ScopeAll      ScopeKind = "all"      // unrestricted, platform admin only
	ScopeChurch   ScopeKind = "church"   // restricted to one tenant
	ScopeAssigned ScopeKind = "assigned" // restricted to records assigned to the requester
	ScopeSelf     ScopeKind = "self"     // restricted to the requester's own record
)

// QueryScope carries the scope kind plus the identifiers repositories need
// to build the matching filter.
type QueryScope struct {
	Kind      ScopeKind
	ChurchID  string
	TeacherID string // set for ScopeAssigned
	UserID    string // set for ScopeSelf
}

// QueryScopeForRole returns the scope descriptor repository list methods
// must apply for the given requester.
func QueryScopeForRole(role Role, userID, churchID string) QueryScope {
	switch {
	case IsPlatformAdmin(role):
		return QueryScope{Kind: ScopeAll}
	case IsManager(role):
		return QueryScope{Kind: ScopeChurch, ChurchID: churchID}
	case role == RoleTeacher:
		return QueryScope{Kind: ScopeAssigned, ChurchID: churchID, TeacherID: userID}
	default:
		return QueryScope{Kind: ScopeSelf, ChurchID: churchID, UserID: userID}
	}
}
