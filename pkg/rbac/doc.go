// Package rbac implements the role and permission model.
//
// The model is fully static: six roles, a fixed permission vocabulary, a
// role hierarchy, and a role-assignment matrix. Every function in this
// package is a pure lookup with no I/O, which makes authorization decisions
// deterministic and cheap enough to evaluate on every request.
//
// Three kinds of checks are provided:
//
//   - permission checks: HasPermission(role, permission)
//   - ownership checks: CanAccessStudent, CanAccessStudy, CanModifyResource
//   - query scoping: QueryScopeForRole, which tells repositories how to
//     restrict list queries (everything, one church, assigned records, or
//     only the caller's own record)
//
// Platform admins short-circuit every check to "allowed".
package rbac
