// Package users implements account management and the authentication flows:
// registration, login, church switching, and user CRUD with role-assignment
// enforcement. All tenant-scoped operations take the resolved church ID
// explicitly; handlers decide the tenant before calling in.
package users
