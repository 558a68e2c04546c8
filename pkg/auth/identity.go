package auth

import (
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/rbac"
)

// Identity is the request-scoped view of a verified token. It is built once
// after token verification and passed as an explicit argument; nothing
// mutates it afterwards.
type Identity struct {
	UserID string
	Email  string
	Role   rbac.Role

	// ChurchID is the active tenant context; switching churches replaces
	// it. HomeChurchID is the partition the user row lives in and never
	// changes, so a switched token can still resolve its own record.
	ChurchID     string
	HomeChurchID string
	ChurchIDs    []string
}

// IdentityFromUser builds the identity minted into a fresh token at login
// or registration time.
func IdentityFromUser(u *models.User) Identity {
	return Identity{
		UserID:       u.ID,
		Email:        u.Email,
		Role:         u.Role,
		ChurchID:     u.ChurchID,
		HomeChurchID: u.ChurchID,
		ChurchIDs:    u.ChurchIDs,
	}
}

// Home returns the partition the user row lives in. Tokens minted before
// church switching existed carry no home claim; for those the active
// tenant is the home tenant.
func (id Identity) Home() string {
	if id.HomeChurchID != "" {
		return id.HomeChurchID
	}
	return id.ChurchID
}

// IsPlatformAdmin reports whether the identity bypasses tenant scoping.
func (id Identity) IsPlatformAdmin() bool {
	return rbac.IsPlatformAdmin(id.Role)
}

// HasTenant reports whether the identity carries a concrete church rather
// than the platform-admin SYSTEM sentinel.
func (id Identity) HasTenant() bool {
	return id.ChurchID != "" && id.ChurchID != models.SystemChurchID
}

// CanSwitchTo reports whether the identity may switch tenant context to the
// target church: platform admins may switch anywhere, everyone else only to
// churches in their access list.
func (id Identity) CanSwitchTo(churchID string) bool {
	if id.IsPlatformAdmin() {
		return true
	}
	if churchID == id.ChurchID || churchID == id.Home() {
		return true
	}
	for _, c := range id.ChurchIDs {
		if c == churchID {
			return true
		}
	}
	return false
}

// SwitchedTo returns a copy of the identity with the tenant substituted.
// Callers must check CanSwitchTo first.
func (id Identity) SwitchedTo(churchID string) Identity {
	out := id
	out.ChurchID = churchID
	return out
}

// AccessibleChurchIDs returns the churches the identity may operate in,
// primary tenant first, without duplicates. Platform admins have no fixed
// list; callers handle them separately.
func (id Identity) AccessibleChurchIDs() []string {
	seen := map[string]bool{}
	var out []string
	add := func(c string) {
		if c != "" && c != models.SystemChurchID && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	add(id.Home())
	add(id.ChurchID)
	for _, c := range id.ChurchIDs {
		add(c)
	}
	return out
}
