package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/rbac"
)

func TestIdentityFromUser(t *testing.T) {
	u := &models.User{
		ID:        "u1",
		ChurchID:  "c1",
		ChurchIDs: []string{"c1", "c2"},
		Email:     "a@x.com",
		Role:      rbac.RoleTeacher,
	}

	id := IdentityFromUser(u)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, "c1", id.ChurchID)
	assert.Equal(t, "c1", id.HomeChurchID)
	assert.Equal(t, []string{"c1", "c2"}, id.ChurchIDs)
	assert.Equal(t, rbac.RoleTeacher, id.Role)
	assert.False(t, id.IsPlatformAdmin())
}

func TestHome(t *testing.T) {
	assert.Equal(t, "c1", Identity{ChurchID: "c2", HomeChurchID: "c1"}.Home())
	// Tokens minted before the home claim existed fall back to the active
	// tenant.
	assert.Equal(t, "c2", Identity{ChurchID: "c2"}.Home())
}

func TestHasTenant(t *testing.T) {
	assert.True(t, Identity{ChurchID: "c1"}.HasTenant())
	assert.False(t, Identity{ChurchID: models.SystemChurchID}.HasTenant())
	assert.False(t, Identity{}.HasTenant())
}

func TestCanSwitchTo(t *testing.T) {
	pastor := Identity{
		UserID:    "u1",
		Role:      rbac.RolePastor,
		ChurchID:  "c1",
		ChurchIDs: []string{"c1", "c2"},
	}

	assert.True(t, pastor.CanSwitchTo("c1"))
	assert.True(t, pastor.CanSwitchTo("c2"))
	assert.False(t, pastor.CanSwitchTo("c3"))

	platformAdmin := Identity{
		UserID:   "u2",
		Role:     rbac.RolePlatformAdmin,
		ChurchID: models.SystemChurchID,
	}
	assert.True(t, platformAdmin.CanSwitchTo("c3"))
}

func TestSwitchedToLeavesOriginalUntouched(t *testing.T) {
	original := Identity{UserID: "u1", Role: rbac.RolePastor, ChurchID: "c1", HomeChurchID: "c1", ChurchIDs: []string{"c1", "c2"}}
	switched := original.SwitchedTo("c2")

	assert.Equal(t, "c2", switched.ChurchID)
	assert.Equal(t, "c1", original.ChurchID)
	assert.Equal(t, original.UserID, switched.UserID)
	assert.Equal(t, original.Role, switched.Role)
}

func TestSwitchedIdentityKeepsHome(t *testing.T) {
	id := IdentityFromUser(&models.User{ID: "u1", ChurchID: "c1", ChurchIDs: []string{"c1", "c2"}, Role: rbac.RolePastor})
	switched := id.SwitchedTo("c2")

	assert.Equal(t, "c1", switched.Home())
	// Switching back to the home church stays allowed even when the access
	// list no longer names it.
	bare := Identity{UserID: "u1", Role: rbac.RolePastor, ChurchID: "c2", HomeChurchID: "c1"}
	assert.True(t, bare.CanSwitchTo("c1"))
}

func TestAccessibleChurchIDs(t *testing.T) {
	id := Identity{ChurchID: "c1", ChurchIDs: []string{"c2", "c1", "c3"}}
	assert.Equal(t, []string{"c1", "c2", "c3"}, id.AccessibleChurchIDs())

	system := Identity{ChurchID: models.SystemChurchID}
	assert.Empty(t, system.AccessibleChurchIDs())
}
