package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/rbac"
	"github.com/shepherdhq/shepherd/pkg/storage"
)

func TestRegisterDefaultsToMember(t *testing.T) {
	svc, mem := newTestService(t)
	seedChurch(t, mem, "c1")

	session, err := svc.Register(context.Background(), RegisterInput{
		Email:     "Visitor@Example.com",
		Password:  "password123",
		FirstName: "Vera",
		LastName:  "Ng",
		ChurchID:  "c1",
	})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleMember, session.User.Role)
	assert.Equal(t, "visitor@example.com", session.User.Email)
	assert.NotEmpty(t, session.Token)
	assert.EqualValues(t, 3600, session.ExpiresIn)

	id, err := svc.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, id.UserID)
	assert.Equal(t, "c1", id.ChurchID)
}

func TestRegisterStudentCreatesJourneyRecord(t *testing.T) {
	svc, mem := newTestService(t)
	seedChurch(t, mem, "c1")

	session, err := svc.Register(context.Background(), RegisterInput{
		Email:     "sam@example.com",
		Password:  "password123",
		FirstName: "Sam",
		LastName:  "Lee",
		ChurchID:  "c1",
		Role:      rbac.RoleStudent,
	})
	require.NoError(t, err)

	page, err := mem.ListStudents(context.Background(), "c1", storage.StudentFilter{UserID: session.User.ID}, storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestRegisterRejectsPrivilegedRoles(t *testing.T) {
	svc, mem := newTestService(t)
	seedChurch(t, mem, "c1")

	for _, role := range []rbac.Role{rbac.RoleTeacher, rbac.RolePastor, rbac.RoleAdmin, rbac.RolePlatformAdmin} {
		_, err := svc.Register(context.Background(), RegisterInput{
			Email:     "x@example.com",
			Password:  "password123",
			FirstName: "X",
			LastName:  "Y",
			ChurchID:  "c1",
			Role:      role,
		})
		assertCode(t, err, apperr.CodeValidation)
	}
}

func TestRegisterUnknownChurch(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:     "x@example.com",
		Password:  "password123",
		FirstName: "X",
		LastName:  "Y",
		ChurchID:  "nope",
	})
	assertCode(t, err, apperr.CodeChurchNotFound)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, mem := newTestService(t)
	seedChurch(t, mem, "c1")
	seedUser(t, svc, mem, "c1", rbac.RoleMember, "taken@example.com")

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:     "Taken@example.com",
		Password:  "password123",
		FirstName: "X",
		LastName:  "Y",
		ChurchID:  "c1",
	})
	assertCode(t, err, apperr.CodeEmailExists)
}

func TestLogin(t *testing.T) {
	svc, mem := newTestService(t)
	seedChurch(t, mem, "c1")
	seedUser(t, svc, mem, "c1", rbac.RoleMember, "member@example.com")

	session, err := svc.Login(context.Background(), "Member@Example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	_, err = svc.Login(context.Background(), "member@example.com", "wrong-password")
	assertCode(t, err, apperr.CodeInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "password123")
	assertCode(t, err, apperr.CodeInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, mem := newTestService(t)
	seedChurch(t, mem, "c1")
	user := seedUser(t, svc, mem, "c1", rbac.RoleMember, "member@example.com")
	user.IsActive = false
	require.NoError(t, mem.PutUser(context.Background(), user))

	_, err := svc.Login(context.Background(), "member@example.com", "password123")
	assertCode(t, err, apperr.CodeAccountDisabled)
}

func TestSwitchChurch(t *testing.T) {
	svc, mem := newTestService(t)
	seedChurch(t, mem, "c1")
	seedChurch(t, mem, "c2")
	seedChurch(t, mem, "c3")

	user := seedUser(t, svc, mem, "c1", rbac.RoleTeacher, "teacher@example.com")
	user.ChurchIDs = []string{"c1", "c2"}
	require.NoError(t, mem.PutUser(context.Background(), user))
	id := identity(user)
	id.ChurchIDs = user.ChurchIDs

	// Allowed: target is in the access list.
	session, err := svc.SwitchChurch(context.Background(), id, "c2")
	require.NoError(t, err)
	switched, err := svc.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "c2", switched.ChurchID)
	assert.Equal(t, rbac.RoleTeacher, switched.Role)

	// Denied: c3 is not in the list.
	_, err = svc.SwitchChurch(context.Background(), id, "c3")
	assertCode(t, err, apperr.CodeForbidden)
}

func TestSwitchChurchPlatformAdmin(t *testing.T) {
	svc, mem := newTestService(t)
	seedChurch(t, mem, "c1")
	admin := seedUser(t, svc, mem, models.SystemChurchID, rbac.RolePlatformAdmin, "root@example.com")

	session, err := svc.SwitchChurch(context.Background(), identity(admin), "c1")
	require.NoError(t, err)
	switched, err := svc.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "c1", switched.ChurchID)

	_, err = svc.SwitchChurch(context.Background(), identity(admin), "ghost")
	assertCode(t, err, apperr.CodeChurchNotFound)
}

func TestMyChurches(t *testing.T) {
	svc, mem := newTestService(t)
	seedChurch(t, mem, "c1")
	seedChurch(t, mem, "c2")
	seedChurch(t, mem, "c3")

	user := seedUser(t, svc, mem, "c1", rbac.RoleTeacher, "teacher@example.com")
	user.ChurchIDs = []string{"c2"}
	require.NoError(t, mem.PutUser(context.Background(), user))
	id := identity(user)
	id.ChurchIDs = user.ChurchIDs

	churches, err := svc.MyChurches(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, churches, 2)

	admin := seedUser(t, svc, mem, models.SystemChurchID, rbac.RolePlatformAdmin, "root@example.com")
	churches, err = svc.MyChurches(context.Background(), identity(admin))
	require.NoError(t, err)
	assert.Len(t, churches, 3)
}

func TestMe(t *testing.T) {
	svc, mem := newTestService(t)
	seedChurch(t, mem, "c1")
	user := seedUser(t, svc, mem, "c1", rbac.RoleMember, "member@example.com")

	got, err := svc.Me(context.Background(), identity(user))
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
}

func TestMeAfterSwitch(t *testing.T) {
	svc, mem := newTestService(t)
	seedChurch(t, mem, "c1")
	seedChurch(t, mem, "c2")

	user := seedUser(t, svc, mem, "c1", rbac.RolePastor, "pastor@example.com")
	user.ChurchIDs = []string{"c1", "c2"}
	require.NoError(t, mem.PutUser(context.Background(), user))

	session, err := svc.SwitchChurch(context.Background(), identity(user), "c2")
	require.NoError(t, err)
	switched, err := svc.tokens.Parse(session.Token)
	require.NoError(t, err)
	require.Equal(t, "c2", switched.ChurchID)

	// The switched token still resolves the user row in its home church.
	got, err := svc.Me(context.Background(), switched)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// And can switch again, including back home.
	back, err := svc.SwitchChurch(context.Background(), switched, "c1")
	require.NoError(t, err)
	home, err := svc.tokens.Parse(back.Token)
	require.NoError(t, err)
	assert.Equal(t, "c1", home.ChurchID)
}

func TestMeAfterSwitchPlatformAdmin(t *testing.T) {
	svc, mem := newTestService(t)
	seedChurch(t, mem, "c1")
	seedChurch(t, mem, "c2")
	admin := seedUser(t, svc, mem, models.SystemChurchID, rbac.RolePlatformAdmin, "root@example.com")

	session, err := svc.SwitchChurch(context.Background(), identity(admin), "c1")
	require.NoError(t, err)
	switched, err := svc.tokens.Parse(session.Token)
	require.NoError(t, err)
	require.Equal(t, "c1", switched.ChurchID)

	got, err := svc.Me(context.Background(), switched)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	// Switching is not one-way; the admin can move on to another church.
	next, err := svc.SwitchChurch(context.Background(), switched, "c2")
	require.NoError(t, err)
	moved, err := svc.tokens.Parse(next.Token)
	require.NoError(t, err)
	assert.Equal(t, "c2", moved.ChurchID)
}
