package churches

import (
	"context"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/observability"
	"github.com/shepherdhq/shepherd/pkg/rbac"
	"github.com/shepherdhq/shepherd/pkg/storage/storagetest"
)

func newTestService(t *testing.T) (*Service, *storagetest.Memory) {
	t.Helper()
	mem := storagetest.NewMemory()
	svc := NewService(mem, mem, mem, mem, observability.NewLogger(observability.ErrorLevel, io.Discard))
	return svc, mem
}

func ident(role rbac.Role, userID, churchID string) auth.Identity {
	return auth.Identity{UserID: userID, Role: role, ChurchID: churchID}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestGetChurch(t *testing.T) {
	svc, mem := newTestService(t)
	require.NoError(t, mem.CreateChurch(context.Background(), &models.Church{ID: "c1", Slug: "first", Name: "First"}))

	church, err := svc.Get(context.Background(), ident(rbac.RoleMember, "u1", "c1"), "c1")
	require.NoError(t, err)
	assert.Equal(t, "First", church.Name)

	_, err = svc.Get(context.Background(), ident(rbac.RoleMember, "u1", "c1"), "ghost")
	assertCode(t, err, apperr.CodeNotFound)
}

func TestUpdateChurchPermissions(t *testing.T) {
	svc, mem := newTestService(t)
	require.NoError(t, mem.CreateChurch(context.Background(), &models.Church{ID: "c1", Slug: "first", Name: "First"}))

	name := "Renamed"

	// Pastors hold view-stats but not manage-settings.
	_, err := svc.Update(context.Background(), ident(rbac.RolePastor, "u1", "c1"), "c1", models.ChurchPatch{Name: &name})
	assertCode(t, err, apperr.CodeForbidden)

	church, err := svc.Update(context.Background(), ident(rbac.RoleAdmin, "u2", "c1"), "c1", models.ChurchPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", church.Name)
}

func TestUpdateSubscriptionRequiresPlatformAdmin(t *testing.T) {
	svc, mem := newTestService(t)
	require.NoError(t, mem.CreateChurch(context.Background(), &models.Church{ID: "c1", Slug: "first", Name: "First"}))

	tier := models.TierPremium

	_, err := svc.Update(context.Background(), ident(rbac.RoleAdmin, "u1", "c1"), "c1", models.ChurchPatch{SubscriptionTier: &tier})
	assertCode(t, err, apperr.CodeForbidden)

	church, err := svc.Update(context.Background(), ident(rbac.RolePlatformAdmin, "root", models.SystemChurchID), "c1", models.ChurchPatch{SubscriptionTier: &tier})
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, church.SubscriptionTier)
}

func TestStats(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	require.NoError(t, mem.CreateChurch(ctx, &models.Church{ID: "c1", Slug: "first", Name: "First"}))

	for i := 0; i < 4; i++ {
		require.NoError(t, mem.CreateUser(ctx, &models.User{
			ID: "u" + strconv.Itoa(i), ChurchID: "c1",
			Email: "u" + strconv.Itoa(i) + "@example.com",
			Role:  rbac.RoleMember, IsActive: i != 3,
		}))
	}

	now := time.Now().UTC()
	lastYear := now.AddDate(-1, 0, 0)
	students := []*models.Student{
		{ID: "s1", ChurchID: "c1", NewBirthStatus: models.NewBirthStatus{
			WaterBaptism: models.Milestone{Completed: true, Date: &now},
			HolyGhost:    models.Milestone{Completed: true, Date: &now},
		}, CompletionDate: &now},
		{ID: "s2", ChurchID: "c1", NewBirthStatus: models.NewBirthStatus{
			WaterBaptism: models.Milestone{Completed: true, Date: &lastYear},
			HolyGhost:    models.Milestone{Completed: true, Date: &lastYear},
		}, CompletionDate: &lastYear},
		{ID: "s3", ChurchID: "c1", NewBirthStatus: models.NewBirthStatus{
			WaterBaptism: models.Milestone{Completed: true, Date: &now},
		}},
		{ID: "s4", ChurchID: "c1"},
	}
	for _, st := range students {
		require.NoError(t, mem.CreateStudent(ctx, st))
	}

	require.NoError(t, mem.CreateStudy(ctx, &models.BibleStudy{ID: "b1", ChurchID: "c1", Status: models.StudyInProgress}))
	require.NoError(t, mem.CreateStudy(ctx, &models.BibleStudy{ID: "b2", ChurchID: "c1", Status: models.StudyPaused}))

	stats, err := svc.Stats(ctx, ident(rbac.RolePastor, "p1", "c1"), "c1")
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalUsers)
	assert.Equal(t, 3, stats.ActiveUsers)
	assert.Equal(t, 4, stats.UsersByRole["member"])
	assert.Equal(t, 4, stats.TotalStudents)
	assert.Equal(t, 2, stats.NewBirthCompleted)
	assert.Equal(t, 1, stats.NewBirthInProgress)
	assert.Equal(t, 1, stats.CompletedThisMonth)
	assert.Equal(t, 1, stats.ActiveStudies)
	assert.Equal(t, 2, stats.TotalStudies)
}

func TestStatsRequiresPermission(t *testing.T) {
	svc, mem := newTestService(t)
	require.NoError(t, mem.CreateChurch(context.Background(), &models.Church{ID: "c1", Slug: "first", Name: "First"}))

	_, err := svc.Stats(context.Background(), ident(rbac.RoleMember, "u1", "c1"), "c1")
	assertCode(t, err, apperr.CodeForbidden)
}
