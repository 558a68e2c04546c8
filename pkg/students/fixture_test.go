package students

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/storage/storagetest"
)

// fixture bundles the in-memory store, a controllable clock, and seeding
// helpers shared by the tests in this package.
type fixture struct {
	t     *testing.T
	mem   *storagetest.Memory
	svc   *Service
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		t:     t,
		mem:   storagetest.NewMemory(),
		clock: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) seedStudent(id, assignedTeacherID string) *models.Student {
	f.t.Helper()
	student := &models.Student{
		ID:                id,
		ChurchID:          "c1",
		UserID:            "user-" + id,
		AssignedTeacherID: assignedTeacherID,
		FirstSteps:        models.NewFirstSteps(),
	}
	require.NoError(f.t, f.mem.CreateStudent(context.Background(), student))
	return student
}

func (f *fixture) seedUser(u *models.User) *models.User {
	f.t.Helper()
	require.NoError(f.t, f.mem.CreateUser(context.Background(), u))
	return u
}
