package studies

import (
	"context"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/observability"
	"github.com/shepherdhq/shepherd/pkg/rbac"
	"github.com/shepherdhq/shepherd/pkg/storage"
	"github.com/shepherdhq/shepherd/pkg/storage/storagetest"
)

func newTestService(t *testing.T) (*Service, *storagetest.Memory) {
	t.Helper()
	mem := storagetest.NewMemory()
	svc := NewService(mem, mem, mem, observability.NewLogger(observability.ErrorLevel, io.Discard))
	var seq int
	svc.newID = func() string {
		seq++
		return "id-" + strconv.Itoa(seq)
	}
	return svc, mem
}

func pastorIdentity() auth.Identity {
	return auth.Identity{UserID: "pastor-1", Role: rbac.RolePastor, ChurchID: "c1"}
}

func teacherIdentity(userID string) auth.Identity {
	return auth.Identity{UserID: userID, Role: rbac.RoleTeacher, ChurchID: "c1"}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestCreateStudySeedsLessons(t *testing.T) {
	svc, mem := newTestService(t)

	study, err := svc.Create(context.Background(), teacherIdentity("t1"), "c1", CreateInput{
		Name:       "Tuesday Night Group",
		Curriculum: models.CurriculumNewBirth,
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", study.TeacherID)
	assert.Equal(t, models.StudyInProgress, study.Status)

	page, err := mem.ListLessons(context.Background(), study.ID, storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 6)
	assert.Equal(t, 1, page.Items[0].LessonNumber)
	assert.Equal(t, models.LessonNotStarted, page.Items[0].Status)
	assert.Equal(t, "Lesson 6", page.Items[5].Title)
}

func TestCreateStudyTeacherCannotAssignOthers(t *testing.T) {
	svc, _ := newTestService(t)

	// A teacher naming someone else still leads the study themselves.
	study, err := svc.Create(context.Background(), teacherIdentity("t1"), "c1", CreateInput{
		Name:       "Group",
		Curriculum: models.CurriculumFirstSteps,
		TeacherID:  "t2",
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", study.TeacherID)

	// A pastor may name any teacher.
	study, err = svc.Create(context.Background(), pastorIdentity(), "c1", CreateInput{
		Name:       "Group 2",
		Curriculum: models.CurriculumFirstSteps,
		TeacherID:  "t2",
	})
	require.NoError(t, err)
	assert.Equal(t, "t2", study.TeacherID)
}

func TestCreateStudyValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), pastorIdentity(), "c1", CreateInput{
		Name: "", Curriculum: models.CurriculumNewBirth,
	})
	assertCode(t, err, apperr.CodeValidation)

	_, err = svc.Create(context.Background(), pastorIdentity(), "c1", CreateInput{
		Name: "Group", Curriculum: "catechism",
	})
	assertCode(t, err, apperr.CodeValidation)

	member := auth.Identity{UserID: "m1", Role: rbac.RoleMember, ChurchID: "c1"}
	_, err = svc.Create(context.Background(), member, "c1", CreateInput{
		Name: "Group", Curriculum: models.CurriculumNewBirth,
	})
	assertCode(t, err, apperr.CodeForbidden)
}

func TestGetStudyAccess(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	study, err := svc.Create(ctx, teacherIdentity("t1"), "c1", CreateInput{
		Name: "Group", Curriculum: models.CurriculumNewBirth,
	})
	require.NoError(t, err)

	// Leading teacher and managers get in.
	_, err = svc.Get(ctx, teacherIdentity("t1"), "c1", study.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, pastorIdentity(), "c1", study.ID)
	require.NoError(t, err)

	// Another teacher does not.
	_, err = svc.Get(ctx, teacherIdentity("t2"), "c1", study.ID)
	assertCode(t, err, apperr.CodeForbidden)

	// An enrolled student does.
	require.NoError(t, mem.CreateStudent(ctx, &models.Student{ID: "st1", ChurchID: "c1", UserID: "u1"}))
	study.StudentIDs = []string{"st1"}
	require.NoError(t, mem.PutStudy(ctx, study))

	enrolled := auth.Identity{UserID: "u1", Role: rbac.RoleStudent, ChurchID: "c1"}
	_, err = svc.Get(ctx, enrolled, "c1", study.ID)
	require.NoError(t, err)

	// A non-enrolled student does not.
	require.NoError(t, mem.CreateStudent(ctx, &models.Student{ID: "st2", ChurchID: "c1", UserID: "u2"}))
	outsider := auth.Identity{UserID: "u2", Role: rbac.RoleStudent, ChurchID: "c1"}
	_, err = svc.Get(ctx, outsider, "c1", study.ID)
	assertCode(t, err, apperr.CodeForbidden)
}

func TestListStudiesScopes(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	s1, err := svc.Create(ctx, pastorIdentity(), "c1", CreateInput{Name: "A", Curriculum: models.CurriculumNewBirth, TeacherID: "t1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, pastorIdentity(), "c1", CreateInput{Name: "B", Curriculum: models.CurriculumNewBirth, TeacherID: "t2"})
	require.NoError(t, err)

	// Manager sees both.
	page, err := svc.List(ctx, pastorIdentity(), "c1", storage.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	// Teacher sees only their own.
	page, err = svc.List(ctx, teacherIdentity("t1"), "c1", storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "A", page.Items[0].Name)

	// Enrolled student sees only enrolled studies.
	require.NoError(t, mem.CreateStudent(ctx, &models.Student{ID: "st1", ChurchID: "c1", UserID: "u1"}))
	s1.StudentIDs = []string{"st1"}
	require.NoError(t, mem.PutStudy(ctx, s1))

	enrolled := auth.Identity{UserID: "u1", Role: rbac.RoleStudent, ChurchID: "c1"}
	page, err = svc.List(ctx, enrolled, "c1", storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, s1.ID, page.Items[0].ID)

	// A member with no journey record sees nothing.
	member := auth.Identity{UserID: "m1", Role: rbac.RoleMember, ChurchID: "c1"}
	page, err = svc.List(ctx, member, "c1", storage.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestUpdateStudyEnrollment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	study, err := svc.Create(ctx, teacherIdentity("t1"), "c1", CreateInput{
		Name: "Group", Curriculum: models.CurriculumNewBirth,
	})
	require.NoError(t, err)

	ids := []string{"st1", "st2"}
	got, err := svc.Update(ctx, teacherIdentity("t1"), "c1", study.ID, models.StudyPatch{StudentIDs: &ids})
	require.NoError(t, err)
	assert.Equal(t, ids, got.StudentIDs)

	// Another teacher cannot touch the study at all.
	name := "Hijacked"
	_, err = svc.Update(ctx, teacherIdentity("t2"), "c1", study.ID, models.StudyPatch{Name: &name})
	assertCode(t, err, apperr.CodeForbidden)
}

func TestUpdateStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	study, err := svc.Create(ctx, teacherIdentity("t1"), "c1", CreateInput{
		Name: "Group", Curriculum: models.CurriculumNewBirth,
	})
	require.NoError(t, err)

	got, err := svc.UpdateStatus(ctx, teacherIdentity("t1"), "c1", study.ID, models.StudyPaused)
	require.NoError(t, err)
	assert.Equal(t, models.StudyPaused, got.Status)

	_, err = svc.UpdateStatus(ctx, teacherIdentity("t1"), "c1", study.ID, "archived")
	assertCode(t, err, apperr.CodeValidation)

	_, err = svc.UpdateStatus(ctx, pastorIdentity(), "c1", "ghost", models.StudyCompleted)
	assertCode(t, err, apperr.CodeNotFound)
}
