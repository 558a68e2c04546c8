package studies

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/observability"
	"github.com/shepherdhq/shepherd/pkg/rbac"
	"github.com/shepherdhq/shepherd/pkg/storage"
)

// curriculumLessonCount fixes how many lesson rows are seeded when a study
// is created with each curriculum.
var curriculumLessonCount = map[models.Curriculum]int{
	models.CurriculumNewBirth:        6,
	models.CurriculumFirstSteps:      8,
	models.CurriculumBibleDoctrines:  12,
	models.CurriculumSpiritualGrowth: 10,
}

// Service implements bible study operations.
type Service struct {
	studies  storage.StudyStore
	students storage.StudentStore
	lessons  storage.LessonStore
	logger   *observability.Logger

	now   func() time.Time
	newID func() string
}

// NewService creates the studies service.
func NewService(
	studies storage.StudyStore,
	students storage.StudentStore,
	lessons storage.LessonStore,
	logger *observability.Logger,
) *Service {
	return &Service{
		studies:  studies,
		students: students,
		lessons:  lessons,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateInput is a study creation request.
type CreateInput struct {
	Name       string            `json:"name"`
	Curriculum models.Curriculum `json:"curriculum"`
	TeacherID  string            `json:"teacherId,omitempty"`
	StudentIDs []string          `json:"studentIds,omitempty"`
	Schedule   *models.Schedule  `json:"schedule,omitempty"`
}

// Create creates a study and seeds its lesson rows. Requires study:create.
// Teachers always lead their own studies; managers may name any teacher.
func (s *Service) Create(ctx context.Context, id auth.Identity, churchID string, in CreateInput) (*models.BibleStudy, error) {
	if !rbac.HasPermission(id.Role, rbac.PermStudyCreate) {
		return nil, apperr.Forbidden("missing permission study:create")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if !in.Curriculum.IsValid() {
		return nil, apperr.Validation("unknown curriculum")
	}

	teacherID := in.TeacherID
	if id.Role == rbac.RoleTeacher || teacherID == "" {
		teacherID = id.UserID
	}

	now := s.now().UTC()
	study := &models.BibleStudy{
		ID:         s.newID(),
		ChurchID:   churchID,
		TeacherID:  teacherID,
		Name:       strings.TrimSpace(in.Name),
		Curriculum: in.Curriculum,
		StudentIDs: in.StudentIDs,
		Status:     models.StudyInProgress,
		Schedule:   in.Schedule,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if study.StudentIDs == nil {
		study.StudentIDs = []string{}
	}

	if err := s.studies.CreateStudy(ctx, study); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, apperr.Conflict("study already exists")
		}
		return nil, apperr.Internal(err)
	}

	for n := 1; n <= curriculumLessonCount[study.Curriculum]; n++ {
		lesson := &models.LessonProgress{
			ID:           s.newID(),
			StudyID:      study.ID,
			LessonNumber: n,
			Title:        fmt.Sprintf("Lesson %d", n),
			Status:       models.LessonNotStarted,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.lessons.CreateLesson(ctx, lesson); err != nil {
			s.logger.WithError(err).WithField("study_id", study.ID).Error("failed to seed lesson")
			return nil, apperr.Internal(err)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"study_id":   study.ID,
		"church_id":  churchID,
		"curriculum": study.Curriculum,
	}).Info("study created")
	return study, nil
}

// Get fetches a study. Managers and the leading teacher have access;
// students and members only when enrolled.
func (s *Service) Get(ctx context.Context, id auth.Identity, churchID, studyID string) (*models.BibleStudy, error) {
	study, err := s.studies.GetStudy(ctx, churchID, studyID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if study == nil {
		return nil, apperr.NotFound("study not found")
	}

	allowed, err := s.canAccess(ctx, id, study)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("not allowed to access this study")
	}
	return study, nil
}

// canAccess resolves record-level study access. For students the requester's
// own journey record is looked up to check enrollment.
func (s *Service) canAccess(ctx context.Context, id auth.Identity, study *models.BibleStudy) (bool, error) {
	if rbac.CanAccessStudy(id.Role, id.UserID, study.TeacherID) {
		return true, nil
	}
	student, err := s.studentRecord(ctx, id, study.ChurchID)
	if err != nil {
		return false, err
	}
	return student != nil && study.HasStudent(student.ID), nil
}

func (s *Service) studentRecord(ctx context.Context, id auth.Identity, churchID string) (*models.Student, error) {
	page, err := s.students.ListStudents(ctx, churchID, storage.StudentFilter{UserID: id.UserID}, storage.ListOptions{Limit: 1})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	return page.Items[0], nil
}

// List pages through studies visible to the requester.
func (s *Service) List(ctx context.Context, id auth.Identity, churchID string, opts storage.ListOptions) (storage.Page[*models.BibleStudy], error) {
	scope := rbac.QueryScopeForRole(id.Role, id.UserID, churchID)

	filter := storage.StudyFilter{}
	switch scope.Kind {
	case rbac.ScopeAll, rbac.ScopeChurch:
		// no filter beyond the tenant partition
	case rbac.ScopeAssigned:
		filter.TeacherID = scope.TeacherID
	case rbac.ScopeSelf:
		student, err := s.studentRecord(ctx, id, churchID)
		if err != nil {
			return storage.Page[*models.BibleStudy]{}, err
		}
		if student == nil {
			// No journey record means no enrollments.
			return storage.Page[*models.BibleStudy]{Items: []*models.BibleStudy{}}, nil
		}
		filter.StudentID = student.ID
	}

	page, err := s.studies.ListStudies(ctx, churchID, filter, opts)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCursor) {
			return page, apperr.Validation("invalid cursor")
		}
		return page, apperr.Internal(err)
	}
	return page, nil
}

// Update patches a study. Requires study:update plus record-level access;
// changing the enrollment list additionally requires study:manage-enrollment.
func (s *Service) Update(ctx context.Context, id auth.Identity, churchID, studyID string, patch models.StudyPatch) (*models.BibleStudy, error) {
	if !rbac.HasPermission(id.Role, rbac.PermStudyUpdate) {
		return nil, apperr.Forbidden("missing permission study:update")
	}
	if patch.Curriculum != nil && !patch.Curriculum.IsValid() {
		return nil, apperr.Validation("unknown curriculum")
	}
	if patch.StudentIDs != nil && !rbac.HasPermission(id.Role, rbac.PermStudyManageEnrollment) {
		return nil, apperr.Forbidden("missing permission study:manage-enrollment")
	}

	study, err := s.studies.GetStudy(ctx, churchID, studyID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if study == nil {
		return nil, apperr.NotFound("study not found")
	}
	if !rbac.CanAccessStudy(id.Role, id.UserID, study.TeacherID) {
		return nil, apperr.Forbidden("not allowed to access this study")
	}

	patch.Apply(study)
	study.UpdatedAt = s.now().UTC()

	if err := s.studies.PutStudy(ctx, study); err != nil {
		return nil, apperr.Internal(err)
	}
	return study, nil
}

// UpdateStatus moves a study to a new lifecycle state. Requires
// study:update-status plus record-level access.
func (s *Service) UpdateStatus(ctx context.Context, id auth.Identity, churchID, studyID string, status models.StudyStatus) (*models.BibleStudy, error) {
	if !rbac.HasPermission(id.Role, rbac.PermStudyUpdateStatus) {
		return nil, apperr.Forbidden("missing permission study:update-status")
	}
	if !status.IsValid() {
		return nil, apperr.Validation("status must be in-progress, completed, or paused")
	}

	study, err := s.studies.GetStudy(ctx, churchID, studyID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if study == nil {
		return nil, apperr.NotFound("study not found")
	}
	if !rbac.CanAccessStudy(id.Role, id.UserID, study.TeacherID) {
		return nil, apperr.Forbidden("not allowed to access this study")
	}

	study.Status = status
	study.UpdatedAt = s.now().UTC()

	if err := s.studies.PutStudy(ctx, study); err != nil {
		return nil, apperr.Internal(err)
	}

	s.logger.WithFields(map[string]interface{}{
		"study_id": studyID,
		"status":   status,
	}).Info("study status changed")
	return study, nil
}
