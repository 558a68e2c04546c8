package students

import (
	"context"
	"errors"
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

// Service implements student journey operations.
type Service struct {
	students storage.StudentStore
	users    storage.UserStore
	logger   *observability.Logger
	metrics  *observability.Metrics

	now   func() time.Time
	newID func() string
}

// NewService creates the students service.
func NewService(
	students storage.StudentStore,
	users storage.UserStore,
	logger *observability.Logger,
	metrics *observability.Metrics,
) *Service {
	return &Service{
		students: students,
		users:    users,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateInput is a student record creation request.
type CreateInput struct {
	UserID            string     `json:"userId"`
	AssignedTeacherID string     `json:"assignedTeacherId,omitempty"`
	StartDate         *time.Time `json:"startDate,omitempty"`
}

// Create starts a journey record for an existing user. Requires
// student:create. The backing user must exist in the church; a user may
// have at most one record per church.
func (s *Service) Create(ctx context.Context, id auth.Identity, churchID string, in CreateInput) (*models.Student, error) {
	if !rbac.HasPermission(id.Role, rbac.PermStudentCreate) {
		return nil, apperr.Forbidden("missing permission student:create")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, apperr.Validation("userId is required")
	}

	user, err := s.users.GetUser(ctx, churchID, in.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.Validation("userId does not reference a user in this church")
	}

	existing, err := s.students.ListStudents(ctx, churchID, storage.StudentFilter{UserID: in.UserID}, storage.ListOptions{Limit: 1})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(existing.Items) > 0 {
		return nil, apperr.Conflict("user already has a student record")
	}

	now := s.now().UTC()
	startDate := in.StartDate
	if startDate == nil {
		startDate = &now
	}

	student := &models.Student{
		ID:                s.newID(),
		ChurchID:          churchID,
		UserID:            in.UserID,
		AssignedTeacherID: in.AssignedTeacherID,
		StartDate:         startDate,
		NewBirthStatus:    models.NewBirthStatus{},
		FirstSteps:        models.NewFirstSteps(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.students.CreateStudent(ctx, student); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, apperr.Conflict("student already exists")
		}
		return nil, apperr.Internal(err)
	}

	s.logger.WithFields(map[string]interface{}{
		"student_id": student.ID,
		"church_id":  churchID,
	}).Info("student record created")
	return student, nil
}

// Get fetches a student. Managers see everyone, teachers their assigned
// students, and a student or member only the record backed by their own
// user.
func (s *Service) Get(ctx context.Context, id auth.Identity, churchID, studentID string) (*models.Student, error) {
	student, err := s.students.GetStudent(ctx, churchID, studentID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if student == nil {
		return nil, apperr.NotFound("student not found")
	}
	if !s.canAccess(id, student) {
		return nil, apperr.Forbidden("not allowed to access this student")
	}
	return student, nil
}

func (s *Service) canAccess(id auth.Identity, student *models.Student) bool {
	if rbac.CanAccessStudent(id.Role, id.UserID, student.AssignedTeacherID) {
		return true
	}
	return student.UserID == id.UserID
}

// List pages through students visible to the requester, per the role's
// query scope.
func (s *Service) List(ctx context.Context, id auth.Identity, churchID string, opts storage.ListOptions) (storage.Page[*models.Student], error) {
	scope := rbac.QueryScopeForRole(id.Role, id.UserID, churchID)

	filter := storage.StudentFilter{}
	switch scope.Kind {
	case rbac.ScopeAll, rbac.ScopeChurch:
		// no filter beyond the tenant partition
	case rbac.ScopeAssigned:
		filter.AssignedTeacherID = scope.TeacherID
	case rbac.ScopeSelf:
		filter.UserID = scope.UserID
	}

	page, err := s.students.ListStudents(ctx, churchID, filter, opts)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCursor) {
			return page, apperr.Validation("invalid cursor")
		}
		return page, apperr.Internal(err)
	}
	return page, nil
}

// Update patches a student record. Requires student:update plus
// record-level access; reassigning the teacher additionally requires
// student:assign-teacher.
func (s *Service) Update(ctx context.Context, id auth.Identity, churchID, studentID string, patch models.StudentPatch) (*models.Student, error) {
	if !rbac.HasPermission(id.Role, rbac.PermStudentUpdate) {
		return nil, apperr.Forbidden("missing permission student:update")
	}

	student, err := s.students.GetStudent(ctx, churchID, studentID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if student == nil {
		return nil, apperr.NotFound("student not found")
	}
	if !rbac.CanAccessStudent(id.Role, id.UserID, student.AssignedTeacherID) {
		return nil, apperr.Forbidden("not allowed to access this student")
	}
	if patch.AssignedTeacherID != nil && !rbac.HasPermission(id.Role, rbac.PermStudentAssignTeacher) {
		return nil, apperr.Forbidden("missing permission student:assign-teacher")
	}

	patch.Apply(student)
	student.UpdatedAt = s.now().UTC()

	if err := s.students.PutStudent(ctx, student); err != nil {
		return nil, apperr.Internal(err)
	}
	return student, nil
}
