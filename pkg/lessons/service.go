package lessons

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/observability"
	"github.com/shepherdhq/shepherd/pkg/rbac"
	"github.com/shepherdhq/shepherd/pkg/storage"
)

// Service implements lesson progress operations.
type Service struct {
	lessons  storage.LessonStore
	studies  storage.StudyStore
	students storage.StudentStore
	logger   *observability.Logger

	now func() time.Time
}

// NewService creates the lessons service.
func NewService(
	lessons storage.LessonStore,
	studies storage.StudyStore,
	students storage.StudentStore,
	logger *observability.Logger,
) *Service {
	return &Service{
		lessons:  lessons,
		studies:  studies,
		students: students,
		logger:   logger,
		now:      time.Now,
	}
}

// resolveStudy loads the study a lesson belongs to within the requester's
// tenant. A study outside the tenant is indistinguishable from a missing
// one.
func (s *Service) resolveStudy(ctx context.Context, churchID, studyID string) (*models.BibleStudy, error) {
	study, err := s.studies.GetStudy(ctx, churchID, studyID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if study == nil {
		return nil, apperr.NotFound("study not found")
	}
	return study, nil
}

// canRead resolves record-level lesson visibility: study leadership or
// enrollment.
func (s *Service) canRead(ctx context.Context, id auth.Identity, study *models.BibleStudy) (bool, error) {
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

// ListByStudy pages through a study's lessons ordered by lesson number.
func (s *Service) ListByStudy(ctx context.Context, id auth.Identity, churchID, studyID string, opts storage.ListOptions) (storage.Page[*models.LessonProgress], error) {
	var empty storage.Page[*models.LessonProgress]

	study, err := s.resolveStudy(ctx, churchID, studyID)
	if err != nil {
		return empty, err
	}
	allowed, err := s.canRead(ctx, id, study)
	if err != nil {
		return empty, err
	}
	if !allowed {
		return empty, apperr.Forbidden("not allowed to access this study")
	}

	page, err := s.lessons.ListLessons(ctx, studyID, opts)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCursor) {
			return empty, apperr.Validation("invalid cursor")
		}
		return empty, apperr.Internal(err)
	}

	// Key order within the partition is by lesson id; present curriculum
	// order instead.
	sort.Slice(page.Items, func(i, j int) bool {
		return page.Items[i].LessonNumber < page.Items[j].LessonNumber
	})
	return page, nil
}

// Get resolves a lesson by id and checks access through its study.
func (s *Service) Get(ctx context.Context, id auth.Identity, churchID, lessonID string) (*models.LessonProgress, error) {
	lesson, study, err := s.load(ctx, churchID, lessonID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canRead(ctx, id, study)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("not allowed to access this lesson")
	}
	return lesson, nil
}

func (s *Service) load(ctx context.Context, churchID, lessonID string) (*models.LessonProgress, *models.BibleStudy, error) {
	lesson, err := s.lessons.GetLessonByID(ctx, lessonID)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	if lesson == nil {
		return nil, nil, apperr.NotFound("lesson not found")
	}

	study, err := s.studies.GetStudy(ctx, churchID, lesson.StudyID)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	if study == nil {
		// The lesson's study is not in this tenant.
		return nil, nil, apperr.NotFound("lesson not found")
	}
	return lesson, study, nil
}

// Update patches a lesson's title or status. Requires lesson:update plus
// study leadership.
func (s *Service) Update(ctx context.Context, id auth.Identity, churchID, lessonID string, patch models.LessonPatch) (*models.LessonProgress, error) {
	if !rbac.HasPermission(id.Role, rbac.PermLessonUpdate) {
		return nil, apperr.Forbidden("missing permission lesson:update")
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, apperr.Validation("status must be not-started, in-progress, or completed")
	}

	lesson, study, err := s.load(ctx, churchID, lessonID)
	if err != nil {
		return nil, err
	}
	if !rbac.CanAccessStudy(id.Role, id.UserID, study.TeacherID) {
		return nil, apperr.Forbidden("not allowed to access this lesson")
	}

	now := s.now().UTC()
	patch.Apply(lesson)
	if patch.Status != nil {
		switch *patch.Status {
		case models.LessonCompleted:
			if lesson.CompletedDate == nil {
				lesson.CompletedDate = &now
			}
		default:
			lesson.CompletedDate = nil
		}
	}
	lesson.UpdatedAt = now

	if err := s.lessons.PutLesson(ctx, lesson); err != nil {
		return nil, apperr.Internal(err)
	}
	return lesson, nil
}

// Complete marks a lesson completed. Idempotent; the first completion date
// is kept.
func (s *Service) Complete(ctx context.Context, id auth.Identity, churchID, lessonID string) (*models.LessonProgress, error) {
	if !rbac.HasPermission(id.Role, rbac.PermLessonComplete) {
		return nil, apperr.Forbidden("missing permission lesson:complete")
	}

	lesson, study, err := s.load(ctx, churchID, lessonID)
	if err != nil {
		return nil, err
	}
	if !rbac.CanAccessStudy(id.Role, id.UserID, study.TeacherID) {
		return nil, apperr.Forbidden("not allowed to access this lesson")
	}

	now := s.now().UTC()
	lesson.Status = models.LessonCompleted
	if lesson.CompletedDate == nil {
		lesson.CompletedDate = &now
	}
	lesson.UpdatedAt = now

	if err := s.lessons.PutLesson(ctx, lesson); err != nil {
		return nil, apperr.Internal(err)
	}
	return lesson, nil
}

// AddNote appends a note. Teachers and managers write teacher notes;
// enrolled students write student notes. Notes are never replaced.
func (s *Service) AddNote(ctx context.Context, id auth.Identity, churchID, lessonID, text string) (*models.LessonProgress, error) {
	if !rbac.HasPermission(id.Role, rbac.PermLessonAddNotes) {
		return nil, apperr.Forbidden("missing permission lesson:add-notes")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("note text is required")
	}

	lesson, study, err := s.load(ctx, churchID, lessonID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	note := models.LessonNote{AuthorID: id.UserID, Text: text, CreatedAt: now}

	if rbac.CanAccessStudy(id.Role, id.UserID, study.TeacherID) {
		lesson.TeacherNotes = append(lesson.TeacherNotes, note)
	} else {
		student, err := s.studentRecord(ctx, id, churchID)
		if err != nil {
			return nil, err
		}
		if student == nil || !study.HasStudent(student.ID) {
			return nil, apperr.Forbidden("not allowed to access this lesson")
		}
		lesson.StudentNotes = append(lesson.StudentNotes, note)
	}
	lesson.UpdatedAt = now

	if err := s.lessons.PutLesson(ctx, lesson); err != nil {
		return nil, apperr.Internal(err)
	}
	return lesson, nil
}
