package storage

import (
	"context"
	"errors"

	"github.com/shepherdhq/shepherd/pkg/models"
)

// ErrAlreadyExists is returned by Create operations when an item with the
// same key already exists.
var ErrAlreadyExists = errors.New("storage: item already exists")

// ListOptions controls pagination for list operations.
type ListOptions struct {
	// Limit is the maximum number of items to return. Zero means the
	// backend default.
	Limit int

	// Cursor resumes a previous page. Empty starts from the beginning.
	// Cursors are opaque; callers must not inspect or construct them.
	Cursor string
}

// Page is one page of a list result. NextCursor is empty when there are no
// further pages.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// StudentFilter narrows student listing. Zero values mean no constraint.
type StudentFilter struct {
	AssignedTeacherID string
	UserID            string
}

// StudyFilter narrows study listing. Zero values mean no constraint.
type StudyFilter struct {
	TeacherID string
	Status    models.StudyStatus
	StudentID string
}

// UserStore persists users. Lookups return (nil, nil) when the user does
// not exist.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	PutUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, churchID, id string) (*models.User, error)
	// GetUserByEmail looks up a user across all tenants by lowercased email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, churchID string, opts ListOptions) (Page[*models.User], error)
	// ListAllUsers lists users across every tenant. Platform admin only.
	ListAllUsers(ctx context.Context, opts ListOptions) (Page[*models.User], error)
}

// ChurchStore persists churches (tenants).
type ChurchStore interface {
	CreateChurch(ctx context.Context, church *models.Church) error
	PutChurch(ctx context.Context, church *models.Church) error
	GetChurch(ctx context.Context, id string) (*models.Church, error)
	GetChurchBySlug(ctx context.Context, slug string) (*models.Church, error)
	ListChurches(ctx context.Context, opts ListOptions) (Page[*models.Church], error)
}

// StudentStore persists student journey records.
type StudentStore interface {
	CreateStudent(ctx context.Context, student *models.Student) error
	PutStudent(ctx context.Context, student *models.Student) error
	GetStudent(ctx context.Context, churchID, id string) (*models.Student, error)
	ListStudents(ctx context.Context, churchID string, filter StudentFilter, opts ListOptions) (Page[*models.Student], error)
}

// StudyStore persists bible studies.
type StudyStore interface {
	CreateStudy(ctx context.Context, study *models.BibleStudy) error
	PutStudy(ctx context.Context, study *models.BibleStudy) error
	GetStudy(ctx context.Context, churchID, id string) (*models.BibleStudy, error)
	ListStudies(ctx context.Context, churchID string, filter StudyFilter, opts ListOptions) (Page[*models.BibleStudy], error)
}

// LessonStore persists per-study lesson progress rows.
type LessonStore interface {
	CreateLesson(ctx context.Context, lesson *models.LessonProgress) error
	PutLesson(ctx context.Context, lesson *models.LessonProgress) error
	GetLesson(ctx context.Context, studyID, id string) (*models.LessonProgress, error)
	// GetLessonByID resolves a lesson without knowing its study.
	GetLessonByID(ctx context.Context, id string) (*models.LessonProgress, error)
	ListLessons(ctx context.Context, studyID string, opts ListOptions) (Page[*models.LessonProgress], error)
}
