// Package storagetest provides an in-memory implementation of the storage
// interfaces for service and handler tests.
package storagetest

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/storage"
)

// Memory implements every storage interface with maps. Zero value is not
// usable; call NewMemory.
type Memory struct {
	mu sync.Mutex

	// Err, when set, is returned by every operation. Used to exercise
	// internal-error paths.
	Err error

	users    map[string]*models.User    // churchID/id
	churches map[string]*models.Church  // id
	students map[string]*models.Student // churchID/id
	studies  map[string]*models.BibleStudy
	lessons  map[string]*models.LessonProgress // studyID/id
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:    map[string]*models.User{},
		churches: map[string]*models.Church{},
		students: map[string]*models.Student{},
		studies:  map[string]*models.BibleStudy{},
		lessons:  map[string]*models.LessonProgress{},
	}
}

var (
	_ storage.UserStore    = (*Memory)(nil)
	_ storage.ChurchStore  = (*Memory)(nil)
	_ storage.StudentStore = (*Memory)(nil)
	_ storage.StudyStore   = (*Memory)(nil)
	_ storage.LessonStore  = (*Memory)(nil)
)

func key(parent, id string) string { return parent + "/" + id }

func paginate[T any](items []*T, opts storage.ListOptions) (storage.Page[*T], error) {
	start := 0
	if opts.Cursor != "" {
		decoded, err := storage.DecodeCursor(opts.Cursor)
		if err != nil {
			return storage.Page[*T]{}, err
		}
		start, _ = strconv.Atoi(decoded["offset"])
	}
	if start > len(items) {
		start = len(items)
	}

	end := len(items)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	page := storage.Page[*T]{Items: items[start:end]}
	if end < len(items) {
		page.NextCursor = storage.EncodeCursor(map[string]string{"offset": strconv.Itoa(end)})
	}
	return page, nil
}

// --- users ---

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	k := key(user.ChurchID, user.ID)
	if _, ok := m.users[k]; ok {
		return storage.ErrAlreadyExists
	}
	clone := *user
	m.users[k] = &clone
	return nil
}

func (m *Memory) PutUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	clone := *user
	m.users[key(user.ChurchID, user.ID)] = &clone
	return nil
}

func (m *Memory) GetUser(_ context.Context, churchID, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.users[key(churchID, id)]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListUsers(_ context.Context, churchID string, opts storage.ListOptions) (storage.Page[*models.User], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return storage.Page[*models.User]{}, m.Err
	}
	var items []*models.User
	for _, user := range m.users {
		if user.ChurchID == churchID {
			clone := *user
			items = append(items, &clone)
		}
	}
	sortByID(items, func(u *models.User) string { return u.ID })
	return paginate(items, opts)
}

func (m *Memory) ListAllUsers(_ context.Context, opts storage.ListOptions) (storage.Page[*models.User], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return storage.Page[*models.User]{}, m.Err
	}
	var items []*models.User
	for _, user := range m.users {
		clone := *user
		items = append(items, &clone)
	}
	sortByID(items, func(u *models.User) string { return u.ID })
	return paginate(items, opts)
}

// --- churches ---

func (m *Memory) CreateChurch(_ context.Context, church *models.Church) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.churches[church.ID]; ok {
		return storage.ErrAlreadyExists
	}
	clone := *church
	m.churches[church.ID] = &clone
	return nil
}

func (m *Memory) PutChurch(_ context.Context, church *models.Church) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	clone := *church
	m.churches[church.ID] = &clone
	return nil
}

func (m *Memory) GetChurch(_ context.Context, id string) (*models.Church, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	church, ok := m.churches[id]
	if !ok {
		return nil, nil
	}
	clone := *church
	return &clone, nil
}

func (m *Memory) GetChurchBySlug(_ context.Context, slug string) (*models.Church, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, church := range m.churches {
		if church.Slug == slug {
			clone := *church
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListChurches(_ context.Context, opts storage.ListOptions) (storage.Page[*models.Church], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return storage.Page[*models.Church]{}, m.Err
	}
	var items []*models.Church
	for _, church := range m.churches {
		clone := *church
		items = append(items, &clone)
	}
	sortByID(items, func(c *models.Church) string { return c.ID })
	return paginate(items, opts)
}

// --- students ---

func (m *Memory) CreateStudent(_ context.Context, student *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	k := key(student.ChurchID, student.ID)
	if _, ok := m.students[k]; ok {
		return storage.ErrAlreadyExists
	}
	clone := *student
	m.students[k] = &clone
	return nil
}

func (m *Memory) PutStudent(_ context.Context, student *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	clone := *student
	m.students[key(student.ChurchID, student.ID)] = &clone
	return nil
}

func (m *Memory) GetStudent(_ context.Context, churchID, id string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	student, ok := m.students[key(churchID, id)]
	if !ok {
		return nil, nil
	}
	clone := *student
	return &clone, nil
}

func (m *Memory) ListStudents(_ context.Context, churchID string, filter storage.StudentFilter, opts storage.ListOptions) (storage.Page[*models.Student], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return storage.Page[*models.Student]{}, m.Err
	}
	var items []*models.Student
	for _, student := range m.students {
		if student.ChurchID != churchID {
			continue
		}
		if filter.AssignedTeacherID != "" && student.AssignedTeacherID != filter.AssignedTeacherID {
			continue
		}
		if filter.UserID != "" && student.UserID != filter.UserID {
			continue
		}
		clone := *student
		items = append(items, &clone)
	}
	sortByID(items, func(s *models.Student) string { return s.ID })
	return paginate(items, opts)
}

// --- studies ---

func (m *Memory) CreateStudy(_ context.Context, study *models.BibleStudy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	k := key(study.ChurchID, study.ID)
	if _, ok := m.studies[k]; ok {
		return storage.ErrAlreadyExists
	}
	clone := *study
	m.studies[k] = &clone
	return nil
}

func (m *Memory) PutStudy(_ context.Context, study *models.BibleStudy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	clone := *study
	m.studies[key(study.ChurchID, study.ID)] = &clone
	return nil
}

func (m *Memory) GetStudy(_ context.Context, churchID, id string) (*models.BibleStudy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	study, ok := m.studies[key(churchID, id)]
	if !ok {
		return nil, nil
	}
	clone := *study
	return &clone, nil
}

func (m *Memory) ListStudies(_ context.Context, churchID string, filter storage.StudyFilter, opts storage.ListOptions) (storage.Page[*models.BibleStudy], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return storage.Page[*models.BibleStudy]{}, m.Err
	}
	var items []*models.BibleStudy
	for _, study := range m.studies {
		if study.ChurchID != churchID {
			continue
		}
		if filter.TeacherID != "" && study.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Status != "" && study.Status != filter.Status {
			continue
		}
		if filter.StudentID != "" && !study.HasStudent(filter.StudentID) {
			continue
		}
		clone := *study
		items = append(items, &clone)
	}
	sortByID(items, func(s *models.BibleStudy) string { return s.ID })
	return paginate(items, opts)
}

// --- lessons ---

func (m *Memory) CreateLesson(_ context.Context, lesson *models.LessonProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	k := key(lesson.StudyID, lesson.ID)
	if _, ok := m.lessons[k]; ok {
		return storage.ErrAlreadyExists
	}
	clone := *lesson
	m.lessons[k] = &clone
	return nil
}

func (m *Memory) PutLesson(_ context.Context, lesson *models.LessonProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	clone := *lesson
	m.lessons[key(lesson.StudyID, lesson.ID)] = &clone
	return nil
}

func (m *Memory) GetLesson(_ context.Context, studyID, id string) (*models.LessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	lesson, ok := m.lessons[key(studyID, id)]
	if !ok {
		return nil, nil
	}
	clone := *lesson
	return &clone, nil
}

func (m *Memory) GetLessonByID(_ context.Context, id string) (*models.LessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, lesson := range m.lessons {
		if lesson.ID == id {
			clone := *lesson
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListLessons(_ context.Context, studyID string, opts storage.ListOptions) (storage.Page[*models.LessonProgress], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return storage.Page[*models.LessonProgress]{}, m.Err
	}
	var items []*models.LessonProgress
	for _, lesson := range m.lessons {
		if lesson.StudyID == studyID {
			clone := *lesson
			items = append(items, &clone)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].LessonNumber < items[j].LessonNumber })
	return paginate(items, opts)
}

func sortByID[T any](items []*T, id func(*T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
