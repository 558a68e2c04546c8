package models

import (
	"time"

	"github.com/shepherdhq/shepherd/pkg/rbac"
)

// SystemChurchID is the sentinel tenant carried by platform admins, who have
// no default church of their own.
const SystemChurchID = "SYSTEM"

// User is an identity within a church. Email is stored lowercased and is
// unique across all tenants (enforced in the registration path).
type User struct {
	ID           string    `json:"id" dynamodbav:"id"`
	ChurchID     string    `json:"churchId" dynamodbav:"churchId"`
	ChurchIDs    []string  `json:"churchIds,omitempty" dynamodbav:"churchIds,omitempty"`
	Email        string    `json:"email" dynamodbav:"email"`
	FirstName    string    `json:"firstName" dynamodbav:"firstName"`
	LastName     string    `json:"lastName" dynamodbav:"lastName"`
	Phone        string    `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Role         rbac.Role `json:"role" dynamodbav:"role"`
	PasswordHash string    `json:"-" dynamodbav:"passwordHash"`
	IsActive     bool      `json:"isActive" dynamodbav:"isActive"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Name returns the user's display name.
func (u *User) Name() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasChurchAccess reports whether the user may act within the church, either
// as their primary tenant or through the multi-church access list.
func (u *User) HasChurchAccess(churchID string) bool {
	if u.ChurchID == churchID {
		return true
	}
	for _, id := range u.ChurchIDs {
		if id == churchID {
			return true
		}
	}
	return false
}

// SubscriptionTier is the church's billing tier.
type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierStandard SubscriptionTier = "standard"
	TierPremium  SubscriptionTier = "premium"
)

// SubscriptionStatus is the state of the church's subscription.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Address is a church's mailing address.
type Address struct {
	Street     string `json:"street,omitempty" dynamodbav:"street,omitempty"`
	City       string `json:"city,omitempty" dynamodbav:"city,omitempty"`
	State      string `json:"state,omitempty" dynamodbav:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty" dynamodbav:"postalCode,omitempty"`
	Country    string `json:"country,omitempty" dynamodbav:"country,omitempty"`
}

// ChurchSettings holds tenant-configurable presentation settings.
type ChurchSettings struct {
	Timezone    string `json:"timezone,omitempty" dynamodbav:"timezone,omitempty"`
	ServiceDay  string `json:"serviceDay,omitempty" dynamodbav:"serviceDay,omitempty"`
	ServiceTime string `json:"serviceTime,omitempty" dynamodbav:"serviceTime,omitempty"`
}

// Church is a tenant. Slug is unique and used for lookup.
type Church struct {
	ID                 string             `json:"id" dynamodbav:"id"`
	Slug               string             `json:"slug" dynamodbav:"slug"`
	Name               string             `json:"name" dynamodbav:"name"`
	Address            *Address           `json:"address,omitempty" dynamodbav:"address,omitempty"`
	PastorID           string             `json:"pastorId,omitempty" dynamodbav:"pastorId,omitempty"`
	Settings           ChurchSettings     `json:"settings" dynamodbav:"settings"`
	SubscriptionTier   SubscriptionTier   `json:"subscriptionTier" dynamodbav:"subscriptionTier"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus" dynamodbav:"subscriptionStatus"`
	IsActive           bool               `json:"isActive" dynamodbav:"isActive"`
	CreatedAt          time.Time          `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Milestone is one of the two New Birth milestones. Date is kept even when
// a milestone is later un-marked; history is preserved on purpose.
type Milestone struct {
	Completed bool       `json:"completed" dynamodbav:"completed"`
	Date      *time.Time `json:"date,omitempty" dynamodbav:"date,omitempty"`
	Notes     string     `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
}

// NewBirthStatus tracks the two independent New Birth milestones. There is
// no ordering constraint between them.
type NewBirthStatus struct {
	WaterBaptism Milestone `json:"waterBaptism" dynamodbav:"waterBaptism"`
	HolyGhost    Milestone `json:"holyGhost" dynamodbav:"holyGhost"`
}

// BothComplete reports whether the 2-of-2 AND-gate is satisfied.
func (s NewBirthStatus) BothComplete() bool {
	return s.WaterBaptism.Completed && s.HolyGhost.Completed
}

// StepProgress is one of the eight First Steps trackers: a two-phase
// started -> completed progression with optional timestamps and notes.
type StepProgress struct {
	Started       bool       `json:"started" dynamodbav:"started"`
	StartedDate   *time.Time `json:"startedDate,omitempty" dynamodbav:"startedDate,omitempty"`
	Completed     bool       `json:"completed" dynamodbav:"completed"`
	CompletedDate *time.Time `json:"completedDate,omitempty" dynamodbav:"completedDate,omitempty"`
	Notes         string     `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
}

// Student annotates a user (role=student) with discipleship journey state.
// CompletionDate is non-nil iff both New Birth milestones are complete; it
// is recomputed on every milestone update.
type Student struct {
	ID                string                  `json:"id" dynamodbav:"id"`
	ChurchID          string                  `json:"churchId" dynamodbav:"churchId"`
	UserID            string                  `json:"userId" dynamodbav:"userId"`
	AssignedTeacherID string                  `json:"assignedTeacherId,omitempty" dynamodbav:"assignedTeacherId,omitempty"`
	StartDate         *time.Time              `json:"startDate,omitempty" dynamodbav:"startDate,omitempty"`
	CompletionDate    *time.Time              `json:"completionDate,omitempty" dynamodbav:"completionDate,omitempty"`
	NewBirthStatus    NewBirthStatus          `json:"newBirthStatus" dynamodbav:"newBirthStatus"`
	FirstSteps        map[string]StepProgress `json:"firstStepsProgress" dynamodbav:"firstStepsProgress"`
	CreatedAt         time.Time               `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt         time.Time               `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Curriculum identifies one of the four fixed study curricula.
type Curriculum string

const (
	CurriculumNewBirth        Curriculum = "new-birth"
	CurriculumFirstSteps      Curriculum = "first-steps"
	CurriculumBibleDoctrines  Curriculum = "bible-doctrines"
	CurriculumSpiritualGrowth Curriculum = "spiritual-growth"
)

// Curricula lists the four fixed curricula.
func Curricula() []Curriculum {
	return []Curriculum{CurriculumNewBirth, CurriculumFirstSteps, CurriculumBibleDoctrines, CurriculumSpiritualGrowth}
}

// IsValid reports whether c is a known curriculum.
func (c Curriculum) IsValid() bool {
	for _, known := range Curricula() {
		if c == known {
			return true
		}
	}
	return false
}

// StudyStatus is the lifecycle state of a bible study.
type StudyStatus string

const (
	StudyInProgress StudyStatus = "in-progress"
	StudyCompleted  StudyStatus = "completed"
	StudyPaused     StudyStatus = "paused"
)

// IsValid reports whether s is a known study status.
func (s StudyStatus) IsValid() bool {
	return s == StudyInProgress || s == StudyCompleted || s == StudyPaused
}

// Schedule is an optional recurring meeting slot for a study.
type Schedule struct {
	Day      string `json:"day,omitempty" dynamodbav:"day,omitempty"`
	Time     string `json:"time,omitempty" dynamodbav:"time,omitempty"`
	Location string `json:"location,omitempty" dynamodbav:"location,omitempty"`
}

// BibleStudy is a teacher-led group working through one curriculum.
type BibleStudy struct {
	ID         string      `json:"id" dynamodbav:"id"`
	ChurchID   string      `json:"churchId" dynamodbav:"churchId"`
	TeacherID  string      `json:"teacherId" dynamodbav:"teacherId"`
	Name       string      `json:"name" dynamodbav:"name"`
	Curriculum Curriculum  `json:"curriculum" dynamodbav:"curriculum"`
	StudentIDs []string    `json:"studentIds" dynamodbav:"studentIds"`
	Status     StudyStatus `json:"status" dynamodbav:"status"`
	Schedule   *Schedule   `json:"schedule,omitempty" dynamodbav:"schedule,omitempty"`
	CreatedAt  time.Time   `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt" dynamodbav:"updatedAt"`
}

// HasStudent reports whether the student is enrolled in the study.
func (b *BibleStudy) HasStudent(studentID string) bool {
	for _, id := range b.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// LessonStatus is the tri-state progress of a single lesson.
type LessonStatus string

const (
	LessonNotStarted LessonStatus = "not-started"
	LessonInProgress LessonStatus = "in-progress"
	LessonCompleted  LessonStatus = "completed"
)

// IsValid reports whether s is a known lesson status.
func (s LessonStatus) IsValid() bool {
	return s == LessonNotStarted || s == LessonInProgress || s == LessonCompleted
}

// LessonNote is a single appended note. Notes are never replaced, only
// appended.
type LessonNote struct {
	AuthorID  string    `json:"authorId" dynamodbav:"authorId"`
	Text      string    `json:"text" dynamodbav:"text"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// LessonProgress is one row per lesson number within a study.
type LessonProgress struct {
	ID            string       `json:"id" dynamodbav:"id"`
	StudyID       string       `json:"studyId" dynamodbav:"studyId"`
	LessonNumber  int          `json:"lessonNumber" dynamodbav:"lessonNumber"`
	Title         string       `json:"title" dynamodbav:"title"`
	Status        LessonStatus `json:"status" dynamodbav:"status"`
	TeacherNotes  []LessonNote `json:"teacherNotes,omitempty" dynamodbav:"teacherNotes,omitempty"`
	StudentNotes  []LessonNote `json:"studentNotes,omitempty" dynamodbav:"studentNotes,omitempty"`
	CompletedDate *time.Time   `json:"completedDate,omitempty" dynamodbav:"completedDate,omitempty"`
	CreatedAt     time.Time    `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt" dynamodbav:"updatedAt"`
}
