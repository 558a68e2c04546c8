package models

import (
	"time"

	"github.com/shepherdhq/shepherd/pkg/rbac"
)

// UserPatch enumerates the mutable fields of a User. ID, ChurchID, Email,
// and PasswordHash are deliberately absent.
type UserPatch struct {
	FirstName *string    `json:"firstName,omitempty"`
	LastName  *string    `json:"lastName,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Role      *rbac.Role `json:"role,omitempty"`
	IsActive  *bool      `json:"isActive,omitempty"`
	ChurchIDs *[]string  `json:"churchIds,omitempty"`
}

// Apply copies the set fields onto the user.
func (p UserPatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.ChurchIDs != nil {
		u.ChurchIDs = *p.ChurchIDs
	}
}

// ChurchPatch enumerates the mutable fields of a Church. ID and Slug are
// deliberately absent.
type ChurchPatch struct {
	Name               *string             `json:"name,omitempty"`
	Address            *Address            `json:"address,omitempty"`
	PastorID           *string             `json:"pastorId,omitempty"`
	Settings           *ChurchSettings     `json:"settings,omitempty"`
	SubscriptionTier   *SubscriptionTier   `json:"subscriptionTier,omitempty"`
	SubscriptionStatus *SubscriptionStatus `json:"subscriptionStatus,omitempty"`
	IsActive           *bool               `json:"isActive,omitempty"`
}

// Apply copies the set fields onto the church.
func (p ChurchPatch) Apply(c *Church) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Address != nil {
		c.Address = p.Address
	}
	if p.PastorID != nil {
		c.PastorID = *p.PastorID
	}
	if p.Settings != nil {
		c.Settings = *p.Settings
	}
	if p.SubscriptionTier != nil {
		c.SubscriptionTier = *p.SubscriptionTier
	}
	if p.SubscriptionStatus != nil {
		c.SubscriptionStatus = *p.SubscriptionStatus
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
}

// StudentPatch enumerates the mutable fields of a Student. Journey state
// (milestones, first steps, completion date) changes only through the
// dedicated milestone and step operations, never through a patch.
type StudentPatch struct {
	AssignedTeacherID *string    `json:"assignedTeacherId,omitempty"`
	StartDate         *time.Time `json:"startDate,omitempty"`
}

// Apply copies the set fields onto the student.
func (p StudentPatch) Apply(s *Student) {
	if p.AssignedTeacherID != nil {
		s.AssignedTeacherID = *p.AssignedTeacherID
	}
	if p.StartDate != nil {
		s.StartDate = p.StartDate
	}
}

// StudyPatch enumerates the mutable fields of a BibleStudy. Status changes
// go through the dedicated status operation.
type StudyPatch struct {
	Name       *string     `json:"name,omitempty"`
	Curriculum *Curriculum `json:"curriculum,omitempty"`
	Schedule   *Schedule   `json:"schedule,omitempty"`
	StudentIDs *[]string   `json:"studentIds,omitempty"`
}

// Apply copies the set fields onto the study.
func (p StudyPatch) Apply(b *BibleStudy) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Curriculum != nil {
		b.Curriculum = *p.Curriculum
	}
	if p.Schedule != nil {
		b.Schedule = p.Schedule
	}
	if p.StudentIDs != nil {
		b.StudentIDs = *p.StudentIDs
	}
}

// LessonPatch enumerates the mutable fields of a LessonProgress. Notes are
// append-only through the notes operation; completion goes through the
// complete operation.
type LessonPatch struct {
	Title  *string       `json:"title,omitempty"`
	Status *LessonStatus `json:"status,omitempty"`
}

// Apply copies the set fields onto the lesson.
func (p LessonPatch) Apply(l *LessonProgress) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
}
