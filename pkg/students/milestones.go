package students

import (
	"context"
	"time"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/rbac"
)

// Milestone names accepted by UpdateNewBirth.
const (
	MilestoneWaterBaptism = "waterBaptism"
	MilestoneHolyGhost    = "holyGhost"
)

// MilestoneUpdate changes one New Birth milestone.
type MilestoneUpdate struct {
	Milestone string     `json:"milestone"`
	Completed bool       `json:"completed"`
	Date      *time.Time `json:"date,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

// UpdateNewBirth applies a milestone change and recomputes CompletionDate.
// Completing without an explicit date defaults to now; re-completing keeps
// the first recorded date unless a new one is supplied; un-completing keeps
// the date but clears CompletionDate if the gate no longer holds.
func (s *Service) UpdateNewBirth(ctx context.Context, id auth.Identity, churchID, studentID string, in MilestoneUpdate) (*models.Student, error) {
	if !rbac.HasPermission(id.Role, rbac.PermStudentUpdateMilestones) {
		return nil, apperr.Forbidden("missing permission student:update-milestones")
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

	var milestone *models.Milestone
	switch in.Milestone {
	case MilestoneWaterBaptism:
		milestone = &student.NewBirthStatus.WaterBaptism
	case MilestoneHolyGhost:
		milestone = &student.NewBirthStatus.HolyGhost
	default:
		return nil, apperr.Validation("milestone must be waterBaptism or holyGhost")
	}

	now := s.now().UTC()
	wasComplete := student.NewBirthStatus.BothComplete()

	applyMilestone(milestone, in.Completed, in.Date, in.Notes, now)
	recomputeCompletion(student, now)
	student.UpdatedAt = now

	if err := s.students.PutStudent(ctx, student); err != nil {
		return nil, apperr.Internal(err)
	}

	if s.metrics != nil {
		s.metrics.MilestoneUpdatesTotal.WithLabelValues(in.Milestone).Inc()
		if !wasComplete && student.NewBirthStatus.BothComplete() {
			s.metrics.JourneysCompletedTotal.Inc()
		}
	}
	return student, nil
}

func applyMilestone(m *models.Milestone, completed bool, date *time.Time, notes *string, now time.Time) {
	if completed {
		switch {
		case date != nil:
			m.Date = date
		case m.Date == nil:
			d := now
			m.Date = &d
		}
		m.Completed = true
	} else {
		// History survives un-marking; the date stays.
		m.Completed = false
	}
	if notes != nil {
		m.Notes = *notes
	}
}

// recomputeCompletion enforces that CompletionDate is non-nil exactly when
// both milestones are complete. An already-set date is kept so re-updates
// after completion do not shift it.
func recomputeCompletion(student *models.Student, now time.Time) {
	if student.NewBirthStatus.BothComplete() {
		if student.CompletionDate == nil {
			d := now
			student.CompletionDate = &d
		}
		return
	}
	student.CompletionDate = nil
}

// StepUpdate changes one First Steps tracker. Phases are independent;
// marking completed also marks started.
type StepUpdate struct {
	Started       *bool      `json:"started,omitempty"`
	Completed     *bool      `json:"completed,omitempty"`
	StartedDate   *time.Time `json:"startedDate,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// UpdateFirstStep applies a change to one of the eight trackers. Steps are
// independent; no ordering is enforced between them.
func (s *Service) UpdateFirstStep(ctx context.Context, id auth.Identity, churchID, studentID, step string, in StepUpdate) (*models.Student, error) {
	if !rbac.HasPermission(id.Role, rbac.PermStudentUpdateFirstSteps) {
		return nil, apperr.Forbidden("missing permission student:update-first-steps")
	}
	if !models.IsFirstStepsKey(step) {
		return nil, apperr.Validation("unknown first steps key: " + step)
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

	if student.FirstSteps == nil {
		student.FirstSteps = models.NewFirstSteps()
	}

	now := s.now().UTC()
	progress := student.FirstSteps[step]

	if in.Started != nil {
		if *in.Started {
			switch {
			case in.StartedDate != nil:
				progress.StartedDate = in.StartedDate
			case progress.StartedDate == nil:
				d := now
				progress.StartedDate = &d
			}
			progress.Started = true
		} else {
			progress.Started = false
		}
	}
	if in.Completed != nil {
		if *in.Completed {
			switch {
			case in.CompletedDate != nil:
				progress.CompletedDate = in.CompletedDate
			case progress.CompletedDate == nil:
				d := now
				progress.CompletedDate = &d
			}
			progress.Completed = true
			if !progress.Started {
				progress.Started = true
				if progress.StartedDate == nil {
					progress.StartedDate = progress.CompletedDate
				}
			}
		} else {
			progress.Completed = false
		}
	}
	if in.Notes != nil {
		progress.Notes = *in.Notes
	}

	student.FirstSteps[step] = progress
	student.UpdatedAt = now

	if err := s.students.PutStudent(ctx, student); err != nil {
		return nil, apperr.Internal(err)
	}

	if s.metrics != nil {
		s.metrics.FirstStepUpdatesTotal.WithLabelValues(step).Inc()
	}
	return student, nil
}
