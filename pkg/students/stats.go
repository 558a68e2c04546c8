package students

import (
	"context"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/rbac"
	"github.com/shepherdhq/shepherd/pkg/storage"
)

const statsScanPageSize = 100

// NewBirthStats aggregates milestone progress across a church.
type NewBirthStats struct {
	TotalStudents         int `json:"totalStudents"`
	NotStarted            int `json:"notStarted"`
	InProgress            int `json:"inProgress"`
	Completed             int `json:"completed"`
	WaterBaptismCompleted int `json:"waterBaptismCompleted"`
	HolyGhostCompleted    int `json:"holyGhostCompleted"`
}

// StepStats counts one First Steps tracker across a church.
type StepStats struct {
	Started   int `json:"started"`
	Completed int `json:"completed"`
}

// FirstStepsStats aggregates tracker progress across a church.
type FirstStepsStats struct {
	TotalStudents     int                  `json:"totalStudents"`
	StepProgress      map[string]StepStats `json:"stepProgress"`
	AverageCompletion float64              `json:"averageCompletion"`
	FullyCompleted    int                  `json:"fullyCompleted"`
}

// scanStudents walks every student in the church, invoking fn per record.
func (s *Service) scanStudents(ctx context.Context, churchID string, fn func(*models.Student)) error {
	opts := storage.ListOptions{Limit: statsScanPageSize}
	for {
		page, err := s.students.ListStudents(ctx, churchID, storage.StudentFilter{}, opts)
		if err != nil {
			return err
		}
		for _, student := range page.Items {
			fn(student)
		}
		if page.NextCursor == "" {
			return nil
		}
		opts.Cursor = page.NextCursor
	}
}

// StatsNewBirth recomputes New Birth aggregates from a full tenant scan.
// Requires student:view-stats.
func (s *Service) StatsNewBirth(ctx context.Context, id auth.Identity, churchID string) (*NewBirthStats, error) {
	if !rbac.HasPermission(id.Role, rbac.PermStudentViewStats) {
		return nil, apperr.Forbidden("missing permission student:view-stats")
	}

	stats := &NewBirthStats{}
	err := s.scanStudents(ctx, churchID, func(student *models.Student) {
		stats.TotalStudents++
		water := student.NewBirthStatus.WaterBaptism.Completed
		ghost := student.NewBirthStatus.HolyGhost.Completed
		if water {
			stats.WaterBaptismCompleted++
		}
		if ghost {
			stats.HolyGhostCompleted++
		}
		switch {
		case water && ghost:
			stats.Completed++
		case water || ghost:
			stats.InProgress++
		default:
			stats.NotStarted++
		}
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return stats, nil
}

// StatsFirstSteps recomputes First Steps aggregates from a full tenant
// scan. Requires student:view-stats.
func (s *Service) StatsFirstSteps(ctx context.Context, id auth.Identity, churchID string) (*FirstStepsStats, error) {
	if !rbac.HasPermission(id.Role, rbac.PermStudentViewStats) {
		return nil, apperr.Forbidden("missing permission student:view-stats")
	}

	keys := models.FirstStepsKeys()
	stats := &FirstStepsStats{StepProgress: map[string]StepStats{}}
	for _, key := range keys {
		stats.StepProgress[key] = StepStats{}
	}

	var completionSum float64
	err := s.scanStudents(ctx, churchID, func(student *models.Student) {
		stats.TotalStudents++
		completed := 0
		for _, key := range keys {
			progress := student.FirstSteps[key]
			entry := stats.StepProgress[key]
			if progress.Started {
				entry.Started++
			}
			if progress.Completed {
				entry.Completed++
				completed++
			}
			stats.StepProgress[key] = entry
		}
		completionSum += float64(completed) / float64(len(keys))
		if completed == len(keys) {
			stats.FullyCompleted++
		}
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if stats.TotalStudents > 0 {
		stats.AverageCompletion = completionSum / float64(stats.TotalStudents)
	}
	return stats, nil
}
