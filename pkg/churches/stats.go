package churches

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/rbac"
	"github.com/shepherdhq/shepherd/pkg/storage"
)

// statsScanPageSize bounds each storage page during stats scans.
const statsScanPageSize = 100

// Stats is the aggregate snapshot for one church.
type Stats struct {
	TotalUsers    int            `json:"totalUsers"`
	ActiveUsers   int            `json:"activeUsers"`
	UsersByRole   map[string]int `json:"usersByRole"`
	TotalStudents int            `json:"totalStudents"`

	NewBirthCompleted  int `json:"newBirthCompleted"`
	NewBirthInProgress int `json:"newBirthInProgress"`
	CompletedThisMonth int `json:"completedThisMonth"`

	ActiveStudies int `json:"activeStudies"`
	TotalStudies  int `json:"totalStudies"`
}

// Stats scans the tenant's users, students, and studies concurrently and
// aggregates counters. Requires church:view-stats.
func (s *Service) Stats(ctx context.Context, id auth.Identity, churchID string) (*Stats, error) {
	if !rbac.HasPermission(id.Role, rbac.PermChurchViewStats) {
		return nil, apperr.Forbidden("missing permission church:view-stats")
	}

	church, err := s.churches.GetChurch(ctx, churchID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if church == nil {
		return nil, apperr.NotFound("church not found")
	}

	stats := &Stats{UsersByRole: map[string]int{}}
	now := s.now().UTC()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		opts := storage.ListOptions{Limit: statsScanPageSize}
		for {
			page, err := s.users.ListUsers(gctx, churchID, opts)
			if err != nil {
				return err
			}
			for _, u := range page.Items {
				stats.TotalUsers++
				if u.IsActive {
					stats.ActiveUsers++
				}
				stats.UsersByRole[string(u.Role)]++
			}
			if page.NextCursor == "" {
				return nil
			}
			opts.Cursor = page.NextCursor
		}
	})

	g.Go(func() error {
		opts := storage.ListOptions{Limit: statsScanPageSize}
		for {
			page, err := s.students.ListStudents(gctx, churchID, storage.StudentFilter{}, opts)
			if err != nil {
				return err
			}
			for _, st := range page.Items {
				stats.TotalStudents++
				switch {
				case st.NewBirthStatus.BothComplete():
					stats.NewBirthCompleted++
					if st.CompletionDate != nil &&
						st.CompletionDate.Year() == now.Year() && st.CompletionDate.Month() == now.Month() {
						stats.CompletedThisMonth++
					}
				case st.NewBirthStatus.WaterBaptism.Completed || st.NewBirthStatus.HolyGhost.Completed:
					stats.NewBirthInProgress++
				}
			}
			if page.NextCursor == "" {
				return nil
			}
			opts.Cursor = page.NextCursor
		}
	})

	g.Go(func() error {
		opts := storage.ListOptions{Limit: statsScanPageSize}
		for {
			page, err := s.studies.ListStudies(gctx, churchID, storage.StudyFilter{}, opts)
			if err != nil {
				return err
			}
			for _, study := range page.Items {
				stats.TotalStudies++
				if study.Status == models.StudyInProgress {
					stats.ActiveStudies++
				}
			}
			if page.NextCursor == "" {
				return nil
			}
			opts.Cursor = page.NextCursor
		}
	})

	if err := g.Wait(); err != nil {
		return nil, apperr.Internal(err)
	}
	return stats, nil
}
