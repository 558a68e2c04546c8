package churches

import (
	"context"
	"time"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/observability"
	"github.com/shepherdhq/shepherd/pkg/rbac"
	"github.com/shepherdhq/shepherd/pkg/storage"
)

// Service implements church operations.
type Service struct {
	churches storage.ChurchStore
	users    storage.UserStore
	students storage.StudentStore
	studies  storage.StudyStore
	logger   *observability.Logger

	now func() time.Time
}

// NewService creates the churches service.
func NewService(
	churches storage.ChurchStore,
	users storage.UserStore,
	students storage.StudentStore,
	studies storage.StudyStore,
	logger *observability.Logger,
) *Service {
	return &Service{
		churches: churches,
		users:    users,
		students: students,
		studies:  studies,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the requester's church.
func (s *Service) Get(ctx context.Context, id auth.Identity, churchID string) (*models.Church, error) {
	if !rbac.HasPermission(id.Role, rbac.PermChurchRead) {
		return nil, apperr.Forbidden("missing permission church:read")
	}

	church, err := s.churches.GetChurch(ctx, churchID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if church == nil {
		return nil, apperr.NotFound("church not found")
	}
	return church, nil
}

// Update patches the church profile. Requires church:manage-settings;
// subscription changes are reserved for platform admins.
func (s *Service) Update(ctx context.Context, id auth.Identity, churchID string, patch models.ChurchPatch) (*models.Church, error) {
	if !rbac.HasPermission(id.Role, rbac.PermChurchManageSettings) {
		return nil, apperr.Forbidden("missing permission church:manage-settings")
	}
	if (patch.SubscriptionTier != nil || patch.SubscriptionStatus != nil) && !id.IsPlatformAdmin() {
		return nil, apperr.Forbidden("subscription changes require a platform admin")
	}

	church, err := s.churches.GetChurch(ctx, churchID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if church == nil {
		return nil, apperr.NotFound("church not found")
	}

	patch.Apply(church)
	church.UpdatedAt = s.now().UTC()

	if err := s.churches.PutChurch(ctx, church); err != nil {
		return nil, apperr.Internal(err)
	}

	s.logger.WithField("church_id", churchID).Info("church updated")
	return church, nil
}
