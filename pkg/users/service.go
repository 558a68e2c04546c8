package users

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

// Service implements user account operations.
type Service struct {
	users    storage.UserStore
	students storage.StudentStore
	churches storage.ChurchStore
	tokens   *auth.TokenManager
	hasher   *auth.Hasher
	logger   *observability.Logger
	metrics  *observability.Metrics

	now   func() time.Time
	newID func() string
}

// NewService creates the users service.
func NewService(
	users storage.UserStore,
	students storage.StudentStore,
	churches storage.ChurchStore,
	tokens *auth.TokenManager,
	hasher *auth.Hasher,
	logger *observability.Logger,
	metrics *observability.Metrics,
) *Service {
	return &Service{
		users:    users,
		students: students,
		churches: churches,
		tokens:   tokens,
		hasher:   hasher,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateInput is an admin-side user creation request.
type CreateInput struct {
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone,omitempty"`
	Role      rbac.Role `json:"role"`
}

func (in *CreateInput) validate() *apperr.Error {
	details := map[string]string{}
	if !validEmail(in.Email) {
		details["email"] = "valid email is required"
	}
	if len(in.Password) < auth.MinPasswordLength {
		details["password"] = "password must be at least 8 characters"
	}
	if strings.TrimSpace(in.FirstName) == "" {
		details["firstName"] = "first name is required"
	}
	if strings.TrimSpace(in.LastName) == "" {
		details["lastName"] = "last name is required"
	}
	if in.Role != "" && !in.Role.IsValid() {
		details["role"] = "unknown role"
	}
	if len(details) > 0 {
		return apperr.Validation("invalid user input").WithDetails(details)
	}
	return nil
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

// Create creates a user inside the church on behalf of an authenticated
// requester. The requester must hold user:create and be allowed to assign
// the target role.
func (s *Service) Create(ctx context.Context, id auth.Identity, churchID string, in CreateInput) (*models.User, error) {
	if !rbac.HasPermission(id.Role, rbac.PermUserCreate) {
		return nil, apperr.Forbidden("missing permission user:create")
	}
	if in.Role == "" {
		in.Role = rbac.RoleMember
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if !rbac.CanAssignRole(id.Role, in.Role) {
		return nil, apperr.Forbidden("role " + string(id.Role) + " may not create users with role " + string(in.Role))
	}

	user, err := s.insertUser(ctx, churchID, in)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":   user.ID,
		"church_id": churchID,
		"role":      user.Role,
	}).Info("user created")
	return user, nil
}

// insertUser is the shared creation path for Create and Register: email
// uniqueness check, password hashing, conditional write, and the student
// record for student-role users.
func (s *Service) insertUser(ctx context.Context, churchID string, in CreateInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.EmailExists(email)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           s.newID(),
		ChurchID:     churchID,
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         in.Role,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, apperr.Conflict("user already exists")
		}
		return nil, apperr.Internal(err)
	}

	// Student-role users get a journey record immediately so milestone and
	// step updates never have to lazily create one.
	if user.Role == rbac.RoleStudent {
		student := &models.Student{
			ID:             s.newID(),
			ChurchID:       churchID,
			UserID:         user.ID,
			StartDate:      &now,
			NewBirthStatus: models.NewBirthStatus{},
			FirstSteps:     models.NewFirstSteps(),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.students.CreateStudent(ctx, student); err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to create student record for new user")
			return nil, apperr.Internal(err)
		}
	}

	return user, nil
}

// Get fetches a user. Requesters may always read themselves; reading others
// requires user:read.
func (s *Service) Get(ctx context.Context, id auth.Identity, churchID, userID string) (*models.User, error) {
	if userID != id.UserID && !rbac.HasPermission(id.Role, rbac.PermUserRead) {
		return nil, apperr.Forbidden("missing permission user:read")
	}

	user, err := s.users.GetUser(ctx, churchID, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// List pages through users. Platform admins with no tenant selected list
// across every church; user:read holders list their church; everyone else
// gets only their own record.
func (s *Service) List(ctx context.Context, id auth.Identity, churchID string, opts storage.ListOptions) (storage.Page[*models.User], error) {
	if id.IsPlatformAdmin() && churchID == "" {
		page, err := s.users.ListAllUsers(ctx, opts)
		return page, wrapListErr(err)
	}

	if rbac.HasPermission(id.Role, rbac.PermUserRead) {
		page, err := s.users.ListUsers(ctx, churchID, opts)
		return page, wrapListErr(err)
	}

	self, err := s.users.GetUser(ctx, churchID, id.UserID)
	if err != nil {
		return storage.Page[*models.User]{}, apperr.Internal(err)
	}
	page := storage.Page[*models.User]{Items: []*models.User{}}
	if self != nil {
		page.Items = append(page.Items, self)
	}
	return page, nil
}

// Update patches a user. Requires user:update, ownership, or platform
// admin; role changes additionally require user:assign-roles plus the
// creation-matrix check on the new role.
func (s *Service) Update(ctx context.Context, id auth.Identity, churchID, userID string, patch models.UserPatch) (*models.User, error) {
	user, err := s.users.GetUser(ctx, churchID, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	if !rbac.CanModifyResource(id.Role, id.UserID, user.ID, rbac.PermUserUpdate) {
		return nil, apperr.Forbidden("not allowed to update this user")
	}
	if patch.Role != nil {
		if !patch.Role.IsValid() {
			return nil, apperr.Validation("unknown role")
		}
		if !rbac.HasPermission(id.Role, rbac.PermUserAssignRoles) || !rbac.CanAssignRole(id.Role, *patch.Role) {
			return nil, apperr.Forbidden("not allowed to assign role " + string(*patch.Role))
		}
	}
	// Only managers may toggle account status; owners cannot re-enable
	// themselves.
	if patch.IsActive != nil && !rbac.IsManager(id.Role) {
		return nil, apperr.Forbidden("not allowed to change account status")
	}
	// The church access list feeds CanSwitchTo, so changing it grants
	// cross-tenant access. Only platform admins may do that.
	if patch.ChurchIDs != nil && !id.IsPlatformAdmin() {
		return nil, apperr.Forbidden("not allowed to change church access")
	}

	patch.Apply(user)
	user.UpdatedAt = s.now().UTC()

	if err := s.users.PutUser(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func wrapListErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrInvalidCursor) {
		return apperr.Validation("invalid cursor")
	}
	return apperr.Internal(err)
}
