package users

import (
	"context"
	"strings"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/rbac"
	"github.com/shepherdhq/shepherd/pkg/storage"
)

// RegisterInput is the public self-registration request.
type RegisterInput struct {
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	ChurchID  string    `json:"churchId"`
	Role      rbac.Role `json:"role,omitempty"`
	Phone     string    `json:"phone,omitempty"`
}

// Session is the result of any token-minting operation.
type Session struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
}

func (s *Service) newSession(user *models.User) (*Session, error) {
	token, err := s.tokens.Generate(auth.IdentityFromUser(user))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if s.metrics != nil {
		s.metrics.TokensIssuedTotal.Inc()
	}
	return &Session{
		User:      user,
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}

// Register creates an account through the public endpoint. Self-registration
// may only claim the member or student role; privileged roles are created by
// managers through Create.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if in.Role == "" {
		in.Role = rbac.RoleMember
	}
	if in.Role != rbac.RoleMember && in.Role != rbac.RoleStudent {
		return nil, apperr.Validation("self-registration allows only member or student roles")
	}
	create := CreateInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Role:      in.Role,
	}
	if err := create.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ChurchID) == "" {
		return nil, apperr.Validation("churchId is required")
	}

	church, err := s.churches.GetChurch(ctx, in.ChurchID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if church == nil {
		return nil, apperr.ChurchNotFound(in.ChurchID)
	}

	user, err := s.insertUser(ctx, in.ChurchID, create)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RegistrationsTotal.Inc()
	}
	s.logger.WithFields(map[string]interface{}{
		"user_id":   user.ID,
		"church_id": user.ChurchID,
		"role":      user.Role,
	}).Info("user registered")

	return s.newSession(user)
}

// Login verifies credentials and mints a session. Bad email and bad
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil || !s.hasher.Compare(user.PasswordHash, password) {
		if s.metrics != nil {
			s.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		return nil, apperr.InvalidCredentials()
	}
	if !user.IsActive {
		if s.metrics != nil {
			s.metrics.LoginsTotal.WithLabelValues("disabled").Inc()
		}
		return nil, apperr.AccountDisabled()
	}

	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues("success").Inc()
	}
	return s.newSession(user)
}

// Me returns the requester's own record. The row lives in the home
// partition regardless of which tenant the token is currently scoped to.
func (s *Service) Me(ctx context.Context, id auth.Identity) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id.Home(), id.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// MyChurches lists the churches the requester may operate in. Platform
// admins see every church.
func (s *Service) MyChurches(ctx context.Context, id auth.Identity) ([]*models.Church, error) {
	if id.IsPlatformAdmin() {
		var all []*models.Church
		opts := storage.ListOptions{Limit: 100}
		for {
			page, err := s.churches.ListChurches(ctx, opts)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			all = append(all, page.Items...)
			if page.NextCursor == "" {
				return all, nil
			}
			opts.Cursor = page.NextCursor
		}
	}

	var out []*models.Church
	for _, churchID := range id.AccessibleChurchIDs() {
		church, err := s.churches.GetChurch(ctx, churchID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if church != nil {
			out = append(out, church)
		}
	}
	return out, nil
}

// SwitchChurch mints a fresh token scoped to the target church. Tokens are
// self-contained; this is the only way tenant context changes.
func (s *Service) SwitchChurch(ctx context.Context, id auth.Identity, churchID string) (*Session, error) {
	if strings.TrimSpace(churchID) == "" {
		return nil, apperr.Validation("churchId is required")
	}
	if !id.CanSwitchTo(churchID) {
		return nil, apperr.Forbidden("no access to the requested church")
	}

	church, err := s.churches.GetChurch(ctx, churchID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if church == nil {
		return nil, apperr.ChurchNotFound(churchID)
	}

	// Resolve through the home partition so a token that is already
	// switched can switch again, including back.
	user, err := s.users.GetUser(ctx, id.Home(), id.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	switched := auth.IdentityFromUser(user).SwitchedTo(churchID)
	token, err := s.tokens.Generate(switched)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if s.metrics != nil {
		s.metrics.TokensIssuedTotal.Inc()
	}
	return &Session{
		User:      user,
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}
