package services

import (
	"context"
	"errors"
	"strings"

	"github.com/resume-analyzer/apiserver/internal/auth"
	"github.com/resume-analyzer/apiserver/internal/store"
	"github.com/resume-analyzer/apiserver/types"
)

// ErrEmailTaken is returned when a signup collides with an existing email.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned for a bad email/password pair. The
// same error covers "no such user" so responses don't reveal which
// emails are registered.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateRole(ctx context.Context, id int, role string) error
	Count(ctx context.Context) (int, error)
}

// UserService encapsulates account use-cases: signup, login, and the
// admin bootstrap.
type UserService struct {
	repo      UserRepository
	passwords *auth.PasswordService

	adminEmail    string
	adminPassword string
}

func NewUserService(repo UserRepository, passwords *auth.PasswordService, adminEmail, adminPassword string) *UserService {
	return &UserService{
		repo:          repo,
		passwords:     passwords,
		adminEmail:    strings.ToLower(strings.TrimSpace(adminEmail)),
		adminPassword: adminPassword,
	}
}

// Register creates a regular user account. Concurrent signups racing on
// the same email are settled by the store's unique index: the loser
// gets ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, email, name, password string) (types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return types.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:        email,
		Name:         name,
		Role:         types.RoleUser,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, err
	}
	return user, nil
}

// Authenticate verifies an email/password pair and returns the account.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if !s.passwords.Verify(password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// AuthenticateAdmin verifies the configured admin credentials,
// bootstrapping the admin account on first login: the account is
// created if absent, and escalated to the admin role if it exists as a
// regular user. Role escalation is the only mutation user records ever
// see.
func (s *UserService) AuthenticateAdmin(ctx context.Context, email, password string) (types.User, error) {
	if s.adminEmail == "" || !strings.EqualFold(strings.TrimSpace(email), s.adminEmail) {
		return types.User{}, ErrInvalidCredentials
	}

	admin, err := s.ensureAdmin(ctx)
	if err != nil {
		return types.User{}, err
	}

	if !s.passwords.Verify(password, admin.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}
	return admin, nil
}

func (s *UserService) ensureAdmin(ctx context.Context) (types.User, error) {
	admin, err := s.repo.GetByEmail(ctx, s.adminEmail)
	if err == nil {
		if admin.Role != types.RoleAdmin {
			if err := s.repo.UpdateRole(ctx, admin.ID, types.RoleAdmin); err != nil {
				return types.User{}, err
			}
			admin.Role = types.RoleAdmin
		}
		return admin, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hash, err := s.passwords.Hash(s.adminPassword)
	if err != nil {
		return types.User{}, err
	}

	admin, err = s.repo.Create(ctx, types.User{
		Email:        s.adminEmail,
		Name:         "Admin",
		Role:         types.RoleAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		// Lost a bootstrap race; the winner's record is authoritative.
		if errors.Is(err, store.ErrDuplicate) {
			return s.repo.GetByEmail(ctx, s.adminEmail)
		}
		return types.User{}, err
	}
	return admin, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
