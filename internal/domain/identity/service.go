package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthtech/hms/internal/platform/auth"
	"github.com/healthtech/hms/internal/platform/policy"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrInvalidCredentials deliberately covers both unknown usernames and
	// wrong passwords so login failures leak nothing about which accounts
	// exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleChangeDenied   = errors.New("only admins may change roles")
)

type Service struct {
	users UserRepository
}

func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

func (s *Service) CreateUser(ctx context.Context, u *User, password string) error {
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if u.Role == "" {
		u.Role = policy.RolePatient
	}
	if !policy.ValidRole(u.Role) {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	u.IsActive = true
	return s.users.Create(ctx, u)
}

// UpdateUser applies the changed fields. A role change is restricted to
// admin callers; a non-empty password is re-hashed.
func (s *Service) UpdateUser(ctx context.Context, caller auth.Identity, u *User, password string) error {
	existing, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	if u.Role == "" {
		u.Role = existing.Role
	}
	if !policy.ValidRole(u.Role) {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	if u.Role != existing.Role && caller.Role != policy.RoleAdmin && !caller.Elevated {
		return ErrRoleChangeDenied
	}

	u.PasswordHash = existing.PasswordHash
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	return s.users.Update(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

func (s *Service) SearchUsers(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error) {
	return s.users.Search(ctx, params, limit, offset)
}

// ListDoctors returns active doctor accounts, for populating appointment and
// order forms.
func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.Search(ctx, map[string]string{"role": policy.RoleDoctor}, limit, offset)
}

// Authenticate verifies a username/password pair. Failures are uniform.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
