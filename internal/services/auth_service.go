package services

import (
	"context"
	"errors"
	"log"
	"time"

	"task-tracker.com/task-tracker/internal/auth"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	repository "task-tracker.com/task-tracker/internal/repositories"
	"task-tracker.com/task-tracker/internal/sessions"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

type AuthService struct {
	users   *repository.UserRepository
	issuer  *auth.TokenIssuer
	revoker sessions.Revoker
}

type Session struct {
	Token     string
	User      model.User
	ExpiresAt time.Time
}

func NewAuthService(
	users *repository.UserRepository,
	issuer *auth.TokenIssuer,
	revoker sessions.Revoker,
) *AuthService {
	return &AuthService{
		users:   users,
		issuer:  issuer,
		revoker: revoker,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, user.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, claims, err := s.issuer.Issue(*user)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     token,
		User:      user.Ref(),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authenticate resolves a bearer token to its claims, refusing tokens that
// were logged out.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.Auth("session has been logged out")
	}
	return claims, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	return s.revoker.Revoke(ctx, claims.ID, s.issuer.TTLLeft(claims))
}

func (s *AuthService) ListUsers(ctx context.Context, role constants.Role) ([]model.User, error) {
	if role != "" && !role.IsValid() {
		return nil, apperrors.Validation("unknown role " + string(role))
	}
	return s.users.ListByRole(ctx, role)
}

// SeedUsers creates one account per role on an empty database and reports
// how many were created.
func (s *AuthService) SeedUsers(ctx context.Context, password string) (int, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, err
	}

	seeds := []model.User{
		{Username: "pelaksana1", Role: constants.RoleExecutor},
		{Username: "leader1", Role: constants.RoleLeader},
		{Username: "manager1", Role: constants.RoleManager},
	}

	created := 0
	for i := range seeds {
		seeds[i].Password = hash
		if err := s.users.Create(ctx, &seeds[i]); err != nil {
			return created, err
		}
		created++
		log.Printf("seeded user %s (%s)", seeds[i].Username, seeds[i].Role)
	}
	return created, nil
}
