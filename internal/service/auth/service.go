package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/workpulse/attendance-backend-go/internal/domain/auth"
	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
)

type Service struct {
	userRepo   user.UserRepository
	jwtService jwt.Service
}

func NewService(userRepo user.UserRepository, jwtService jwt.Service) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Login authenticates an identifier (email, employee code or username)
// against live users. Every failure surfaces as ErrInvalidCredentials;
// the response never reveals which part was wrong.
func (s *Service) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}
	if !u.IsActive || u.IsDeleted() {
		return nil, auth.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	token, _, err := s.jwtService.GenerateAccessToken(u.ID, u.Role, u.TeamID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &auth.LoginResponse{
		Token: token,
		User:  user.ToResponse(*u),
	}, nil
}

// Me resolves the bearer token back to the caller's user record.
func (s *Service) Me(ctx context.Context) (*user.UserResponse, error) {
	principal, err := s.jwtService.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
	if u.IsDeleted() || !u.IsActive {
		return nil, auth.ErrInvalidToken
	}

	resp := user.ToResponse(*u)
	return &resp, nil
}
