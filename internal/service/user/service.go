package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/workpulse/attendance-backend-go/internal/domain/team"
	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/pkg/clock"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

type Service struct {
	userRepo      user.UserRepository
	teamRepo      team.TeamRepository
	jwtService    jwt.Service
	clk           *clock.Clock
	bcryptCost    int
	retentionDays int
}

func NewService(
	userRepo user.UserRepository,
	teamRepo team.TeamRepository,
	jwtService jwt.Service,
	clk *clock.Clock,
	bcryptCost int,
	retentionDays int,
) *Service {
	return &Service{
		userRepo:      userRepo,
		teamRepo:      teamRepo,
		jwtService:    jwtService,
		clk:           clk,
		bcryptCost:    bcryptCost,
		retentionDays: retentionDays,
	}
}

func (s *Service) requireAdmin(ctx context.Context) (user.Principal, error) {
	principal, err := s.jwtService.PrincipalFromContext(ctx)
	if err != nil {
		return user.Principal{}, err
	}
	if !principal.IsAdmin() {
		return user.Principal{}, user.ErrAccessDenied
	}
	return principal, nil
}

func (s *Service) validateTeamRef(ctx context.Context, teamID string) error {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			return validator.ValidationErrors{{Field: "team_id", Message: "team does not exist"}}
		}
		return fmt.Errorf("validate team reference: %w", err)
	}
	return nil
}

// Create registers a new user. Admin only.
func (s *Service) Create(ctx context.Context, req *user.CreateUserRequest) (*user.UserResponse, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.TeamID != nil && *req.TeamID != "" {
		if err := s.validateTeamRef(ctx, *req.TeamID); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	u := &user.User{
		EmployeeCode: req.EmployeeCode,
		Name:         req.Name,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         user.Role(req.Role),
		TeamID:       req.TeamID,
		StartDate:    req.StartDate,
		IsActive:     isActive,
	}
	if u.TeamID != nil && *u.TeamID == "" {
		u.TeamID = nil
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	resp := user.ToResponse(*u)
	return &resp, nil
}

// Get returns a user by id. Admins see anyone; managers only members of
// their own team. Denials are uniform and never confirm existence.
func (s *Service) Get(ctx context.Context, id string) (*user.UserResponse, error) {
	principal, err := s.jwtService.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if principal.Role == user.RoleEmployee {
		return nil, user.ErrAccessDenied
	}

	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) && !principal.IsAdmin() {
			// Managers get the same denial for missing and foreign users.
			return nil, user.ErrAccessDenied
		}
		return nil, err
	}
	if !principal.CanViewUser(u) {
		return nil, user.ErrAccessDenied
	}
	if u.IsDeleted() && !principal.IsAdmin() {
		return nil, user.ErrAccessDenied
	}

	resp := user.ToResponse(*u)
	return &resp, nil
}

// List returns a paginated directory page. Admin only.
func (s *Service) List(ctx context.Context, filter user.ListUsersFilter) (*user.ListUsersResponse, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	filter.Page, filter.Limit = validator.NormalizePage(filter.Page, filter.Limit)

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, user.ToResponse(u))
	}

	return &user.ListUsersResponse{
		Items: items,
		Pagination: user.Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		},
	}, nil
}

// Update applies whitelisted changes to a live user. Admin only.
func (s *Service) Update(ctx context.Context, req *user.UpdateUserRequest) (*user.UserResponse, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if u.IsDeleted() {
		return nil, user.ErrUserDeleted
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Username != nil {
		u.Username = req.Username
	}
	if req.TeamID.Set {
		if req.TeamID.Value == "" {
			u.TeamID = nil
		} else {
			if err := s.validateTeamRef(ctx, req.TeamID.Value); err != nil {
				return nil, err
			}
			teamID := req.TeamID.Value
			u.TeamID = &teamID
		}
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.StartDate != nil {
		u.StartDate = req.StartDate
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	resp := user.ToResponse(*u)
	return &resp, nil
}

// ResetPassword replaces a live user's password hash. Admin only. The
// new password never reaches the logs.
func (s *Service) ResetPassword(ctx context.Context, req *user.ResetPasswordRequest) error {
	if _, err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.userRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if u.IsDeleted() {
		return user.ErrUserDeleted
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, req.ID, string(hash))
}

// Delete soft-deletes a user and reports the restore deadline.
func (s *Service) Delete(ctx context.Context, id string) (*user.DeleteUserResponse, error) {
	principal, err := s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if principal.UserID == id {
		return nil, user.ErrSelfDelete
	}

	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsDeleted() {
		return nil, user.ErrUserDeleted
	}

	deletedAt := s.clk.Now()
	if err := s.userRepo.SoftDelete(ctx, id, deletedAt); err != nil {
		return nil, err
	}
	u.DeletedAt = &deletedAt

	deadline := deletedAt.AddDate(0, 0, s.retentionDays)
	return &user.DeleteUserResponse{
		User:            user.ToResponse(*u),
		RestoreDeadline: deadline.Format(time.RFC3339),
	}, nil
}

// Restore clears a soft deletion while the retention window is open.
func (s *Service) Restore(ctx context.Context, id string) (*user.UserResponse, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsDeleted() {
		return nil, user.ErrUserNotDeleted
	}

	if err := s.userRepo.Restore(ctx, id); err != nil {
		return nil, err
	}
	u.DeletedAt = nil

	resp := user.ToResponse(*u)
	return &resp, nil
}

// Purge hard-deletes users whose retention window has lapsed, cascading
// over their attendances and requests. Safe to invoke repeatedly.
func (s *Service) Purge(ctx context.Context) (*user.PurgeResponse, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	cutoff := s.clk.Now().AddDate(0, 0, -s.retentionDays)
	purged, attendances, requests, err := s.userRepo.PurgeExpired(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	slog.Info("purged expired users",
		"purged", purged,
		"attendances", attendances,
		"requests", requests,
	)

	return &user.PurgeResponse{
		Purged: purged,
		CascadeDeleted: user.CascadeDeleted{
			Attendances: attendances,
			Requests:    requests,
		},
	}, nil
}

// ListTeams exposes the team directory for scoping and assignment.
func (s *Service) ListTeams(ctx context.Context) ([]team.TeamResponse, error) {
	if _, err := s.jwtService.PrincipalFromContext(ctx); err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]team.TeamResponse, 0, len(teams))
	for _, t := range teams {
		items = append(items, team.ToResponse(t))
	}
	return items, nil
}
