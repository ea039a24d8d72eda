package holiday

import (
	"context"

	"github.com/workpulse/attendance-backend-go/internal/domain/holiday"
	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
)

type Service struct {
	holidayRepo holiday.HolidayRepository
	jwtService  jwt.Service
}

func NewService(holidayRepo holiday.HolidayRepository, jwtService jwt.Service) *Service {
	return &Service{
		holidayRepo: holidayRepo,
		jwtService:  jwtService,
	}
}

func (s *Service) requireAdmin(ctx context.Context) error {
	principal, err := s.jwtService.PrincipalFromContext(ctx)
	if err != nil {
		return err
	}
	if !principal.IsAdmin() {
		return user.ErrAccessDenied
	}
	return nil
}

// List returns the holiday calendar, ordered by date.
func (s *Service) List(ctx context.Context) ([]holiday.HolidayResponse, error) {
	if _, err := s.jwtService.PrincipalFromContext(ctx); err != nil {
		return nil, err
	}

	items, err := s.holidayRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]holiday.HolidayResponse, 0, len(items))
	for _, h := range items {
		out = append(out, holiday.ToResponse(h))
	}
	return out, nil
}

// Create registers a holiday date. Admin only.
func (s *Service) Create(ctx context.Context, req *holiday.CreateHolidayRequest) (*holiday.HolidayResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	h := &holiday.Holiday{Date: req.Date, Name: req.Name}
	if err := s.holidayRepo.Create(ctx, h); err != nil {
		return nil, err
	}

	resp := holiday.ToResponse(*h)
	return &resp, nil
}

// Delete removes a holiday date. Admin only.
func (s *Service) Delete(ctx context.Context, date string) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	return s.holidayRepo.Delete(ctx, date)
}
