package alumni

import (
	"context"
	"fmt"
	"strings"

	"github.com/haniSalm/FAST-E-Learning/internal/validation"
)

type Service struct {
	repo      Repository
	validator *validation.Validator
}

func NewService(repo Repository, v *validation.Validator) *Service {
	return &Service{
		repo:      repo,
		validator: v,
	}
}

// Add puts an email on the alumni list after checking it against the institutional pattern.
func (s *Service) Add(ctx context.Context, email string) (*Alumni, error) {
	req := NewAlumni{Email: strings.TrimSpace(email)}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	a, err := s.repo.Create(ctx, &Alumni{Email: req.Email})
	if err != nil {
		return nil, fmt.Errorf("failed to add alumni %s: %w", req.Email, err)
	}
	return a, nil
}

// IsAlumni reports whether email is on the alumni list.
func (s *Service) IsAlumni(ctx context.Context, email string) (bool, error) {
	return s.repo.Exists(ctx, email)
}
