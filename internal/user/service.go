package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNoAssociatedDoctor = errors.New("no doctor associated with this account")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// ResolveDoctorID maps an acting user to the doctor calendar they operate
// on: a doctor resolves to their own id, a secretary to the associated
// doctor. This is resolved once by the caller and passed down; the
// availability engine never re-derives it.
func (s *Service) ResolveDoctorID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load user: %w", err)
	}

	switch u.Role {
	case RoleDoctor:
		return u.ID, nil
	case RoleSecretary:
		if u.DoctorID == nil || *u.DoctorID == uuid.Nil {
			return uuid.Nil, ErrNoAssociatedDoctor
		}
		return *u.DoctorID, nil
	default:
		return uuid.Nil, ErrNoAssociatedDoctor
	}
}
