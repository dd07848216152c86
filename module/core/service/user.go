package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/database"
)

type sessionStopper interface {
	Stop(userID string) bool
}

type UserService struct {
	repo     database.UserDirectory
	sessions sessionStopper
	newID    func() string
}

func NewUserService(repo database.UserDirectory, sessions sessionStopper) *UserService {
	return &UserService{
		repo:     repo,
		sessions: sessions,
		newID:    uuid.NewString,
	}
}

// Register adds a user to the directory, generating an id when none is given.
func (s *UserService) Register(ctx context.Context, user domain.User, position *domain.Coordinate) (*domain.User, error) {
	if position != nil {
		if err := position.Validate(); err != nil {
			return nil, err
		}
	}
	if user.ID == "" {
		user.ID = s.newID()
	}
	if err := s.repo.Register(ctx, user, position); err != nil {
		return nil, fmt.Errorf("register user %s: %w", user.ID, err)
	}
	return &user, nil
}

// Remove deletes the user and ends any live tracking session they have.
func (s *UserService) Remove(ctx context.Context, userID string) error {
	if err := s.repo.Remove(ctx, userID); err != nil {
		return fmt.Errorf("remove user %s: %w", userID, err)
	}
	if s.sessions != nil {
		s.sessions.Stop(userID)
	}
	return nil
}

func (s *UserService) UpdatePosition(ctx context.Context, userID string, position domain.Coordinate) error {
	if err := position.Validate(); err != nil {
		return err
	}
	return s.repo.UpdatePosition(ctx, userID, position)
}

func (s *UserService) Get(ctx context.Context, userID string) (*domain.TrackedUser, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListAll(ctx)
}
