package database

import (
	"context"

	"github.com/nandanugg/tourist-safety/module/core/domain"
)

// UserDirectory stores registered tourists and their last known position.
// ListAll returns the most recently registered users first.
type UserDirectory interface {
	Register(ctx context.Context, user domain.User, position *domain.Coordinate) error
	Remove(ctx context.Context, userID string) error
	UpdatePosition(ctx context.Context, userID string, position domain.Coordinate) error
	GetByID(ctx context.Context, userID string) (*domain.TrackedUser, error)
	ListAll(ctx context.Context) ([]domain.User, error)
}
