package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/database"
)

var _ database.UserDirectory = (*UserRepo)(nil)

// UserRepo keeps the directory in process memory; contents are lost on restart.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]*domain.TrackedUser
	now   func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]*domain.TrackedUser), now: time.Now}
}

func (r *UserRepo) Register(_ context.Context, user domain.User, position *domain.Coordinate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return domain.ErrUserExists
	}
	r.users[user.ID] = &domain.TrackedUser{
		User:         user,
		LastPosition: copyCoordinate(position),
		CreatedAt:    r.now(),
	}
	return nil
}

func (r *UserRepo) Remove(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *UserRepo) UpdatePosition(_ context.Context, userID string, position domain.Coordinate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tu, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	tu.LastPosition = &position
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, userID string) (*domain.TrackedUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tu, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *tu
	out.LastPosition = copyCoordinate(tu.LastPosition)
	return &out, nil
}

func (r *UserRepo) ListAll(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	entries := make([]*domain.TrackedUser, 0, len(r.users))
	for _, tu := range r.users {
		entries = append(entries, tu)
	}
	r.mu.RUnlock()

	// newest first; equal timestamps fall back to id so listings are stable
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].User.ID < entries[j].User.ID
	})

	users := make([]domain.User, len(entries))
	for i, tu := range entries {
		users[i] = tu.User
	}
	return users, nil
}

func copyCoordinate(c *domain.Coordinate) *domain.Coordinate {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}
