package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/database"
)

var _ database.UserDirectory = (*UserRepo)(nil)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Register(ctx context.Context, user domain.User, position *domain.Coordinate) error {
	var lat, lon any
	if position != nil {
		lat, lon = position.Lat, position.Lon
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tracked_users (id, name, mobile, latitude, longitude, created_at) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
		user.ID, user.Name, user.Mobile, lat, lon, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return expectAffected(res, domain.ErrUserExists)
}

func (r *UserRepo) Remove(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tracked_users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectAffected(res, domain.ErrUserNotFound)
}

func (r *UserRepo) UpdatePosition(ctx context.Context, userID string, position domain.Coordinate) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tracked_users SET latitude = $2, longitude = $3 WHERE id = $1`,
		userID, position.Lat, position.Lon,
	)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return expectAffected(res, domain.ErrUserNotFound)
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*domain.TrackedUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, mobile, latitude, longitude, created_at FROM tracked_users WHERE id = $1`,
		userID,
	)

	var (
		tu       domain.TrackedUser
		lat, lon sql.NullFloat64
	)
	if err := row.Scan(&tu.User.ID, &tu.User.Name, &tu.User.Mobile, &lat, &lon, &tu.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if lat.Valid && lon.Valid {
		tu.LastPosition = &domain.Coordinate{Lat: lat.Float64, Lon: lon.Float64}
	}
	return &tu, nil
}

func (r *UserRepo) ListAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, mobile FROM tracked_users ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	results := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Mobile); err != nil {
			return nil, err
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

func expectAffected(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return none
	}
	return nil
}
