// README: User store backed by PostgreSQL.
package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lani/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, u *User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, name, email, phone, role, city, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(u.ID), u.Name, u.Email, u.Phone, string(u.Role), u.City, u.CreatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, email, phone, role, city, lat, lng, created_at
		FROM users WHERE id = $1`, string(id),
	)

	var u User
	var lat, lng *float64
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.City, &lat, &lng, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		u.Position = &types.Point{Lat: *lat, Lng: *lng}
	}
	return &u, nil
}

func (s *PGStore) UpdateProfile(ctx context.Context, id types.ID, name, phone string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET name = $1, phone = $2 WHERE id = $3`,
		name, phone, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) UpdateCity(ctx context.Context, id types.ID, city string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET city = $1 WHERE id = $2`, city, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) UpdateLocation(ctx context.Context, id types.ID, pos types.Point) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET lat = $1, lng = $2 WHERE id = $3`,
		pos.Lat, pos.Lng, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
