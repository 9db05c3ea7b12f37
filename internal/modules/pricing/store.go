// README: City rate store backed by PostgreSQL, with compiled-in defaults.
package pricing

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) RateForCity(ctx context.Context, city string) (Rate, error) {
	row := s.db.QueryRow(ctx, `
		SELECT city, rate_per_km FROM city_rates WHERE LOWER(city) = LOWER($1)`, city)

	var r Rate
	err := row.Scan(&r.City, &r.PerKm)
	if errors.Is(err, pgx.ErrNoRows) {
		return fallbackRate(city), nil
	}
	if err != nil {
		return Rate{}, err
	}
	r.Currency = "NGN"
	return r, nil
}

// StaticStore serves the compiled-in rates; used when no database is wired
// and in tests.
type StaticStore struct{}

func NewStaticStore() *StaticStore {
	return &StaticStore{}
}

func (s *StaticStore) RateForCity(_ context.Context, city string) (Rate, error) {
	return fallbackRate(city), nil
}

func fallbackRate(city string) Rate {
	perKm := float64(DefaultPerKm)
	if v, ok := defaultRates[strings.ToLower(strings.TrimSpace(city))]; ok {
		perKm = v
	}
	return Rate{City: city, PerKm: perKm, Currency: "NGN"}
}
