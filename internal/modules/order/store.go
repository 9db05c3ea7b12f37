// README: Postgres persistence for orders, including the conditional accept.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lani/internal/types"
)

type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const orderColumns = `id, tracking_id, customer_id, rider_id, city, fare,
	pickup_address, pickup_landmark, pickup_lat, pickup_lng,
	delivery_address, delivery_landmark, delivery_lat, delivery_lng,
	package_name, package_texture, package_photo,
	receiver_name, receiver_phone, sender_name, sender_phone, sender_email,
	rider_name, rider_phone, pickup_mode, scheduled_at, notes,
	payment_by, payment_settled, status, created_at`

func (s *PGStore) Create(ctx context.Context, o *Order) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
		        $18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31)`,
		o.ID, o.TrackingID, o.CustomerID, o.RiderID, o.City, o.Fare,
		o.Pickup.Address, o.Pickup.Landmark, o.Pickup.Position.Lat, o.Pickup.Position.Lng,
		o.Delivery.Address, o.Delivery.Landmark, o.Delivery.Position.Lat, o.Delivery.Position.Lng,
		o.Package.Name, o.Package.Texture, o.Package.PhotoRef,
		o.Receiver.Name, o.Receiver.Phone, o.Sender.Name, o.Sender.Phone, o.SenderEmail,
		o.Rider.Name, o.Rider.Phone, string(o.Mode), o.ScheduledAt, o.Notes,
		string(o.PaymentBy), o.PaymentSettled, string(o.Status), o.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("duplicate order key: %w", ErrConflict)
	}
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (s *PGStore) GetByTracking(ctx context.Context, trackingID string) (*Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE tracking_id = $1`, trackingID)
	return scanOrder(row)
}

func (s *PGStore) ListByActor(ctx context.Context, actorID types.ID) ([]*Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_id = $1 OR rider_id = $1
		ORDER BY created_at DESC`, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (s *PGStore) ListPendingByCity(ctx context.Context, city string) ([]*Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = 'pending' AND lower(city) = lower($1)
		ORDER BY created_at DESC`, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (s *PGStore) ListAll(ctx context.Context) ([]*Order, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (s *PGStore) CountActiveByRider(ctx context.Context, riderID types.ID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders WHERE rider_id = $1 AND status = 'in-transit'`, riderID).Scan(&n)
	return n, err
}

// AcceptPending re-checks both preconditions inside the UPDATE itself, so the
// capacity cap and the single-assignment rule hold under concurrent accepts
// without an explicit transaction.
func (s *PGStore) AcceptPending(ctx context.Context, id types.ID, riderID types.ID, rider Contact, maxActive int) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders
		SET status = 'in-transit', rider_id = $2, rider_name = $3, rider_phone = $4
		WHERE id = $1
		  AND status = 'pending'
		  AND (SELECT COUNT(*) FROM orders WHERE rider_id = $2 AND status = 'in-transit') < $5`,
		id, riderID, rider.Name, rider.Phone, maxActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) SetPaymentSettled(ctx context.Context, id types.ID, settled bool) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET payment_settled = $2 WHERE id = $1`, id, settled)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByStatus: map[Status]int{}}
	rows, err := s.pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(fare) FILTER (WHERE status = 'delivered'), 0)
		FROM orders GROUP BY status`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		var revenue float64
		if err := rows.Scan(&status, &count, &revenue); err != nil {
			return stats, err
		}
		stats.ByStatus[Status(status)] = count
		stats.Total += count
		stats.Revenue += revenue
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	var riderID *string
	var riderName, riderPhone *string
	var scheduledAt *time.Time
	err := row.Scan(
		&o.ID, &o.TrackingID, &o.CustomerID, &riderID, &o.City, &o.Fare,
		&o.Pickup.Address, &o.Pickup.Landmark, &o.Pickup.Position.Lat, &o.Pickup.Position.Lng,
		&o.Delivery.Address, &o.Delivery.Landmark, &o.Delivery.Position.Lat, &o.Delivery.Position.Lng,
		&o.Package.Name, &o.Package.Texture, &o.Package.PhotoRef,
		&o.Receiver.Name, &o.Receiver.Phone, &o.Sender.Name, &o.Sender.Phone, &o.SenderEmail,
		&riderName, &riderPhone, &o.Mode, &scheduledAt, &o.Notes,
		&o.PaymentBy, &o.PaymentSettled, &o.Status, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if riderID != nil {
		id := types.ID(*riderID)
		o.RiderID = &id
	}
	if riderName != nil {
		o.Rider.Name = *riderName
	}
	if riderPhone != nil {
		o.Rider.Phone = *riderPhone
	}
	o.ScheduledAt = scheduledAt
	return &o, nil
}

func scanOrders(rows pgx.Rows) ([]*Order, error) {
	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
