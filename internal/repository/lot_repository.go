package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

// LotRepo manages persistence for parking lots.  Every method that
// changes spot counts comes in a Tx flavour so the service layer can
// keep the lot row and its spots consistent inside one transaction.
type LotRepo struct {
	db *sql.DB
}

// NewLotRepo constructs a LotRepo with the given DB handle.
func NewLotRepo(db *sql.DB) *LotRepo { return &LotRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *LotRepo) DB() *sql.DB { return r.db }

const lotColumns = `id, location_name, address, pin_code, price_per_hour, max_spots, available_spots, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLot(row rowScanner) (*model.ParkingLot, error) {
	var l model.ParkingLot
	err := row.Scan(&l.ID, &l.LocationName, &l.Address, &l.PinCode,
		&l.PricePerHour, &l.MaxSpots, &l.AvailableSpots, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLotNotFound
		}
		return nil, err
	}
	return &l, nil
}

// CreateTx inserts a lot with zero counts.  Spots are added separately
// and the counts filled in by RecountTx.  The generated ID and
// CreatedAt are written back to l.
func (r *LotRepo) CreateTx(ctx context.Context, tx *sql.Tx, l *model.ParkingLot) error {
	l.CreatedAt = time.Now().UTC()
	const q = `INSERT INTO parking_lots (location_name, address, pin_code, price_per_hour, max_spots, available_spots, created_at)
	           VALUES (?, ?, ?, ?, 0, 0, ?)`
	res, err := tx.ExecContext(ctx, q, l.LocationName, l.Address, l.PinCode, l.PricePerHour, l.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// GetByID retrieves a lot by its ID.  It returns ErrLotNotFound if
// there is no matching row.
func (r *LotRepo) GetByID(ctx context.Context, id uint64) (*model.ParkingLot, error) {
	return scanLot(r.db.QueryRowContext(ctx, `SELECT `+lotColumns+` FROM parking_lots WHERE id = ?`, id))
}

// GetByIDTx is GetByID inside a transaction.
func (r *LotRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ParkingLot, error) {
	return scanLot(tx.QueryRowContext(ctx, `SELECT `+lotColumns+` FROM parking_lots WHERE id = ?`, id))
}

// List returns every lot ordered by ID.
func (r *LotRepo) List(ctx context.Context) ([]model.ParkingLot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM parking_lots ORDER BY id`)
}

// ListBookable returns lots with at least one free spot.
func (r *LotRepo) ListBookable(ctx context.Context) ([]model.ParkingLot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM parking_lots WHERE available_spots > 0 ORDER BY id`)
}

func (r *LotRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.ParkingLot, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lots := make([]model.ParkingLot, 0)
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, *l)
	}
	return lots, rows.Err()
}

// UpdateDetailsTx changes the descriptive fields and price of a lot.
// Counts are left to RecountTx.
func (r *LotRepo) UpdateDetailsTx(ctx context.Context, tx *sql.Tx, l *model.ParkingLot) error {
	const q = `UPDATE parking_lots SET location_name = ?, address = ?, pin_code = ?, price_per_hour = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, l.LocationName, l.Address, l.PinCode, l.PricePerHour, l.ID)
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows when values are unchanged, so only
	// a missing row is treated as an error.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByIDTx(ctx, tx, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// SpotCounts is the authoritative tally of a lot's spot rows.
type SpotCounts struct {
	Total    int
	Occupied int
}

// CountSpotsTx counts all spots of a lot and how many are occupied.
func (r *LotRepo) CountSpotsTx(ctx context.Context, tx *sql.Tx, lotID uint64) (SpotCounts, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
	           FROM parking_spots WHERE lot_id = ?`
	var c SpotCounts
	err := tx.QueryRowContext(ctx, q, model.SpotOccupied, lotID).Scan(&c.Total, &c.Occupied)
	return c, err
}

// RecountTx recomputes max_spots and available_spots from the spot rows
// and stores them on the lot.  available_spots is clamped to
// [0, max_spots].  The refreshed lot is returned.
func (r *LotRepo) RecountTx(ctx context.Context, tx *sql.Tx, lotID uint64) (*model.ParkingLot, error) {
	c, err := r.CountSpotsTx(ctx, tx, lotID)
	if err != nil {
		return nil, err
	}
	available := c.Total - c.Occupied
	if available < 0 {
		available = 0
	}
	if available > c.Total {
		available = c.Total
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE parking_lots SET max_spots = ?, available_spots = ? WHERE id = ?`,
		c.Total, available, lotID); err != nil {
		return nil, err
	}
	return r.GetByIDTx(ctx, tx, lotID)
}

// DeleteTx removes a lot together with its spots and their reservations.
// The caller is responsible for checking that no spot is occupied.
func (r *LotRepo) DeleteTx(ctx context.Context, tx *sql.Tx, lotID uint64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM reservations WHERE spot_id IN (SELECT id FROM parking_spots WHERE lot_id = ?)`, lotID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM parking_spots WHERE lot_id = ?`, lotID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM parking_lots WHERE id = ?`, lotID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLotNotFound
	}
	return nil
}
