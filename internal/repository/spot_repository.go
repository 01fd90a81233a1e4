package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

// spotInsertBatch keeps multi-row inserts under SQLite's bound
// parameter limit.
const spotInsertBatch = 300

// SpotRepo provides methods to work with parking spots.  Write methods
// take a transaction; the lot counts must be recomputed by the caller
// before commit.
type SpotRepo struct {
	db *sql.DB
}

// NewSpotRepo constructs a SpotRepo with the given DB handle.
func NewSpotRepo(db *sql.DB) *SpotRepo { return &SpotRepo{db: db} }

const spotColumns = `id, lot_id, spot_number, status`

func scanSpot(row rowScanner) (*model.ParkingSpot, error) {
	var s model.ParkingSpot
	if err := row.Scan(&s.ID, &s.LotID, &s.SpotNumber, &s.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpotNotFound
		}
		return nil, err
	}
	return &s, nil
}

func collectSpots(rows *sql.Rows) ([]model.ParkingSpot, error) {
	defer rows.Close()
	spots := make([]model.ParkingSpot, 0)
	for rows.Next() {
		s, err := scanSpot(rows)
		if err != nil {
			return nil, err
		}
		spots = append(spots, *s)
	}
	return spots, rows.Err()
}

// CreateBulkTx inserts AVAILABLE spots with the given numbers into a
// lot.  Passing an empty slice has no effect.
func (r *SpotRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, lotID uint64, numbers []string) error {
	for start := 0; start < len(numbers); start += spotInsertBatch {
		end := start + spotInsertBatch
		if end > len(numbers) {
			end = len(numbers)
		}
		query := `INSERT INTO parking_spots (lot_id, spot_number, status) VALUES `
		args := make([]interface{}, 0, (end-start)*3)
		for i, n := range numbers[start:end] {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?)"
			args = append(args, lotID, n, model.SpotAvailable)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return err
		}
	}
	return nil
}

// CreateTx inserts a single AVAILABLE spot.  A duplicate number in the
// same lot yields ErrConflict.
func (r *SpotRepo) CreateTx(ctx context.Context, tx *sql.Tx, lotID uint64, number string) (*model.ParkingSpot, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO parking_spots (lot_id, spot_number, status) VALUES (?, ?, ?)`,
		lotID, number, model.SpotAvailable)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.ParkingSpot{ID: uint64(id), LotID: lotID, SpotNumber: number, Status: model.SpotAvailable}, nil
}

// GetByID retrieves a spot or ErrSpotNotFound.
func (r *SpotRepo) GetByID(ctx context.Context, id uint64) (*model.ParkingSpot, error) {
	return scanSpot(r.db.QueryRowContext(ctx, `SELECT `+spotColumns+` FROM parking_spots WHERE id = ?`, id))
}

// GetByIDTx is GetByID inside a transaction.
func (r *SpotRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ParkingSpot, error) {
	return scanSpot(tx.QueryRowContext(ctx, `SELECT `+spotColumns+` FROM parking_spots WHERE id = ?`, id))
}

// ListByLot returns a lot's spots ordered by spot_number.
func (r *SpotRepo) ListByLot(ctx context.Context, lotID uint64) ([]model.ParkingSpot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+spotColumns+` FROM parking_spots WHERE lot_id = ? ORDER BY spot_number`, lotID)
	if err != nil {
		return nil, err
	}
	return collectSpots(rows)
}

// NumbersByLotTx returns the set of spot numbers already used in a lot.
func (r *SpotRepo) NumbersByLotTx(ctx context.Context, tx *sql.Tx, lotID uint64) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT spot_number FROM parking_spots WHERE lot_id = ?`, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	taken := make(map[string]bool)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		taken[n] = true
	}
	return taken, rows.Err()
}

// NumberTakenTx reports whether another spot in the lot (other than
// exceptID, which may be zero) already uses number.
func (r *SpotRepo) NumberTakenTx(ctx context.Context, tx *sql.Tx, lotID uint64, number string, exceptID uint64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parking_spots WHERE lot_id = ? AND spot_number = ? AND id <> ?`,
		lotID, number, exceptID).Scan(&n)
	return n > 0, err
}

// RenameTx changes a spot's number.  Duplicates yield ErrConflict.
func (r *SpotRepo) RenameTx(ctx context.Context, tx *sql.Tx, id uint64, number string) error {
	res, err := tx.ExecContext(ctx, `UPDATE parking_spots SET spot_number = ? WHERE id = ?`, number, id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByIDTx(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}

// ListAvailableIDsTx returns the IDs of a lot's AVAILABLE spots in
// insertion order.
func (r *SpotRepo) ListAvailableIDsTx(ctx context.Context, tx *sql.Tx, lotID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM parking_spots WHERE lot_id = ? AND status = ? ORDER BY id`,
		lotID, model.SpotAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByIDsInLotTx loads the spots among ids that belong to lotID.
// IDs from other lots or that do not exist are silently dropped.
func (r *SpotRepo) ListByIDsInLotTx(ctx context.Context, tx *sql.Tx, lotID uint64, ids []uint64) ([]model.ParkingSpot, error) {
	if len(ids) == 0 {
		return []model.ParkingSpot{}, nil
	}
	ph, args := inClause(ids)
	args = append([]interface{}{lotID}, args...)
	rows, err := tx.QueryContext(ctx,
		`SELECT `+spotColumns+` FROM parking_spots WHERE lot_id = ? AND id IN (`+ph+`) ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	return collectSpots(rows)
}

// ClaimTx flips a spot from AVAILABLE to OCCUPIED.  It reports false
// when the spot was no longer AVAILABLE, which lets concurrent bookers
// move on to another candidate.
func (r *SpotRepo) ClaimTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE parking_spots SET status = ? WHERE id = ? AND status = ?`,
		model.SpotOccupied, id, model.SpotAvailable)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetStatusTx overwrites a spot's status.
func (r *SpotRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE parking_spots SET status = ? WHERE id = ?`, status, id)
	return err
}

// DeleteTx removes spots and every reservation that references them.
// It returns the number of spot rows removed.
func (r *SpotRepo) DeleteTx(ctx context.Context, tx *sql.Tx, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ph, args := inClause(ids)
	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE spot_id IN (`+ph+`)`, args...); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM parking_spots WHERE id IN (`+ph+`)`, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
