package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

// ReservationRepo provides access to reservations.  All timestamp
// fields are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `r.id, r.user_id, r.spot_id, r.vehicle_number, r.start_time, r.end_time, r.total_cost, r.status, r.created_at`

func scanReservation(row rowScanner, extra ...interface{}) (*model.Reservation, error) {
	var res model.Reservation
	var end sql.NullTime
	dest := []interface{}{&res.ID, &res.UserID, &res.SpotID, &res.VehicleNumber,
		&res.StartTime, &end, &res.TotalCost, &res.Status, &res.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if end.Valid {
		t := end.Time
		res.EndTime = &t
	}
	return &res, nil
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated ID.  The caller must commit
// or rollback the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	if res.CreatedAt.IsZero() {
		res.CreatedAt = res.StartTime
	}
	const q = `INSERT INTO reservations (user_id, spot_id, vehicle_number, start_time, end_time, total_cost, status, created_at)
	           VALUES (?, ?, ?, ?, NULL, 0, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.UserID, res.SpotID, res.VehicleNumber, res.StartTime, res.Status, res.CreatedAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// ActiveByUserTx returns the user's ACTIVE reservation or
// ErrReservationNotFound.
func (r *ReservationRepo) ActiveByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (*model.Reservation, error) {
	return scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations r WHERE r.user_id = ? AND r.status = ? ORDER BY r.id LIMIT 1`,
		userID, model.ReservationActive))
}

// ActiveByVehicleTx returns the ACTIVE reservation for a normalized
// vehicle number or ErrReservationNotFound.
func (r *ReservationRepo) ActiveByVehicleTx(ctx context.Context, tx *sql.Tx, vehicle string) (*model.Reservation, error) {
	return scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations r WHERE r.vehicle_number = ? AND r.status = ? ORDER BY r.id LIMIT 1`,
		vehicle, model.ReservationActive))
}

// ActiveForUserTx loads reservation id if it is ACTIVE and owned by
// userID.  Missing, foreign and completed reservations all yield
// ErrReservationNotFound.
func (r *ReservationRepo) ActiveForUserTx(ctx context.Context, tx *sql.Tx, id, userID uint64) (*model.Reservation, error) {
	return scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations r WHERE r.id = ? AND r.user_id = ? AND r.status = ?`,
		id, userID, model.ReservationActive))
}

// CompleteTx closes an ACTIVE reservation with its end time and cost.
func (r *ReservationRepo) CompleteTx(ctx context.Context, tx *sql.Tx, id uint64, end time.Time, cost float64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET end_time = ?, total_cost = ?, status = ? WHERE id = ? AND status = ?`,
		end, cost, model.ReservationCompleted, id, model.ReservationActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

const detailSelect = `SELECT ` + reservationColumns + `,
	   s.spot_number, l.id, l.location_name, l.address, l.price_per_hour, u.email, u.full_name
FROM reservations r
JOIN parking_spots s ON s.id = r.spot_id
JOIN parking_lots l ON l.id = s.lot_id
JOIN users u ON u.id = r.user_id`

func scanDetail(row rowScanner) (*model.ReservationDetail, error) {
	var d model.ReservationDetail
	res, err := scanReservation(row, &d.SpotNumber, &d.LotID, &d.LotName, &d.LotAddress,
		&d.PricePerHour, &d.UserEmail, &d.UserName)
	if err != nil {
		return nil, err
	}
	d.Reservation = *res
	return &d, nil
}

func (r *ReservationRepo) listDetails(ctx context.Context, q string, args ...interface{}) ([]model.ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ReservationDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// ActiveDetailByUser returns the user's ACTIVE reservation with spot
// and lot details, or ErrReservationNotFound.
func (r *ReservationRepo) ActiveDetailByUser(ctx context.Context, userID uint64) (*model.ReservationDetail, error) {
	return scanDetail(r.db.QueryRowContext(ctx,
		detailSelect+` WHERE r.user_id = ? AND r.status = ? ORDER BY r.id DESC LIMIT 1`,
		userID, model.ReservationActive))
}

// ListByUser returns the user's reservations newest first.  A limit of
// zero returns all of them.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.ReservationDetail, error) {
	q := detailSelect + ` WHERE r.user_id = ? ORDER BY r.created_at DESC, r.id DESC`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	return r.listDetails(ctx, q, userID)
}

// ListAll returns every reservation newest first, optionally filtered
// by status.  An empty status means no filter.
func (r *ReservationRepo) ListAll(ctx context.Context, status string) ([]model.ReservationDetail, error) {
	if status == "" {
		return r.listDetails(ctx, detailSelect+` ORDER BY r.created_at DESC, r.id DESC`)
	}
	return r.listDetails(ctx, detailSelect+` WHERE r.status = ? ORDER BY r.created_at DESC, r.id DESC`, status)
}
