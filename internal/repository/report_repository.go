package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

// ReportRepo runs the aggregate queries behind the admin dashboards.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo constructs a ReportRepo with the given DB handle.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// Overview holds the system-wide counters shown to administrators.
type Overview struct {
	TotalLots          int     `json:"total_lots"`
	TotalSpots         int     `json:"total_spots"`
	OccupiedSpots      int     `json:"occupied_spots"`
	AvailableSpots     int     `json:"available_spots"`
	TotalUsers         int     `json:"total_users"`
	ActiveReservations int     `json:"active_reservations"`
	TotalRevenue       float64 `json:"total_revenue"`
}

// Overview counts lots, spots, users and reservations.  Spot figures
// come from the spot rows rather than the cached lot columns.
func (r *ReportRepo) Overview(ctx context.Context) (Overview, error) {
	var o Overview
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_lots`).Scan(&o.TotalLots); err != nil {
		return o, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) FROM parking_spots`,
		model.SpotOccupied).Scan(&o.TotalSpots, &o.OccupiedSpots); err != nil {
		return o, err
	}
	o.AvailableSpots = o.TotalSpots - o.OccupiedSpots
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ?`, model.RoleUser).Scan(&o.TotalUsers); err != nil {
		return o, err
	}
	summary, err := r.Summary(ctx)
	if err != nil {
		return o, err
	}
	o.ActiveReservations = summary.Active
	o.TotalRevenue = summary.Revenue
	return o, nil
}

// ReservationSummary aggregates reservations by lifecycle state.
type ReservationSummary struct {
	Total     int     `json:"total"`
	Active    int     `json:"active"`
	Completed int     `json:"completed"`
	Revenue   float64 `json:"revenue"`
}

// Summary counts reservations and sums the revenue of completed ones.
func (r *ReportRepo) Summary(ctx context.Context) (ReservationSummary, error) {
	var s ReservationSummary
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = ? THEN total_cost ELSE 0 END), 0)
		FROM reservations`,
		model.ReservationActive, model.ReservationCompleted, model.ReservationCompleted,
	).Scan(&s.Total, &s.Active, &s.Completed, &s.Revenue)
	return s, err
}
